package service

import (
	"errors"
	"fmt"

	"posu-analytics/internal/period"
)

type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindAuthorization   ErrorKind = "authorization"
	KindNotFound        ErrorKind = "not_found"
	KindBadRequest      ErrorKind = "bad_request"
	KindExternalService ErrorKind = "external_service"
	KindUnexpected      ErrorKind = "unexpected"
)

var (
	ErrPermissionDenied = &AppError{Kind: KindAuthorization, Message: "permission denied"}
	ErrNotFound         = &AppError{Kind: KindNotFound, Message: "not found"}
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can test against the sentinel values.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func NewValidationError(fields map[string][]string) *AppError {
	return &AppError{Kind: KindValidation, Message: "The given data was invalid.", Fields: fields}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: message}
}

func NewExternalServiceError(message string, err error) *AppError {
	return &AppError{Kind: KindExternalService, Message: message, Err: err}
}

func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// rangeError turns a period resolution failure into a field-level validation error.
func rangeError(err error) error {
	var invalid *period.InvalidRangeError
	if !errors.As(err, &invalid) {
		return err
	}
	fields := make(map[string][]string, len(invalid.Fields))
	for field, msg := range invalid.Fields {
		fields[field] = []string{msg}
	}
	return NewValidationError(fields)
}
