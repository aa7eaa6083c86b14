package model

import "time"

type RepeatFilter string

const (
	RepeatAny     RepeatFilter = ""
	RepeatOnly    RepeatFilter = "true"
	RepeatExclude RepeatFilter = "false"
)

type TransactionFilter struct {
	Search         string
	ViolationID    *uint
	VehicleType    *VehicleType
	Address        string
	RepeatOffender RepeatFilter
	Range          *DateRange
	Page           int
	PerPage        int
}

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

func (f TransactionFilter) Normalize() TransactionFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage <= 0 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	return f
}

func (f TransactionFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

func NewPagination(page, perPage int, total int64) Pagination {
	last := 1
	if perPage > 0 && total > 0 {
		last = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Pagination{CurrentPage: page, PerPage: perPage, Total: total, LastPage: last}
}

type ReportHistoryFilter struct {
	Type           string
	From           *time.Time
	To             *time.Time
	IncludeDeleted bool
	Page           int
	PerPage        int
}

func (f ReportHistoryFilter) Normalize() ReportHistoryFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage <= 0 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	return f
}

type AuditLogFilter struct {
	Search  string
	Roles   []Role
	Page    int
	PerPage int
}

func (f AuditLogFilter) Normalize() AuditLogFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage <= 0 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	return f
}

type AuditLogPage struct {
	Logs       []AuditLog `json:"logs"`
	Pagination Pagination `json:"pagination"`
}
