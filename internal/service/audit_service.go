package service

import (
	"context"

	"posu-analytics/internal/model"
	"posu-analytics/internal/repository"
)

type AuditService struct {
	logs *repository.AuditRepository
}

func NewAuditService(logs *repository.AuditRepository) *AuditService {
	return &AuditService{logs: logs}
}

type AuditQuery struct {
	Search  string
	Page    int
	PerPage int
}

// List returns the audit trail visible to the principal's rank.
func (s *AuditService) List(ctx context.Context, principal model.Principal, q AuditQuery) (*model.AuditLogPage, error) {
	roles := principal.Role.AuditVisibleRoles()
	if principal.ActorID == 0 || len(roles) == 0 {
		return nil, ErrPermissionDenied
	}

	filter := model.AuditLogFilter{
		Search:  q.Search,
		Roles:   roles,
		Page:    q.Page,
		PerPage: q.PerPage,
	}.Normalize()

	logs, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.AuditLogPage{
		Logs:       logs,
		Pagination: model.NewPagination(filter.Page, filter.PerPage, total),
	}, nil
}
