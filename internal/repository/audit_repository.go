package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"posu-analytics/internal/model"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// List pages through audit entries newest first, limited to the filter's actor roles.
func (r *AuditRepository) List(ctx context.Context, filter model.AuditLogFilter) ([]model.AuditLog, int64, error) {
	filter = filter.Normalize()
	if len(filter.Roles) == 0 {
		return []model.AuditLog{}, 0, nil
	}

	roles := make([]string, len(filter.Roles))
	for i, role := range filter.Roles {
		roles[i] = string(role)
	}
	query := r.db.WithContext(ctx).Model(&model.AuditLog{}).Where("actor_role IN ?", roles)
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("(LOWER(action) LIKE @q OR LOWER(actor_name) LIKE @q OR LOWER(target_name) LIKE @q)",
			map[string]interface{}{"q": "%" + strings.ToLower(search) + "%"})
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	var logs []model.AuditLog
	if err := query.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, total, nil
}
