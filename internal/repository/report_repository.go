package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"posu-analytics/internal/model"
)

var ErrNotDeleted = errors.New("report is not deleted")

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *ReportRepository) List(ctx context.Context, filter model.ReportHistoryFilter) ([]model.Report, int64, error) {
	filter = filter.Normalize()

	query := r.db.WithContext(ctx).Model(&model.Report{})
	if filter.IncludeDeleted {
		query = query.Unscoped()
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", filter.To.UTC())
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	var reports []model.Report
	if err := query.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	return reports, total, nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id uint, withDeleted bool) (*model.Report, error) {
	query := r.db.WithContext(ctx)
	if withDeleted {
		query = query.Unscoped()
	}
	var report model.Report
	err := query.First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find report %d: %w", id, err)
	}
	return &report, nil
}

func (r *ReportRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Report{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete report %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReportRepository) Restore(ctx context.Context, id uint) (*model.Report, error) {
	report, err := r.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !report.DeletedAt.Valid {
		return nil, ErrNotDeleted
	}
	if err := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.Report{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error; err != nil {
		return nil, fmt.Errorf("restore report %d: %w", id, err)
	}
	report.DeletedAt = gorm.DeletedAt{}
	return report, nil
}

// All returns every report, including soft-deleted ones.
func (r *ReportRepository) All(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	if err := r.db.WithContext(ctx).Unscoped().Order("id ASC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	return reports, nil
}

// DeleteAll soft-deletes every live report and returns how many were affected.
func (r *ReportRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Report{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear reports: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ReferencesFile reports whether a live report lists the stored file.
func (r *ReportRepository) ReferencesFile(ctx context.Context, filename string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("CAST(files AS TEXT) LIKE ?", "%\""+filename+"\"%").
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("lookup report file: %w", err)
	}
	return count > 0, nil
}
