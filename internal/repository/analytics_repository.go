package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"posu-analytics/internal/model"
)

type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// HeadlineStats aggregates ledger counts and revenue. A nil range covers all time.
// Soft-deleted violators drop out of the violator count but their tickets still count.
func (r *AnalyticsRepository) HeadlineStats(ctx context.Context, rng *model.DateRange) (model.DashboardStats, error) {
	type row struct {
		TotalTransactions   int64
		PendingTransactions int64
		PaidTransactions    int64
		TotalViolators      int64
		PaidRevenue         decimal.Decimal
		PendingRevenue      decimal.Decimal
	}
	var totals row

	pending, paid := string(model.StatusPending), string(model.StatusPaid)
	query := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select(`COUNT(*) AS total_transactions,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_transactions,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS paid_transactions,
			COUNT(DISTINCT CASE WHEN EXISTS (
				SELECT 1 FROM violators vr WHERE vr.id = transactions.violator_id AND vr.deleted_at IS NULL
			) THEN transactions.violator_id END) AS total_violators,
			COALESCE(SUM(CASE WHEN status = ? THEN fine_amount ELSE 0 END), 0) AS paid_revenue,
			COALESCE(SUM(CASE WHEN status = ? THEN fine_amount ELSE 0 END), 0) AS pending_revenue`,
			pending, paid, paid, pending)
	query = withinRange(query, "date_time", rng)

	if err := query.Scan(&totals).Error; err != nil {
		return model.DashboardStats{}, fmt.Errorf("headline stats: %w", err)
	}

	repeaters, err := r.RepeatOffenders(ctx, rng)
	if err != nil {
		return model.DashboardStats{}, err
	}

	return model.DashboardStats{
		TotalViolators:      totals.TotalViolators,
		TotalTransactions:   totals.TotalTransactions,
		PendingTransactions: totals.PendingTransactions,
		PaidTransactions:    totals.PaidTransactions,
		TotalRevenue:        totals.PaidRevenue.InexactFloat64(),
		PendingRevenue:      totals.PendingRevenue.InexactFloat64(),
		RepeatOffenders:     repeaters,
	}, nil
}

// RepeatOffenders counts violators with more than one transaction inside the range.
func (r *AnalyticsRepository) RepeatOffenders(ctx context.Context, rng *model.DateRange) (int64, error) {
	sub := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("violator_id")
	sub = withinRange(sub, "date_time", rng).
		Group("violator_id").
		Having("COUNT(*) > 1")

	var count int64
	if err := r.db.WithContext(ctx).Table("(?) AS repeaters", sub).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("repeat offenders: %w", err)
	}
	return count, nil
}

func (r *AnalyticsRepository) ActiveActorCounts(ctx context.Context) (map[model.Role]int64, error) {
	type row struct {
		Role  model.Role
		Total int64
	}
	var rows []row

	if err := r.db.WithContext(ctx).
		Model(&model.Actor{}).
		Select("role, COUNT(*) AS total").
		Where("status = ?", model.ActorActivated).
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("active actors: %w", err)
	}

	counts := make(map[model.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}

func (r *AnalyticsRepository) CountTransactions(ctx context.Context, rng *model.DateRange) (int64, error) {
	var count int64
	query := withinRange(r.db.WithContext(ctx).Model(&model.Transaction{}), "date_time", rng)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

// OccurrenceTimes returns every live transaction's date_time; bucketing happens in the caller's timezone.
func (r *AnalyticsRepository) OccurrenceTimes(ctx context.Context) ([]time.Time, error) {
	var times []time.Time
	if err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Order("date_time ASC").
		Pluck("date_time", &times).Error; err != nil {
		return nil, fmt.Errorf("occurrence times: %w", err)
	}
	return times, nil
}

// ViolationRanking counts transactions per violation type, including types with none.
func (r *AnalyticsRepository) ViolationRanking(ctx context.Context, rng *model.DateRange, limit int) ([]model.ViolationCount, error) {
	type row struct {
		ID                uint
		Name              string
		Description       string
		FineAmount        decimal.Decimal
		TransactionsCount int64
	}
	var rows []row

	join := "LEFT JOIN transactions t ON t.violation_id = v.id AND t.deleted_at IS NULL"
	var args []interface{}
	if rng != nil {
		join += " AND t.date_time BETWEEN ? AND ?"
		args = append(args, rng.From.UTC(), rng.To.UTC())
	}

	if err := r.db.WithContext(ctx).
		Table("violations v").
		Select("v.id, v.name, v.description, v.fine_amount, COUNT(t.id) AS transactions_count").
		Joins(join, args...).
		Group("v.id, v.name, v.description, v.fine_amount").
		Order("transactions_count DESC, v.id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("violation ranking: %w", err)
	}

	result := make([]model.ViolationCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.ViolationCount{
			ID:                row.ID,
			Name:              row.Name,
			Description:       row.Description,
			FineAmount:        row.FineAmount.InexactFloat64(),
			TransactionsCount: row.TransactionsCount,
		})
	}
	return result, nil
}

// ViolationCountsByPrimary ranks the primary violation of transactions in range. Only types that occur are returned.
func (r *AnalyticsRepository) ViolationCountsByPrimary(ctx context.Context, rng *model.DateRange, limit int) ([]model.ViolationCount, error) {
	type row struct {
		ID                *uint
		Name              *string
		TransactionsCount int64
	}
	var rows []row

	query := r.db.WithContext(ctx).
		Table("transactions t").
		Select("t.violation_id AS id, v.name AS name, COUNT(*) AS transactions_count").
		Joins("LEFT JOIN violations v ON v.id = t.violation_id").
		Where("t.deleted_at IS NULL")
	query = withinRange(query, "t.date_time", rng)

	if err := query.
		Group("t.violation_id, v.name").
		Order("transactions_count DESC, t.violation_id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("violation counts: %w", err)
	}

	result := make([]model.ViolationCount, 0, len(rows))
	for _, row := range rows {
		vc := model.ViolationCount{TransactionsCount: row.TransactionsCount, Name: "N/A"}
		if row.ID != nil {
			vc.ID = *row.ID
		}
		if row.Name != nil {
			vc.Name = *row.Name
		}
		result = append(result, vc)
	}
	return result, nil
}

// EnforcerPerformance lists every enforcer with their citation counts in range, ordered by id.
func (r *AnalyticsRepository) EnforcerPerformance(ctx context.Context, rng *model.DateRange) ([]model.EnforcerPerformance, error) {
	type row struct {
		ID         uint
		FirstName  string
		MiddleName *string
		LastName   string
		Extension  *string
		Total      int64
		Paid       int64
		TotalFines decimal.Decimal
	}
	var rows []row

	join := "LEFT JOIN transactions t ON t.apprehending_officer = a.id AND t.deleted_at IS NULL"
	args := []interface{}{}
	if rng != nil {
		join += " AND t.date_time BETWEEN ? AND ?"
		args = append(args, rng.From.UTC(), rng.To.UTC())
	}

	if err := r.db.WithContext(ctx).
		Table("actors a").
		Select(`a.id, a.first_name, a.middle_name, a.last_name, a.extension,
			COUNT(t.id) AS total,
			COALESCE(SUM(CASE WHEN t.status = ? THEN 1 ELSE 0 END), 0) AS paid,
			COALESCE(SUM(t.fine_amount), 0) AS total_fines`, string(model.StatusPaid)).
		Joins(join, args...).
		Where("a.role = ? AND a.deleted_at IS NULL", string(model.RoleEnforcer)).
		Group("a.id, a.first_name, a.middle_name, a.last_name, a.extension").
		Order("a.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("enforcer performance: %w", err)
	}

	result := make([]model.EnforcerPerformance, 0, len(rows))
	for _, row := range rows {
		actor := model.Actor{FirstName: row.FirstName, MiddleName: row.MiddleName, LastName: row.LastName, Extension: row.Extension}
		result = append(result, model.EnforcerPerformance{
			ID:                row.ID,
			Name:              actor.FullName(),
			TotalTransactions: row.Total,
			PaidTransactions:  row.Paid,
			CollectionRate:    CollectionRate(row.Paid, row.Total),
			TotalFines:        row.TotalFines.InexactFloat64(),
		})
	}
	return result, nil
}

type PendingTransaction struct {
	ID         uint
	ViolatorID uint
	Violator   string
	Location   string
	DateTime   time.Time
	FineAmount decimal.Decimal
}

// PendingTransactions returns every unpaid citation with its violator name, grouped by violator.
func (r *AnalyticsRepository) PendingTransactions(ctx context.Context) ([]PendingTransaction, error) {
	type row struct {
		ID         uint
		ViolatorID uint
		FirstName  string
		MiddleName *string
		LastName   string
		Location   string
		DateTime   time.Time
		FineAmount decimal.Decimal
	}
	var rows []row

	if err := r.db.WithContext(ctx).
		Table("transactions t").
		Select("t.id, t.violator_id, vr.first_name, vr.middle_name, vr.last_name, t.location, t.date_time, t.fine_amount").
		Joins("JOIN violators vr ON vr.id = t.violator_id AND vr.deleted_at IS NULL").
		Where("t.status = ? AND t.deleted_at IS NULL", string(model.StatusPending)).
		Order("t.violator_id ASC, t.date_time ASC, t.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("pending transactions: %w", err)
	}

	result := make([]PendingTransaction, 0, len(rows))
	for _, row := range rows {
		v := model.Violator{FirstName: row.FirstName, MiddleName: row.MiddleName, LastName: row.LastName}
		result = append(result, PendingTransaction{
			ID:         row.ID,
			ViolatorID: row.ViolatorID,
			Violator:   v.FullName(),
			Location:   row.Location,
			DateTime:   row.DateTime,
			FineAmount: row.FineAmount,
		})
	}
	return result, nil
}

type GPSPoint struct {
	ID         uint
	Location   string
	Lat        float64
	Lng        float64
	FineAmount decimal.Decimal
}

// PendingGPSPoints returns unpaid citations carrying coordinates, filtered on created_at.
func (r *AnalyticsRepository) PendingGPSPoints(ctx context.Context, created *model.DateRange) ([]GPSPoint, error) {
	type row struct {
		ID           uint
		Location     string
		GPSLatitude  float64
		GPSLongitude float64
		FineAmount   decimal.Decimal
	}
	var rows []row

	query := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("id, location, gps_latitude, gps_longitude, fine_amount").
		Where("status = ?", string(model.StatusPending)).
		Where("gps_latitude IS NOT NULL AND gps_longitude IS NOT NULL")
	query = withinRange(query, "created_at", created)

	if err := query.Order("id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("gps points: %w", err)
	}

	result := make([]GPSPoint, 0, len(rows))
	for _, row := range rows {
		result = append(result, GPSPoint{
			ID:         row.ID,
			Location:   row.Location,
			Lat:        row.GPSLatitude,
			Lng:        row.GPSLongitude,
			FineAmount: row.FineAmount,
		})
	}
	return result, nil
}

// PaidRevenue sums settled fines in range.
func (r *AnalyticsRepository) PaidRevenue(ctx context.Context, rng *model.DateRange) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("COALESCE(SUM(fine_amount), 0)").
		Where("status = ?", string(model.StatusPaid))
	query = withinRange(query, "date_time", rng)

	if err := query.Row().Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("paid revenue: %w", err)
	}
	return total, nil
}

// CollectionRate is paid/total as a percentage rounded to one decimal.
func CollectionRate(paid, total int64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(paid).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).
		Round(1).
		InexactFloat64()
}

func withinRange(query *gorm.DB, column string, rng *model.DateRange) *gorm.DB {
	if rng == nil {
		return query
	}
	return query.Where(column+" BETWEEN ? AND ?", rng.From.UTC(), rng.To.UTC())
}
