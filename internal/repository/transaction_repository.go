package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"posu-analytics/internal/model"
)

var ErrNotFound = errors.New("record not found")

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) withRelations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Violator").
		Preload("Vehicle").
		Preload("Violation").
		Preload("Violations", func(db *gorm.DB) *gorm.DB { return db.Order("violations.id ASC") }).
		Preload("Officer")
}

// Search pages through the ledger newest first.
func (r *TransactionRepository) Search(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, int64, error) {
	filter = filter.Normalize()
	base := applyTransactionFilter(r.db.WithContext(ctx).Model(&model.Transaction{}), filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	var txs []model.Transaction
	if err := r.withRelations(base.Session(&gorm.Session{})).
		Order("transactions.id DESC").
		Offset(filter.Offset()).
		Limit(filter.PerPage).
		Find(&txs).Error; err != nil {
		return nil, 0, fmt.Errorf("search transactions: %w", err)
	}
	return txs, total, nil
}

func applyTransactionFilter(query *gorm.DB, filter model.TransactionFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where(searchClause, map[string]interface{}{
			"q": "%" + strings.ToLower(search) + "%",
		})
	}

	if filter.ViolationID != nil {
		query = query.Where(`(transactions.violation_id = ? OR EXISTS (
			SELECT 1 FROM transaction_violation tv
			WHERE tv.transaction_id = transactions.id AND tv.violation_id = ?))`,
			*filter.ViolationID, *filter.ViolationID)
	}

	if filter.VehicleType != nil {
		query = query.Where(`EXISTS (
			SELECT 1 FROM vehicles vh
			WHERE vh.id = transactions.vehicle_id AND vh.deleted_at IS NULL AND vh.vehicle_type = ?)`,
			string(*filter.VehicleType))
	}

	if address := strings.TrimSpace(filter.Address); address != "" {
		query = query.Where(`EXISTS (
			SELECT 1 FROM violators vr
			WHERE vr.id = transactions.violator_id AND (
				LOWER(vr.barangay) LIKE @a OR LOWER(vr.city) LIKE @a OR LOWER(vr.province) LIKE @a))`,
			map[string]interface{}{"a": "%" + strings.ToLower(address) + "%"})
	}

	repeaters := `SELECT t2.violator_id FROM transactions t2
		WHERE t2.deleted_at IS NULL
		GROUP BY t2.violator_id HAVING COUNT(*) >= 2`
	switch filter.RepeatOffender {
	case model.RepeatOnly:
		query = query.Where("transactions.violator_id IN (" + repeaters + ")")
	case model.RepeatExclude:
		query = query.Where("transactions.violator_id NOT IN (" + repeaters + ")")
	}

	if filter.Range != nil {
		query = query.Where("transactions.date_time BETWEEN ? AND ?", filter.Range.From.UTC(), filter.Range.To.UTC())
	}

	return query
}

const searchClause = `(
	CAST(transactions.ticket_number AS TEXT) LIKE @q
	OR EXISTS (
		SELECT 1 FROM violators vr WHERE vr.id = transactions.violator_id AND (
			LOWER(vr.first_name) LIKE @q
			OR LOWER(COALESCE(vr.middle_name, '')) LIKE @q
			OR LOWER(vr.last_name) LIKE @q
			OR LOWER(vr.first_name || ' ' || vr.last_name) LIKE @q
			OR LOWER(vr.first_name || ' ' || COALESCE(vr.middle_name, '') || ' ' || vr.last_name) LIKE @q))
	OR EXISTS (
		SELECT 1 FROM actors a WHERE a.id = transactions.apprehending_officer AND (
			LOWER(a.first_name) LIKE @q
			OR LOWER(COALESCE(a.middle_name, '')) LIKE @q
			OR LOWER(a.last_name) LIKE @q
			OR LOWER(a.username) LIKE @q
			OR LOWER(a.first_name || ' ' || a.last_name) LIKE @q
			OR LOWER(a.first_name || ' ' || COALESCE(a.middle_name, '') || ' ' || a.last_name) LIKE @q))
	OR EXISTS (
		SELECT 1 FROM vehicles vh WHERE vh.id = transactions.vehicle_id AND (
			LOWER(vh.make) LIKE @q
			OR LOWER(vh.model) LIKE @q
			OR LOWER(vh.color) LIKE @q
			OR LOWER(vh.owner_first_name || ' ' || vh.owner_last_name) LIKE @q
			OR LOWER(vh.owner_first_name || ' ' || COALESCE(vh.owner_middle_name, '') || ' ' || vh.owner_last_name) LIKE @q))
	OR EXISTS (
		SELECT 1 FROM violations vl WHERE vl.id = transactions.violation_id AND LOWER(vl.name) LIKE @q)
	OR EXISTS (
		SELECT 1 FROM transaction_violation tv
		JOIN violations vl2 ON vl2.id = tv.violation_id
		WHERE tv.transaction_id = transactions.id AND LOWER(vl2.name) LIKE @q)
)`

type ViolatorTotals struct {
	Count       int64
	TotalAmount decimal.Decimal
}

// ViolatorTotals returns all-time citation counts and fine totals for the given violators.
func (r *TransactionRepository) ViolatorTotals(ctx context.Context, violatorIDs []uint) (map[uint]ViolatorTotals, error) {
	result := make(map[uint]ViolatorTotals, len(violatorIDs))
	if len(violatorIDs) == 0 {
		return result, nil
	}

	type row struct {
		ViolatorID  uint
		Total       int64
		TotalAmount decimal.Decimal
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("violator_id, COUNT(*) AS total, COALESCE(SUM(fine_amount), 0) AS total_amount").
		Where("violator_id IN ?", violatorIDs).
		Group("violator_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("violator totals: %w", err)
	}

	for _, row := range rows {
		result[row.ViolatorID] = ViolatorTotals{Count: row.Total, TotalAmount: row.TotalAmount}
	}
	return result, nil
}

type Occurrence struct {
	ID         uint
	ViolatorID uint
	DateTime   time.Time
}

// Occurrences lists every live transaction of the given violators in (date_time, id) order.
func (r *TransactionRepository) Occurrences(ctx context.Context, violatorIDs []uint) ([]Occurrence, error) {
	if len(violatorIDs) == 0 {
		return nil, nil
	}
	var rows []Occurrence
	if err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("id, violator_id, date_time").
		Where("violator_id IN ?", violatorIDs).
		Order("violator_id ASC, date_time ASC, id ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("occurrences: %w", err)
	}
	return rows, nil
}

// InRange loads every transaction in range with its relations, oldest first.
func (r *TransactionRepository) InRange(ctx context.Context, rng model.DateRange) ([]model.Transaction, error) {
	var txs []model.Transaction
	query := r.withRelations(r.db.WithContext(ctx).Model(&model.Transaction{}))
	if err := withinRange(query, "transactions.date_time", &rng).
		Order("transactions.date_time ASC, transactions.id ASC").
		Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("transactions in range: %w", err)
	}
	return txs, nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uint) (*model.Transaction, error) {
	var tx model.Transaction
	err := r.withRelations(r.db.WithContext(ctx)).First(&tx, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction %d: %w", id, err)
	}
	return &tx, nil
}

// UpdateStatus moves a transaction to the given status only if it is currently in the expected one.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uint, from, to model.TransactionStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return false, fmt.Errorf("update transaction status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
