package db

import (
	"fmt"

	"gorm.io/gorm"

	"posu-analytics/internal/model"
)

// Indexes backing the dashboard and ledger queries. Each statement is valid on both postgres and sqlite.
var migrationStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_transactions_violator_date ON transactions (violator_id, date_time, id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_status_date ON transactions (status, date_time)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_pending_gps ON transactions (created_at)
		WHERE status = 'Pending' AND gps_latitude IS NOT NULL AND gps_longitude IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_violation_violation ON transaction_violation (violation_id)`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_type ON vehicles (vehicle_type)`,
	`CREATE INDEX IF NOT EXISTS idx_actors_role_status ON actors (role, status)`,
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return runMigrations(db)
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
