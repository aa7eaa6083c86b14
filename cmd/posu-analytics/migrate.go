package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"posu-analytics/internal/config"
	"posu-analytics/internal/db"
	"posu-analytics/internal/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and query indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			appLogger := logger.New(cfg.Environment)

			database, err := db.New(cfg, appLogger)
			if err != nil {
				return fmt.Errorf("failed to connect database: %w", err)
			}
			if err := db.Migrate(database); err != nil {
				return err
			}
			appLogger.Info().Msg("migrations applied")
			return nil
		},
	}
}
