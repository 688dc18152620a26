package main

import (
	"errors"

	"github.com/fidena/fidena/adapters/postgres"
	"github.com/fidena/fidena/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return errors.New("database url is required (DATABASE_URL)")
		}

		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		db, err := postgres.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.RunMigrations(cmd.Context(), db); err != nil {
			return err
		}
		logger.Info("migrations applied", zap.String("version", cfg.Version))
		return nil
	},
}
