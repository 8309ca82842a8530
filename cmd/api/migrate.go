package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	postgres "github.com/clinicflow/scheduling-api/internal/adapters/postgres"
	sqlite "github.com/clinicflow/scheduling-api/internal/adapters/sqlite"
	"github.com/clinicflow/scheduling-api/internal/platform/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema for the configured SQL backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			return migrate(ctx, cfg, cmd)
		},
	}
}

func migrate(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := sqlite.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND %q has no schema to migrate", cfg.StorageBackend)
	}
	cmd.Printf("Applied %s schema successfully.\n", cfg.StorageBackend)
	return nil
}
