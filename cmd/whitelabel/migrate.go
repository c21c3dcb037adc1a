package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/whitelabel/internal/store/postgres/migrations"
	"github.com/dmitrymomot/whitelabel/pkg/db"
	"github.com/dmitrymomot/whitelabel/pkg/job"
	"github.com/dmitrymomot/whitelabel/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the whitelabel schema and job queue migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadBase(nil)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log, cmd.ErrOrStderr())

			pool, err := db.Connect(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			return migrate(cmd.Context(), pool, cfg.DB.MigrationsTable, log)
		},
	}
}

func migrate(ctx context.Context, pool *pgxpool.Pool, table string, log *slog.Logger) error {
	if err := db.Migrate(ctx, pool, migrations.FS, table, log); err != nil {
		return err
	}
	if err := job.Migrate(ctx, pool); err != nil {
		return err
	}
	log.InfoContext(ctx, "migrations applied")
	return nil
}
