package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/whitelabel"
	"github.com/dmitrymomot/whitelabel/middlewares"
	"github.com/dmitrymomot/whitelabel/pkg/db"
	"github.com/dmitrymomot/whitelabel/pkg/job"
	"github.com/dmitrymomot/whitelabel/pkg/logger"
	"github.com/dmitrymomot/whitelabel/pkg/redis"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tenant proxy, the operator API and the verification workers",
		Long: `Serve requests for ADMIN_HOST with the operator API and every other host
with the branded proxy to UPSTREAM_URL.

Required environment:
  DATABASE_CONN_URL   PostgreSQL connection string
  ADMIN_HOST          host name of the operator API
  ADMIN_TOKEN         bearer token for the operator API
  UPSTREAM_URL        application the tenant proxy forwards to`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadServe(nil)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.HTTPAddr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}

func serve(ctx context.Context, cfg serveConfig) error {
	log := logger.New(cfg.Base.Log, nil,
		middlewares.RequestIDExtractor(),
		middlewares.OrgIDExtractor(),
	)

	d, err := openDeps(ctx, cfg.Base, log)
	if err != nil {
		return err
	}

	if cfg.Server.MigrateOnStart {
		if err := migrate(ctx, d.pool, cfg.Base.DB.MigrationsTable, log); err != nil {
			d.close()
			return err
		}
	}

	jobs, err := job.NewManager(d.pool, append(d.svc.JobOptions(), job.WithMaxWorkers(cfg.Server.JobWorkers))...)
	if err != nil {
		d.close()
		return err
	}

	checks := []whitelabel.HealthOption{
		whitelabel.WithReadinessCheck("postgres", db.Healthcheck(d.pool)),
		whitelabel.WithReadinessCheck("jobs", jobs.Healthcheck()),
	}
	if d.redis != nil {
		checks = append(checks, whitelabel.WithReadinessCheck("redis", redis.Healthcheck(d.redis)))
	}

	admin := d.svc.Admin(cfg.Server.AdminToken, jobs, whitelabel.WithHealthChecks(checks...))
	tenant := d.svc.Tenant(newProxy(&cfg.Server.UpstreamURL, log))

	log.InfoContext(ctx, "starting whitelabel",
		slog.String("version", version),
		slog.String("admin_host", cfg.Server.AdminHost),
		slog.String("upstream", cfg.Server.UpstreamURL.Redacted()),
		slog.String("cache", cfg.Base.Whitelabel.CacheBackend),
	)

	// Workers stop before the connections they use are closed.
	return whitelabel.Run(
		whitelabel.Domain(cfg.Server.AdminHost, admin),
		whitelabel.Fallback(tenant),
		whitelabel.Address(cfg.Server.HTTPAddr),
		whitelabel.Logger(log),
		whitelabel.WithContext(ctx),
		whitelabel.ShutdownTimeout(cfg.Server.ShutdownTimeout),
		whitelabel.StartupHook(jobs.Start),
		whitelabel.ShutdownHook(jobs.Stop),
		whitelabel.ShutdownHook(func(context.Context) error {
			d.close()
			return nil
		}),
	)
}
