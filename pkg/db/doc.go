// Package db connects to PostgreSQL through pgxpool and applies goose
// migrations.
//
// Configuration comes from DATABASE_* environment variables (see [Config]).
// [Connect] retries with linear backoff so the service can start alongside
// its database in containerised environments.
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, migrations.FS, cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//
// [WithTx] wraps a function in a transaction; [Healthcheck] and [Shutdown]
// plug into the application's readiness checks and shutdown hooks.
package db
