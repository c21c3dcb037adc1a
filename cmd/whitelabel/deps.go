package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/whitelabel"
	"github.com/dmitrymomot/whitelabel/internal/store/postgres"
	"github.com/dmitrymomot/whitelabel/pkg/db"
	"github.com/dmitrymomot/whitelabel/pkg/redis"
)

// deps are the connections a command opened; close releases them in
// reverse order.
type deps struct {
	pool  *pgxpool.Pool
	redis goredis.UniversalClient
	svc   *whitelabel.Service
}

func openDeps(ctx context.Context, cfg baseConfig, log *slog.Logger) (*deps, error) {
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	d := &deps{pool: pool}

	opts := []whitelabel.ServiceOption{whitelabel.WithServiceLogger(log)}
	if cfg.Redis.URL != "" {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			d.close()
			return nil, err
		}
		d.redis = client
		opts = append(opts, whitelabel.WithRedis(client))
	}

	svc, err := whitelabel.NewService(cfg.Whitelabel, postgres.New(pool), opts...)
	if err != nil {
		d.close()
		return nil, err
	}
	d.svc = svc
	return d, nil
}

func (d *deps) close() {
	if d.svc != nil {
		_ = d.svc.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
	d.pool.Close()
}
