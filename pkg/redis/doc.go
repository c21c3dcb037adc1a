// Package redis opens go-redis clients from environment configuration.
//
// The client backs the shared branding cache when CACHE_BACKEND=redis, so
// several replicas see the same invalidations.
//
//	cfg := redis.Config{URL: "redis://localhost:6379/0"}
//	client, err := redis.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// [Healthcheck] and [Shutdown] plug into the application's readiness checks
// and shutdown hooks.
package redis
