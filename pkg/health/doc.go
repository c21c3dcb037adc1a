// Package health serves liveness and readiness probes.
//
// Readiness runs every registered [CheckFunc] concurrently under a shared
// deadline and answers 503 when any of them fails:
//
//	mux.Handle("/health/ready", health.ReadinessHandler(health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(client),
//	}, health.WithTimeout(2*time.Second)))
//
// Append ?format=json or send Accept: application/json for a per-check body.
package health
