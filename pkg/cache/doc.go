// Package cache provides a small generic cache with memory, ristretto and
// Redis backends, plus a stampede-safe loader.
//
// The branding resolver keeps short-lived snapshots keyed by domain and
// organization. A single instance can use [Memory] or [Ristretto]; several
// replicas that must observe the same invalidations share [Redis].
//
// # Interface
//
//   - Get(ctx, key) (V, error): ErrNotFound on miss or expiry
//   - Set(ctx, key, value, ttl) error
//   - Delete(ctx, keys...) error
//   - Close() error
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the backend's default TTL
//   - Negative: item never expires
//
// # Loader
//
// [Loader] collapses concurrent misses for the same key into one call:
//
//	l := cache.NewLoader[*Entry](c)
//	v, err := l.GetOrSet(ctx, "org:"+id, func(ctx context.Context) (*Entry, time.Duration, error) {
//	    e, err := store.Load(ctx, id)
//	    return e, time.Minute, err
//	})
//
// Errors returned by the callback are not cached.
//
// # Values
//
// Memory and Ristretto hand back the stored value itself. Store immutable
// values, or values callers never modify. Redis round-trips through a
// [Marshaler], JSON by default.
package cache
