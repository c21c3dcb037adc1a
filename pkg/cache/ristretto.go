package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Ristretto is an in-process cache with admission control, suited to hot
// keys under heavy concurrent reads. Every entry costs 1, so MaxCost is an
// entry budget.
type Ristretto[V any] struct {
	c          *ristretto.Cache[string, V]
	defaultTTL time.Duration
}

// NewRistretto creates a ristretto-backed cache holding about maxEntries
// entries. A zero defaultTTL falls back to the package default.
func NewRistretto[V any](maxEntries int64, defaultTTL time.Duration) (*Ristretto[V], error) {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	if defaultTTL == 0 {
		defaultTTL = time.Minute
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		// Cost is an entry count, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Ristretto[V]{c: c, defaultTTL: defaultTTL}, nil
}

// Get implements Cache.
func (r *Ristretto[V]) Get(_ context.Context, key string) (V, error) {
	if v, ok := r.c.Get(key); ok {
		return v, nil
	}
	var zero V
	return zero, ErrNotFound
}

// Set implements Cache. Writes are buffered by ristretto; Set waits for
// them so a following Get observes the value unless admission rejected it.
func (r *Ristretto[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.defaultTTL
	}
	if ttl < 0 {
		r.c.Set(key, value, 1)
	} else {
		r.c.SetWithTTL(key, value, 1, ttl)
	}
	r.c.Wait()
	return nil
}

// Delete implements Cache.
func (r *Ristretto[V]) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		r.c.Del(key)
	}
	return nil
}

// Close implements Cache.
func (r *Ristretto[V]) Close() error {
	r.c.Close()
	return nil
}

var _ Cache[any] = (*Ristretto[any])(nil)
