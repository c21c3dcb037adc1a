package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryEntry[V any] struct {
	expiresAt time.Time // zero = never
	value     V
	key       string
}

// Memory is an in-process cache with TTL expiry and LRU eviction.
type Memory[V any] struct {
	items      map[string]*list.Element
	lru        *list.List // front = most recently used
	now        func() time.Time
	done       chan struct{}
	defaultTTL time.Duration
	maxEntries int
	mu         sync.Mutex
	closed     bool
}

type memoryConfig struct {
	now        func() time.Time
	defaultTTL time.Duration
	cleanup    time.Duration
	maxEntries int
}

// MemoryOption configures NewMemory.
type MemoryOption func(*memoryConfig)

// WithDefaultTTL sets the TTL used when Set is called with zero.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		if d != 0 {
			c.defaultTTL = d
		}
	}
}

// WithMaxEntries bounds the number of entries; the least recently used is
// evicted first. Zero means unlimited.
func WithMaxEntries(n int) MemoryOption {
	return func(c *memoryConfig) {
		c.maxEntries = max(n, 0)
	}
}

// WithCleanupInterval sets how often expired entries are swept.
// Zero disables the sweeper; expired entries are still dropped on read.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		c.cleanup = d
	}
}

// WithMemoryClock replaces the time source. Intended for tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *memoryConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemory creates an in-memory cache.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := &memoryConfig{
		now:        time.Now,
		defaultTTL: defaultTTL,
		cleanup:    time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Memory[V]{
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		now:        cfg.now,
		done:       make(chan struct{}),
		defaultTTL: cfg.defaultTTL,
		maxEntries: cfg.maxEntries,
	}
	if cfg.cleanup > 0 {
		go m.sweep(cfg.cleanup)
	}
	return m
}

// Get implements Cache.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	elem, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	e := elem.Value.(*memoryEntry[V])
	if m.expired(e) {
		m.remove(elem)
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(elem)
	return e.value, nil
}

// Set implements Cache.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		// Replace the entry instead of mutating it: readers may hold the old one.
		elem.Value = &memoryEntry[V]{key: key, value: value, expiresAt: expiresAt}
		m.lru.MoveToFront(elem)
		return nil
	}

	if m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		if oldest := m.lru.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.items[key] = m.lru.PushFront(&memoryEntry[V]{key: key, value: value, expiresAt: expiresAt})
	return nil
}

// Delete implements Cache.
func (m *Memory[V]) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for _, key := range keys {
		if elem, ok := m.items[key]; ok {
			m.remove(elem)
		}
	}
	return nil
}

// Len returns the number of entries, expired ones included until swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the sweeper. It is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory[V]) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mu.Lock()
			for elem := m.lru.Back(); elem != nil; {
				prev := elem.Prev()
				if m.expired(elem.Value.(*memoryEntry[V])) {
					m.remove(elem)
				}
				elem = prev
			}
			m.mu.Unlock()
		}
	}
}

// expired must be called with mu held.
func (m *Memory[V]) expired(e *memoryEntry[V]) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}

// remove must be called with mu held.
func (m *Memory[V]) remove(elem *list.Element) {
	m.lru.Remove(elem)
	delete(m.items, elem.Value.(*memoryEntry[V]).key)
}

var _ Cache[any] = (*Memory[any])(nil)
