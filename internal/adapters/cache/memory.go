package cache

import (
	"context"
	"sync"
	"time"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// MemoryOption applies a configuration option to the MemoryCache.
type MemoryOption func(*MemoryCache)

// WithTTL expires entries after ttl. Zero keeps them until invalidated.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(c *MemoryCache) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

type entry struct {
	ds       *model.Datasets
	storedAt time.Time
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, projectID string) (*model.Datasets, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[projectID]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		if cur, ok := c.entries[projectID]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, projectID)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.ds, true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, projectID string, ds *model.Datasets) error {
	if ds == nil {
		return ErrNilDatasets
	}
	c.mu.Lock()
	c.entries[projectID] = entry{ds: ds, storedAt: c.now()}
	c.mu.Unlock()
	return nil
}

// Invalidate implements Cache.
func (c *MemoryCache) Invalidate(_ context.Context, projectID string) error {
	c.mu.Lock()
	delete(c.entries, projectID)
	c.mu.Unlock()
	return nil
}

// Name implements Cache.
func (c *MemoryCache) Name() string { return BackendMemory }

// Len returns the number of cached projects.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
