// cache.go - In-memory cache for audit history

package storage

import (
	"context"
	"sync"
	"time"
)

// HistoryCache holds the last history read from the sheet for a fixed TTL
type HistoryCache struct {
	items    []HistoryItem
	loadedAt time.Time
	loaded   bool
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
}

// NewHistoryCache creates a cache. A ttl <= 0 disables caching.
func NewHistoryCache(ttl time.Duration) *HistoryCache {
	return &HistoryCache{ttl: ttl, now: time.Now}
}

func (c *HistoryCache) fresh() bool {
	return c.loaded && c.ttl > 0 && c.now().Sub(c.loadedAt) < c.ttl
}

// Get returns the cached items if they are still fresh
func (c *HistoryCache) Get() ([]HistoryItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.fresh() {
		return nil, false
	}
	return c.items, true
}

// GetOrLoad retrieves history from cache or loads it with load
func (c *HistoryCache) GetOrLoad(ctx context.Context, load func(context.Context) ([]HistoryItem, error)) ([]HistoryItem, error) {
	if items, ok := c.Get(); ok {
		return items, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.fresh() {
		return c.items, nil
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.items = items
	c.loadedAt = c.now()
	c.loaded = true
	return items, nil
}

// Invalidate drops the cached history
func (c *HistoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.loaded = false
}
