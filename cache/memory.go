package cache

import (
	"context"
	"sync"

	"github.com/rohannair2022/unscene-uofthacks13/insight"
)

// MemoryCache is an unbounded in-memory cache. Entries live for the life of
// the process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]insight.Insight
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]insight.Insight)}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(_ context.Context, key string) (insight.Insight, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return insight.Insight{}, false
	}
	return cloneInsight(v), true
}

// Put stores a value.
func (c *MemoryCache) Put(_ context.Context, key string, value insight.Insight) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = cloneInsight(value)
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries.
func (c *MemoryCache) Len(_ context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ Cache = (*MemoryCache)(nil)
