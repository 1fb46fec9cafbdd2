package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rohannair2022/unscene-uofthacks13/insight"
)

// LRUCache is a bounded in-memory cache that evicts the least recently used
// entry once full.
type LRUCache struct {
	entries *lru.Cache[string, insight.Insight]
}

// NewLRUCache creates a cache holding at most size entries.
func NewLRUCache(size int) (*LRUCache, error) {
	entries, err := lru.New[string, insight.Insight](size)
	if err != nil {
		return nil, fmt.Errorf("cache: lru: %w", err)
	}
	return &LRUCache{entries: entries}, nil
}

// Get retrieves a value and marks it recently used.
func (c *LRUCache) Get(_ context.Context, key string) (insight.Insight, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		return insight.Insight{}, false
	}
	return cloneInsight(v), true
}

// Put stores a value, evicting the oldest entry if the cache is full.
func (c *LRUCache) Put(_ context.Context, key string, value insight.Insight) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	c.entries.Add(key, cloneInsight(value))
	return nil
}

// Len returns the number of entries.
func (c *LRUCache) Len(_ context.Context) int {
	return c.entries.Len()
}

var _ Cache = (*LRUCache)(nil)
