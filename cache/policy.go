package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Policy selects and sizes the cache backend.
type Policy struct {
	// Backend is "memory" or "redis".
	// Default: memory
	Backend string

	// MaxEntries bounds the memory backend. Zero means unbounded with no
	// eviction; a positive value switches to an LRUCache.
	MaxEntries int

	// Redis configures the redis backend.
	Redis RedisOptions
}

// RedisOptions configures RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// DefaultPolicy returns an unbounded in-memory policy.
func DefaultPolicy() Policy {
	return Policy{Backend: BackendMemory}
}

// Validate checks the policy for consistency.
func (p Policy) Validate() error {
	switch strings.ToLower(p.Backend) {
	case "", BackendMemory:
		if p.MaxEntries < 0 {
			return fmt.Errorf("cache: max entries must be >= 0")
		}
	case BackendRedis:
		if p.Redis.Addr == "" {
			return fmt.Errorf("cache: redis backend requires an address")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, p.Backend)
	}
	return nil
}

// New builds the Cache described by p. The redis backend is pinged once so
// misconfiguration fails at startup.
func New(ctx context.Context, p Policy) (Cache, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(p.Backend) {
	case BackendRedis:
		rc := NewRedisCache(redis.NewClient(&redis.Options{
			Addr:     p.Redis.Addr,
			Password: p.Redis.Password,
			DB:       p.Redis.DB,
		}), p.Redis.Prefix)
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, err
		}
		return rc, nil
	default:
		if p.MaxEntries > 0 {
			return NewLRUCache(p.MaxEntries)
		}
		return NewMemoryCache(), nil
	}
}
