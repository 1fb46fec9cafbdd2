package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rohannair2022/unscene-uofthacks13/insight"
)

// DefaultRedisPrefix namespaces insight keys in Redis.
const DefaultRedisPrefix = "worldview:insight:"

// RedisCache stores insights as JSON strings without expiry. A companion set
// under "<prefix>keys" tracks stored keys so Len is a single SCARD.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache wraps an existing client. An empty prefix uses
// DefaultRedisPrefix.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) dataKey(key string) string { return c.prefix + "entry:" + key }
func (c *RedisCache) indexKey() string          { return c.prefix + "keys" }

// Get retrieves a value. Connection and decode failures read as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (insight.Insight, bool) {
	raw, err := c.client.Get(ctx, c.dataKey(key)).Bytes()
	if err != nil {
		return insight.Insight{}, false
	}
	var v insight.Insight
	if err := json.Unmarshal(raw, &v); err != nil {
		return insight.Insight{}, false
	}
	if v.Spots == nil {
		v.Spots = []insight.Spot{}
	}
	return v, true
}

// Put stores a value with no expiry.
func (c *RedisCache) Put(ctx context.Context, key string, value insight.Insight) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(cloneInsight(value))
	if err != nil {
		return fmt.Errorf("cache: marshal insight: %w", err)
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.dataKey(key), data, 0)
		pipe.SAdd(ctx, c.indexKey(), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: redis put: %w", err)
	}
	return nil
}

// Len returns the number of stored entries, or 0 if Redis is unreachable.
func (c *RedisCache) Len(ctx context.Context) int {
	n, err := c.client.SCard(ctx, c.indexKey()).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	err := c.client.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}

var _ Cache = (*RedisCache)(nil)
