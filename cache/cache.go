package cache

import (
	"context"
	"errors"
	"strings"

	"github.com/rohannair2022/unscene-uofthacks13/insight"
)

// Sentinel errors for cache operations.
var (
	ErrNilCache       = errors.New("cache: cache is nil")
	ErrInvalidKey     = errors.New("cache: key is invalid")
	ErrUnknownBackend = errors.New("cache: unknown backend")
)

// Cache holds insights keyed by query key.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Get never errors; a backend failure reads as a miss.
// - Put is idempotent and may overwrite an existing entry.
// - Entries never expire.
type Cache interface {
	// Get returns the insight stored under key.
	Get(ctx context.Context, key string) (insight.Insight, bool)

	// Put stores value under key.
	Put(ctx context.Context, key string, value insight.Insight) error

	// Len returns the number of stored entries.
	Len(ctx context.Context) int
}

// ValidateKey rejects blank keys. Any other key a Query can produce is
// storable: the backends accept arbitrary length and bytes.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}

// cloneInsight copies the spots slice so callers cannot mutate stored data.
func cloneInsight(in insight.Insight) insight.Insight {
	spots := make([]insight.Spot, len(in.Spots))
	copy(spots, in.Spots)
	return insight.Insight{Summary: in.Summary, Spots: spots}
}
