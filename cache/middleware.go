package cache

import (
	"context"

	"github.com/rohannair2022/unscene-uofthacks13/insight"
)

// LoaderFunc produces an insight on a cache miss.
type LoaderFunc func(ctx context.Context) (insight.Insight, error)

// PutErrorFunc observes a failed store after a successful load.
type PutErrorFunc func(key string, err error)

// ReadThrough returns the cached value for key, or calls load and stores its
// result. It reports whether the value came from the cache.
// Errors are NOT cached. A failed Put does not fail the read; it is passed
// to onPutErr when that is non-nil.
func ReadThrough(ctx context.Context, c Cache, key string, load LoaderFunc, onPutErr PutErrorFunc) (insight.Insight, bool, error) {
	if c == nil {
		return insight.Insight{}, false, ErrNilCache
	}
	if v, ok := c.Get(ctx, key); ok {
		return v, true, nil
	}

	v, err := load(ctx)
	if err != nil {
		return insight.Insight{}, false, err
	}
	if err := c.Put(ctx, key, v); err != nil && onPutErr != nil {
		onPutErr(key, err)
	}
	return v, false, nil
}
