package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/rohannair2022/unscene-uofthacks13/insight"
)

type failingPutCache struct{ *MemoryCache }

func (failingPutCache) Put(context.Context, string, insight.Insight) error {
	return errors.New("disk full")
}

func TestReadThrough_MissThenHit(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (insight.Insight, error) {
		calls++
		return sample("loaded"), nil
	}

	v, hit, err := ReadThrough(ctx, c, "k", load, nil)
	if err != nil || hit || v.Summary != "loaded" {
		t.Fatalf("first ReadThrough = (%+v, %v, %v)", v, hit, err)
	}
	v, hit, err = ReadThrough(ctx, c, "k", load, nil)
	if err != nil || !hit || v.Summary != "loaded" {
		t.Fatalf("second ReadThrough = (%+v, %v, %v)", v, hit, err)
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestReadThrough_ErrorsNotCached(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	boom := errors.New("boom")

	_, _, err := ReadThrough(ctx, c, "k", func(context.Context) (insight.Insight, error) {
		return insight.Insight{}, boom
	}, nil)
	if !errors.Is(err, boom) {
		t.Errorf("ReadThrough error = %v, want %v", err, boom)
	}
	if n := c.Len(ctx); n != 0 {
		t.Errorf("Len = %d, want 0 after failed load", n)
	}
}

func TestReadThrough_PutErrorReported(t *testing.T) {
	c := failingPutCache{NewMemoryCache()}
	var gotKey string
	v, hit, err := ReadThrough(context.Background(), c, "k", func(context.Context) (insight.Insight, error) {
		return sample("x"), nil
	}, func(key string, err error) { gotKey = key })

	if err != nil || hit || v.Summary != "x" {
		t.Fatalf("ReadThrough = (%+v, %v, %v)", v, hit, err)
	}
	if gotKey != "k" {
		t.Errorf("put error callback key = %q, want %q", gotKey, "k")
	}
}

func TestReadThrough_NilCache(t *testing.T) {
	_, _, err := ReadThrough(context.Background(), nil, "k", nil, nil)
	if !errors.Is(err, ErrNilCache) {
		t.Errorf("ReadThrough(nil) = %v, want ErrNilCache", err)
	}
}
