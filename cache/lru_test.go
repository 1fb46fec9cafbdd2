package cache

import (
	"context"
	"testing"
)

func TestLRUCache_EvictsOldest(t *testing.T) {
	c, err := NewLRUCache(2)
	if err != nil {
		t.Fatalf("NewLRUCache failed: %v", err)
	}
	ctx := context.Background()

	_ = c.Put(ctx, "a", sample("a"))
	_ = c.Put(ctx, "b", sample("b"))
	// Touch "a" so "b" becomes the oldest.
	if _, ok := c.Get(ctx, "a"); !ok {
		t.Fatal("Get(a) should hit")
	}
	_ = c.Put(ctx, "c", sample("c"))

	if _, ok := c.Get(ctx, "b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get(ctx, "a"); !ok {
		t.Error("a should still be present")
	}
	if n := c.Len(ctx); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
}

func TestLRUCache_InvalidSize(t *testing.T) {
	if _, err := NewLRUCache(0); err == nil {
		t.Error("NewLRUCache(0) should fail")
	}
}

func TestLRUCache_PutRejectsInvalidKey(t *testing.T) {
	c, _ := NewLRUCache(4)
	if err := c.Put(context.Background(), "  ", sample("x")); err != ErrInvalidKey {
		t.Errorf("Put = %v, want ErrInvalidKey", err)
	}
}
