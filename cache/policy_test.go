package cache

import (
	"context"
	"errors"
	"testing"
)

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"default", DefaultPolicy(), false},
		{"empty backend", Policy{}, false},
		{"bounded memory", Policy{Backend: "memory", MaxEntries: 100}, false},
		{"negative entries", Policy{MaxEntries: -1}, true},
		{"redis without addr", Policy{Backend: "redis"}, true},
		{"redis", Policy{Backend: "REDIS", Redis: RedisOptions{Addr: "localhost:6379"}}, false},
		{"unknown", Policy{Backend: "memcached"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPolicy_UnknownBackendSentinel(t *testing.T) {
	if err := (Policy{Backend: "disk"}).Validate(); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Validate() = %v, want ErrUnknownBackend", err)
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, DefaultPolicy())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New(default) = %T, want *MemoryCache", c)
	}

	c, err = New(ctx, Policy{MaxEntries: 8})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := c.(*LRUCache); !ok {
		t.Errorf("New(max entries) = %T, want *LRUCache", c)
	}
}

func TestNew_RedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(ctx, Policy{Backend: BackendRedis, Redis: RedisOptions{Addr: "127.0.0.1:1"}})
	if err == nil {
		t.Error("New with unreachable redis should fail")
	}
}
