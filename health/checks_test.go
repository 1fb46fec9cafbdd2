package health

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/rohannair2022/unscene-uofthacks13/resilience"
)

type fakeCache struct {
	n       int
	pingErr error
}

func (f fakeCache) Len(context.Context) int { return f.n }

type fakeRemoteCache struct{ fakeCache }

func (f fakeRemoteCache) Ping(context.Context) error { return f.pingErr }

func TestCacheChecker(t *testing.T) {
	ctx := context.Background()

	r := NewCacheChecker(fakeCache{n: 3}, 0).Check(ctx)
	if r.Status != StatusHealthy || r.Details["entries"] != 3 {
		t.Errorf("result = %+v", r)
	}

	r = NewCacheChecker(fakeCache{n: 10}, 10).Check(ctx)
	if r.Status != StatusDegraded {
		t.Errorf("status at warn threshold = %v, want degraded", r.Status)
	}

	r = NewCacheChecker(fakeRemoteCache{fakeCache{n: 1, pingErr: errors.New("refused")}}, 0).Check(ctx)
	if r.Status != StatusUnhealthy {
		t.Errorf("status with failed ping = %v, want unhealthy", r.Status)
	}
}

func TestCredentialChecker(t *testing.T) {
	c := NewCredentialChecker(true)
	if r := c.Check(context.Background()); r.Status != StatusHealthy || !c.Configured() {
		t.Errorf("configured credential result = %+v", r)
	}
	if r := NewCredentialChecker(false).Check(context.Background()); r.Status != StatusUnhealthy {
		t.Errorf("missing credential status = %v, want unhealthy", r.Status)
	}
}

func TestCircuitChecker(t *testing.T) {
	if r := NewCircuitChecker(nil).Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("nil breaker status = %v", r.Status)
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{MaxFailures: 1})
	c := NewCircuitChecker(cb)
	if r := c.Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("closed breaker status = %v", r.Status)
	}

	_ = cb.Execute(context.Background(), func(context.Context) error { return errors.New("down") })
	r := c.Check(context.Background())
	if r.Status != StatusDegraded || r.Details["state"] != "open" {
		t.Errorf("open breaker result = %+v", r)
	}
}

func TestMemoryChecker(t *testing.T) {
	tests := []struct {
		name  string
		alloc uint64
		want  Status
	}{
		{"normal", 10, StatusHealthy},
		{"warning", 85, StatusDegraded},
		{"critical", 99, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemoryChecker(MemoryCheckerConfig{MaxHeapBytes: 100})
			m.read = func(s *runtime.MemStats) { s.HeapAlloc = tt.alloc }
			if r := m.Check(context.Background()); r.Status != tt.want {
				t.Errorf("status = %v, want %v (%s)", r.Status, tt.want, r.Message)
			}
		})
	}
}

func TestMemoryChecker_Live(t *testing.T) {
	m := NewMemoryChecker(MemoryCheckerConfig{})
	if m.Name() != "memory" {
		t.Errorf("Name = %q", m.Name())
	}
	r := m.Check(context.Background())
	if r.Status != StatusHealthy {
		t.Errorf("status without ceiling = %v, want healthy", r.Status)
	}
	if _, ok := r.Details["heap_alloc_bytes"]; !ok {
		t.Errorf("details missing heap_alloc_bytes: %v", r.Details)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r := m.Check(ctx); r.Status != StatusUnhealthy {
		t.Errorf("cancelled status = %v, want unhealthy", r.Status)
	}
}
