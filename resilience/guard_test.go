package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGuard_Do(t *testing.T) {
	g := NewGuard(GuardConfig{Timeout: time.Second})
	got, err := Do(context.Background(), g, func(context.Context) (string, error) {
		return "content", nil
	})
	if err != nil || got != "content" {
		t.Errorf("Do = (%q, %v), want (%q, nil)", got, err, "content")
	}

	got, err = Do(context.Background(), g, func(context.Context) (string, error) {
		return "partial", errProvider
	})
	if !errors.Is(err, errProvider) || got != "" {
		t.Errorf("Do = (%q, %v), want zero value and %v", got, err, errProvider)
	}
}

func TestGuard_TimeoutBoundsCall(t *testing.T) {
	g := NewGuard(GuardConfig{Timeout: 20 * time.Millisecond})
	_, err := Do(context.Background(), g, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Do = %v, want ErrTimeout", err)
	}
}

func TestGuard_BreakerOpensAndShortCircuits(t *testing.T) {
	g := NewGuard(GuardConfig{
		Timeout: time.Second,
		Circuit: CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour},
	})
	ctx := context.Background()
	calls := 0
	op := func(context.Context) error { calls++; return errProvider }

	_ = g.Execute(ctx, op)
	_ = g.Execute(ctx, op)
	if err := g.Execute(ctx, op); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("third Execute = %v, want ErrCircuitOpen", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if g.Circuit().State() != StateOpen {
		t.Errorf("State = %v, want open", g.Circuit().State())
	}
}

func TestGuard_RetryInsideBreaker(t *testing.T) {
	g := NewGuard(GuardConfig{
		Timeout: time.Second,
		Circuit: CircuitBreakerConfig{MaxFailures: 1},
		Retry:   RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond},
	})
	calls := 0
	err := g.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errProvider
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute = %v", err)
	}
	if g.Circuit().State() != StateClosed {
		t.Errorf("State = %v, want closed when retries recover", g.Circuit().State())
	}
}

func TestGuard_RateLimited(t *testing.T) {
	g := NewGuard(GuardConfig{RateLimit: RateLimiterConfig{Rate: 0.001, Burst: 1}})
	ctx := context.Background()
	_ = g.Execute(ctx, succeed)
	if err := g.Execute(ctx, succeed); !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Execute = %v, want ErrRateLimitExceeded", err)
	}
}

func TestGuard_DisabledComponents(t *testing.T) {
	g := NewGuard(GuardConfig{DisableCircuit: true, DisableBulkhead: true, DisableRateLimit: true})
	if g.Circuit() != nil || g.Bulkhead() != nil {
		t.Error("disabled components should be nil")
	}
	for i := 0; i < 100; i++ {
		if err := g.Execute(context.Background(), succeed); err != nil {
			t.Fatalf("Execute #%d = %v", i, err)
		}
	}
	if g.Timeout() != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s", g.Timeout())
	}
}
