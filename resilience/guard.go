package resilience

import (
	"context"
	"sync"
	"time"
)

// GuardConfig configures a Guard. Zero-valued sections take their
// component defaults; Disable* flags drop a component entirely.
type GuardConfig struct {
	// Timeout bounds each attempt.
	// Default: 30s
	Timeout time.Duration

	Circuit   CircuitBreakerConfig
	Bulkhead  BulkheadConfig
	RateLimit RateLimiterConfig
	Retry     RetryConfig

	DisableCircuit   bool
	DisableBulkhead  bool
	DisableRateLimit bool
}

// Guard composes the resilience patterns around a provider call.
type Guard struct {
	rateLimiter *RateLimiter
	bulkhead    *Bulkhead
	circuit     *CircuitBreaker
	retry       *Retry
	timeout     *Timeout
}

// NewGuard builds a Guard from cfg.
func NewGuard(cfg GuardConfig) *Guard {
	g := &Guard{
		retry:   NewRetry(cfg.Retry),
		timeout: NewTimeout(TimeoutConfig{Timeout: cfg.Timeout}),
	}
	if !cfg.DisableRateLimit {
		g.rateLimiter = NewRateLimiter(cfg.RateLimit)
	}
	if !cfg.DisableBulkhead {
		g.bulkhead = NewBulkhead(cfg.Bulkhead)
	}
	if !cfg.DisableCircuit {
		g.circuit = NewCircuitBreaker(cfg.Circuit)
	}
	return g
}

// Execute runs op through, in order: rate limiter, bulkhead, circuit
// breaker, retry, timeout. The breaker sees the outcome after retries.
func (g *Guard) Execute(ctx context.Context, op func(context.Context) error) error {
	run := func(ctx context.Context) error {
		return g.retry.Execute(ctx, func(ctx context.Context) error {
			return g.timeout.Execute(ctx, op)
		})
	}
	if g.circuit != nil {
		inner := run
		run = func(ctx context.Context) error { return g.circuit.Execute(ctx, inner) }
	}
	if g.bulkhead != nil {
		inner := run
		run = func(ctx context.Context) error { return g.bulkhead.Execute(ctx, inner) }
	}
	if g.rateLimiter != nil {
		inner := run
		run = func(ctx context.Context) error { return g.rateLimiter.Execute(ctx, inner) }
	}
	return run(ctx)
}

// Do runs op through g and returns its value. An attempt abandoned by the
// timeout may still finish later; its value is guarded by a mutex.
func Do[T any](ctx context.Context, g *Guard, op func(context.Context) (T, error)) (T, error) {
	var (
		mu  sync.Mutex
		out T
	)
	err := g.Execute(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		out = v
		mu.Unlock()
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	mu.Lock()
	defer mu.Unlock()
	return out, nil
}

// Circuit returns the guard's circuit breaker, or nil if disabled.
func (g *Guard) Circuit() *CircuitBreaker { return g.circuit }

// Bulkhead returns the guard's bulkhead, or nil if disabled.
func (g *Guard) Bulkhead() *Bulkhead { return g.bulkhead }

// Timeout returns the per-attempt timeout.
func (g *Guard) Timeout() time.Duration { return g.timeout.Duration() }
