// Package resilience guards calls to the model provider.
//
// A Guard composes, from outermost to innermost: a token-bucket rate limiter,
// a bulkhead capping concurrent calls, a circuit breaker, an optional retry
// loop, and a per-attempt timeout. Each piece is usable on its own.
//
//	g := resilience.NewGuard(resilience.GuardConfig{
//	    Timeout: 30 * time.Second,
//	    Circuit: resilience.CircuitBreakerConfig{MaxFailures: 5},
//	})
//	text, err := resilience.Do(ctx, g, func(ctx context.Context) (string, error) {
//	    return client.Call(ctx, prompt)
//	})
//
// Errors wrapped with Permanent are never retried and never trip the breaker.
package resilience
