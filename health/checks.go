package health

import (
	"context"
	"fmt"

	"github.com/rohannair2022/unscene-uofthacks13/resilience"
)

// Sizer reports a number of cached entries.
type Sizer interface {
	Len(ctx context.Context) int
}

// Pinger is implemented by remote cache backends.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheChecker reports the cache size. When the cache is remote it also
// pings it. A positive warnAt reports degraded at that many entries.
type CacheChecker struct {
	cache  Sizer
	warnAt int
}

// NewCacheChecker creates a checker for c.
func NewCacheChecker(c Sizer, warnAt int) *CacheChecker {
	return &CacheChecker{cache: c, warnAt: warnAt}
}

func (c *CacheChecker) Name() string { return "cache" }

func (c *CacheChecker) Check(ctx context.Context) Result {
	if p, ok := c.cache.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return Unhealthy("cache unreachable", err)
		}
	}
	n := c.cache.Len(ctx)
	details := map[string]any{"entries": n}
	if c.warnAt > 0 && n >= c.warnAt {
		return Degraded(fmt.Sprintf("%d entries cached", n)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d entries cached", n)).WithDetails(details)
}

// CredentialChecker reports whether a provider credential is configured.
type CredentialChecker struct {
	configured bool
}

// NewCredentialChecker creates a credential checker.
func NewCredentialChecker(configured bool) *CredentialChecker {
	return &CredentialChecker{configured: configured}
}

func (c *CredentialChecker) Name() string { return "credential" }

func (c *CredentialChecker) Check(context.Context) Result {
	if !c.configured {
		return Unhealthy("provider credential missing", ErrCheckFailed)
	}
	return Healthy("provider credential configured")
}

// Configured reports whether the credential is set.
func (c *CredentialChecker) Configured() bool { return c.configured }

// CircuitChecker maps the upstream circuit breaker onto a health status.
// An open circuit is degraded: cached insights are still served.
type CircuitChecker struct {
	cb *resilience.CircuitBreaker
}

// NewCircuitChecker creates a checker for cb. A nil breaker is always healthy.
func NewCircuitChecker(cb *resilience.CircuitBreaker) *CircuitChecker {
	return &CircuitChecker{cb: cb}
}

func (c *CircuitChecker) Name() string { return "upstream" }

func (c *CircuitChecker) Check(context.Context) Result {
	if c.cb == nil {
		return Healthy("circuit breaker disabled")
	}
	m := c.cb.Metrics()
	details := map[string]any{
		"state":    m.State.String(),
		"failures": m.Failures,
		"trips":    m.Trips,
	}
	switch m.State {
	case resilience.StateOpen:
		return Degraded("upstream circuit open").WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("upstream circuit probing").WithDetails(details)
	default:
		return Healthy("upstream circuit closed").WithDetails(details)
	}
}
