package orchestrator

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/rohannair2022/unscene-uofthacks13/cache"
	"github.com/rohannair2022/unscene-uofthacks13/insight"
	"github.com/rohannair2022/unscene-uofthacks13/observe"
	"github.com/rohannair2022/unscene-uofthacks13/resilience"
	"github.com/rohannair2022/unscene-uofthacks13/upstream"
)

// Generator produces raw model output for a prompt. *upstream.Client
// implements it.
type Generator interface {
	Call(ctx context.Context, prompt string) (string, error)
}

// Outcome tags how a Result was produced.
type Outcome int

const (
	OutcomeHit Outcome = iota
	OutcomeGenerated
	OutcomeDegraded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeGenerated:
		return "generated"
	case OutcomeDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Result is the answer to one query. Err is set only for OutcomeDegraded and
// is meant for logs, not for callers.
type Result struct {
	Insight insight.Insight
	Outcome Outcome
	Key     string
	Err     error
}

// Orchestrator resolves queries. It is safe for concurrent use.
type Orchestrator struct {
	cache   cache.Cache
	gen     Generator
	keyer   cache.Keyer
	guard   *resilience.Guard
	mw      *observe.Middleware
	logger  observe.Logger
	flights singleflight.Group
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithKeyer overrides cache.DefaultKeyer.
func WithKeyer(k cache.Keyer) Option {
	return func(o *Orchestrator) { o.keyer = k }
}

// WithGuard runs generator calls through g.
func WithGuard(g *resilience.Guard) Option {
	return func(o *Orchestrator) { o.guard = g }
}

// WithObserver records spans, metrics and log lines through mw. Its logger
// is used unless WithLogger is also given.
func WithObserver(mw *observe.Middleware) Option {
	return func(o *Orchestrator) {
		o.mw = mw
		if mw != nil && o.logger == nil {
			o.logger = mw.Logger()
		}
	}
}

// WithLogger sets the logger for cache write failures.
func WithLogger(l observe.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator over c and gen.
func New(c cache.Cache, gen Generator, opts ...Option) (*Orchestrator, error) {
	if c == nil {
		return nil, cache.ErrNilCache
	}
	if gen == nil {
		return nil, errors.New("orchestrator: generator is required")
	}
	o := &Orchestrator{cache: c, gen: gen}
	for _, opt := range opts {
		opt(o)
	}
	if o.keyer == nil {
		o.keyer = cache.NewDefaultKeyer()
	}
	if o.logger == nil {
		o.logger = observe.NopLogger()
	}
	return o, nil
}

// Resolve returns the insight for q.
//
// A caller whose ctx ends before generation finishes gets a degraded result
// at once; the generation keeps running and still fills the cache.
func (o *Orchestrator) Resolve(ctx context.Context, q insight.Query) Result {
	key, err := o.keyer.Key(q)
	if err != nil {
		return degraded(q, key, err)
	}

	var res Result
	o.run(ctx, observe.Operation{Name: "insight.resolve", Key: key}, func(ctx context.Context) (string, error) {
		res = o.resolve(ctx, q, key)
		return res.Outcome.String(), res.Err
	})
	return res
}

type flight struct {
	v   insight.Insight
	hit bool
}

func (o *Orchestrator) resolve(ctx context.Context, q insight.Query, key string) Result {
	if v, ok := o.cache.Get(ctx, key); ok {
		return Result{Insight: v, Outcome: OutcomeHit, Key: key}
	}

	ch := o.flights.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		v, hit, err := cache.ReadThrough(fctx, o.cache, key, func(ctx context.Context) (insight.Insight, error) {
			return o.generate(ctx, q, key)
		}, o.putFailed)
		return flight{v: v, hit: hit}, err
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return degraded(q, key, r.Err)
		}
		f := r.Val.(flight)
		out := Result{Insight: clone(f.v), Outcome: OutcomeGenerated, Key: key}
		if f.hit {
			out.Outcome = OutcomeHit
		}
		return out
	case <-ctx.Done():
		return degraded(q, key, ctx.Err())
	}
}

// generate calls the generator through the guard and validates its output.
func (o *Orchestrator) generate(ctx context.Context, q insight.Query, key string) (insight.Insight, error) {
	var v insight.Insight
	_, err := o.run(ctx, observe.Operation{Name: "insight.generate", Key: key}, func(ctx context.Context) (string, error) {
		prompt := insight.BuildPrompt(q.Place, q.Region)
		raw, err := o.call(ctx, prompt)
		if err != nil {
			return failureLabel(err), err
		}
		v, err = insight.Parse(raw)
		if err != nil {
			return failureLabel(err), err
		}
		return "ok", nil
	})
	return v, err
}

func (o *Orchestrator) call(ctx context.Context, prompt string) (string, error) {
	if o.guard == nil {
		return o.gen.Call(ctx, prompt)
	}
	return resilience.Do(ctx, o.guard, func(ctx context.Context) (string, error) {
		return o.gen.Call(ctx, prompt)
	})
}

func (o *Orchestrator) run(ctx context.Context, op observe.Operation, fn observe.ExecuteFunc) (string, error) {
	if o.mw == nil {
		return fn(ctx)
	}
	return o.mw.Run(ctx, op, fn)
}

func (o *Orchestrator) putFailed(key string, err error) {
	o.logger.Warn(context.Background(), "cache put failed", observe.Field{Key: "key", Value: key}, observe.Err(err))
}

func degraded(q insight.Query, key string, err error) Result {
	return Result{Insight: insight.Degraded(q.Place), Outcome: OutcomeDegraded, Key: key, Err: err}
}

// failureLabel names err for the outcome label of insight.generate.
func failureLabel(err error) string {
	switch {
	case errors.Is(err, insight.ErrInvalidInsight):
		return "invalid"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, resilience.ErrBulkheadFull):
		return "bulkhead_full"
	case errors.Is(err, resilience.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, resilience.ErrTimeout):
		return "timeout"
	}
	if k := upstream.KindOf(err); k != 0 {
		return k.String()
	}
	return "error"
}

// clone copies v so callers sharing a flight do not share a Spots slice.
func clone(v insight.Insight) insight.Insight {
	if v.Spots != nil {
		spots := make([]insight.Spot, len(v.Spots))
		copy(spots, v.Spots)
		v.Spots = spots
	}
	return v
}
