package observe

import (
	"context"
	"time"
)

// ExecuteFunc runs an operation and reports its outcome label.
type ExecuteFunc func(ctx context.Context) (outcome string, err error)

// Middleware wraps operations with a span, metrics, and a log line.
//
// Contract:
//   - Concurrency: Run is safe for concurrent use.
//   - Errors: the wrapped function's error is recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// MiddlewareFromObserver builds a Middleware from an Observer's primitives.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger { return m.logger }

// Run executes fn inside a span named op.Name. Successful operations log at
// debug level with msg "<op> completed"; failures log at warn.
func (m *Middleware) Run(ctx context.Context, op Operation, fn ExecuteFunc) (string, error) {
	ctx, span := m.tracer.StartSpan(ctx, op)
	start := time.Now()

	outcome, err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, outcome, err)
	m.metrics.RecordOperation(ctx, op, outcome, duration, err)

	fields := []Field{
		{Key: "operation", Value: op.Name},
		{Key: "outcome", Value: outcome},
		{Key: "duration_ms", Value: duration.Milliseconds()},
	}
	if op.Key != "" {
		fields = append(fields, Field{Key: "key", Value: op.Key})
	}
	if err != nil {
		m.logger.Warn(ctx, op.Name+" failed", append(fields, Err(err))...)
	} else {
		m.logger.Debug(ctx, op.Name+" completed", fields...)
	}
	return outcome, err
}
