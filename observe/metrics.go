package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records operation counts and latencies.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	RecordOperation(ctx context.Context, op Operation, outcome string, duration time.Duration, err error)
}

type metricsImpl struct {
	total    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates the operation instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	total, err := meter.Int64Counter(
		"worldview.operations",
		metric.WithDescription("Operations by name and outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}
	errs, err := meter.Int64Counter(
		"worldview.operation.errors",
		metric.WithDescription("Operations that ended in an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"worldview.operation.duration",
		metric.WithDescription("Operation duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return &metricsImpl{total: total, errors: errs, duration: duration}, nil
}

func (m *metricsImpl) RecordOperation(ctx context.Context, op Operation, outcome string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("operation", op.Name),
		attribute.String("outcome", outcome),
	)
	m.total.Add(ctx, 1, attrs)
	if err != nil {
		m.errors.Add(ctx, 1, attrs)
	}
	m.duration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RegisterCacheGauge reports size() as the worldview.cache.entries gauge on
// every collection.
func RegisterCacheGauge(meter metric.Meter, size func(context.Context) int) error {
	_, err := meter.Int64ObservableGauge(
		"worldview.cache.entries",
		metric.WithDescription("Insights held in the cache"),
		metric.WithUnit("{entry}"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			o.Observe(int64(size(ctx)))
			return nil
		}),
	)
	return err
}
