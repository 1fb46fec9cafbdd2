// Package exporters builds OpenTelemetry exporters by name.
package exporters

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Options tune the exporters. The zero value reads endpoints from the
// standard OTEL_* variables, writes stdout output to os.Stdout and registers
// Prometheus collectors with the global registry.
type Options struct {
	Endpoint   string
	Writer     io.Writer
	Registerer promclient.Registerer
}

func (o Options) writer() io.Writer {
	if o.Writer == nil {
		return os.Stdout
	}
	return o.Writer
}

// endpoint returns the explicit endpoint, or the first OTEL variable set.
func (o Options) endpoint(vars ...string) (string, error) {
	if o.Endpoint != "" {
		return o.Endpoint, nil
	}
	for _, v := range vars {
		if e := os.Getenv(v); e != "" {
			return e, nil
		}
	}
	return "", fmt.Errorf("exporter endpoint not configured: set %s", vars[0])
}

type (
	traceBuilder  func(context.Context, Options) (sdktrace.SpanExporter, error)
	metricBuilder func(context.Context, Options) (sdkmetric.Reader, error)
)

var traceBuilders = map[string]traceBuilder{
	"none": func(context.Context, Options) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))
	},
	"stdout": func(_ context.Context, o Options) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithWriter(o.writer()))
	},
	"otlp": func(ctx context.Context, o Options) (sdktrace.SpanExporter, error) {
		ep, err := o.endpoint("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
		if err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(ep))
	},
	"otlphttp": func(ctx context.Context, o Options) (sdktrace.SpanExporter, error) {
		ep, err := o.endpoint("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
		if err != nil {
			return nil, err
		}
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(ep))
	},
	// Jaeger ingests OTLP natively.
	"jaeger": func(ctx context.Context, o Options) (sdktrace.SpanExporter, error) {
		ep, err := o.endpoint("OTEL_EXPORTER_JAEGER_ENDPOINT")
		if err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(ep))
	},
}

var metricBuilders = map[string]metricBuilder{
	"none": func(context.Context, Options) (sdkmetric.Reader, error) {
		return sdkmetric.NewManualReader(), nil
	},
	"stdout": func(_ context.Context, o Options) (sdkmetric.Reader, error) {
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(o.writer()))
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil
	},
	"otlp": func(ctx context.Context, o Options) (sdkmetric.Reader, error) {
		ep, err := o.endpoint("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
		if err != nil {
			return nil, err
		}
		exp, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(ep))
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil
	},
	"prometheus": func(_ context.Context, o Options) (sdkmetric.Reader, error) {
		if o.Registerer == nil {
			return prometheus.New()
		}
		return prometheus.New(prometheus.WithRegisterer(o.Registerer))
	},
}

// NewTracingExporter creates the span exporter registered under name. An
// empty name means "none".
func NewTracingExporter(ctx context.Context, name string, opts Options) (sdktrace.SpanExporter, error) {
	if name == "" {
		name = "none"
	}
	build, ok := traceBuilders[name]
	if !ok {
		return nil, fmt.Errorf("unknown tracing exporter: %q", name)
	}
	exp, err := build(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create %s tracing exporter: %w", name, err)
	}
	return exp, nil
}

// NewMetricsReader creates the metrics reader registered under name. An
// empty name means "none".
func NewMetricsReader(ctx context.Context, name string, opts Options) (sdkmetric.Reader, error) {
	if name == "" {
		name = "none"
	}
	build, ok := metricBuilders[name]
	if !ok {
		return nil, fmt.Errorf("unknown metrics exporter: %q", name)
	}
	r, err := build(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create %s metrics reader: %w", name, err)
	}
	return r, nil
}

// TracingExporters lists the supported tracing exporter names.
func TracingExporters() []string { return names(traceBuilders) }

// MetricsExporters lists the supported metrics exporter names.
func MetricsExporters() []string { return names(metricBuilders) }

func names[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
