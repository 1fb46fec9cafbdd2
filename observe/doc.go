// Package observe provides the service's telemetry: a JSON structured
// logger, OpenTelemetry tracing and metrics, and a Middleware that wraps an
// operation with all three.
//
// Exporters are chosen by name (see package exporters). With the
// "prometheus" metrics exporter, instruments are registered with the default
// Prometheus registry and served by promhttp.
package observe
