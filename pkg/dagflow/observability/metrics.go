package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records dagflow lifecycle metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when
// disabled.
type MetricsRecorder interface {
	// RecordHookRun records one node lifecycle hook invocation with
	// its duration and error status.
	RecordHookRun(ctx context.Context, nodeID string, duration time.Duration, err error)

	// RecordGraphFinish records a graph finish barrier completion.
	RecordGraphFinish(ctx context.Context, success bool, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	hookRuns      metric.Int64Counter
	hookLatency   metric.Float64Histogram
	hookErrors    metric.Int64Counter
	graphFinishes metric.Int64Counter
	finishLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance,
// lazily initialized on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("dagflow")

	hookRuns, err := meter.Int64Counter("dagflow.hook.runs",
		metric.WithDescription("Number of lifecycle hook invocations"),
	)
	if err != nil {
		return nil, err
	}

	hookLatency, err := meter.Float64Histogram("dagflow.hook.latency_ms",
		metric.WithDescription("Lifecycle hook latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	hookErrors, err := meter.Int64Counter("dagflow.hook.errors",
		metric.WithDescription("Number of lifecycle hook failures"),
	)
	if err != nil {
		return nil, err
	}

	graphFinishes, err := meter.Int64Counter("dagflow.graph.finishes",
		metric.WithDescription("Number of graph finish barriers"),
	)
	if err != nil {
		return nil, err
	}

	finishLatency, err := meter.Float64Histogram("dagflow.graph.finish_latency_ms",
		metric.WithDescription("Graph finish barrier latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		hookRuns:      hookRuns,
		hookLatency:   hookLatency,
		hookErrors:    hookErrors,
		graphFinishes: graphFinishes,
		finishLatency: finishLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses
// OpenTelemetry. If metrics initialization fails, returns a no-op
// recorder.
//
// The recorder uses the global OTel meter provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordHookRun records one node lifecycle hook invocation.
func (m *otelMetrics) RecordHookRun(ctx context.Context, nodeID string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("node_id", nodeID),
	}

	m.hookRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.hookLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.hookErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordGraphFinish records a graph finish barrier completion.
func (m *otelMetrics) RecordGraphFinish(ctx context.Context, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}
	m.graphFinishes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.finishLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}
