package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the dagflow tracer instance, backed by the global OTel
// tracer provider.
var tracer = otel.Tracer("dagflow")

// SpanManager handles trace span lifecycle for graph operations.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when
// disabled.
type SpanManager interface {
	// StartFinishSpan starts a span covering a graph finish barrier.
	StartFinishSpan(ctx context.Context, graphID string) (context.Context, trace.Span)

	// StartHookSpan starts a span for a single node lifecycle hook,
	// as a child of the finish span.
	StartHookSpan(ctx context.Context, nodeID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartFinishSpan starts a span covering a graph finish barrier.
func (m *otelSpanManager) StartFinishSpan(ctx context.Context, graphID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "dagflow.finish",
		trace.WithAttributes(
			attribute.String("graph.id", graphID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartHookSpan starts a span for a single node lifecycle hook.
func (m *otelSpanManager) StartHookSpan(ctx context.Context, nodeID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "dagflow.hook."+nodeID,
		trace.WithAttributes(
			attribute.String("node.id", nodeID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
