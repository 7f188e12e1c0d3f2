package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the travelbot tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("travelbot")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartStepSpan starts a span for one orchestrator step.
	StartStepSpan(ctx context.Context, conversationID, stage string) (context.Context, trace.Span)

	// StartNodeSpan starts a span for a node execution.
	// The node span should be a child of the step span.
	StartNodeSpan(ctx context.Context, stage string) (context.Context, trace.Span)

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

// StartStepSpan starts a span for one orchestrator step.
func (m *otelSpanManager) StartStepSpan(ctx context.Context, conversationID, stage string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "travelbot.step",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("conversation.stage", stage),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartNodeSpan starts a span for a node execution.
func (m *otelSpanManager) StartNodeSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "travelbot.node."+stage,
		trace.WithAttributes(
			attribute.String("conversation.stage", stage),
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
	AddSpanEvent(ctx, name, attrs...)
}

// AddSpanEvent adds an event to the current span in context.
// Useful for annotating fallbacks and retries without threading the manager.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
