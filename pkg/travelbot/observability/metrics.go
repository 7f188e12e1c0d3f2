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

// MetricsRecorder records orchestrator metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordNodeExecution records a node execution with its duration and error status.
	RecordNodeExecution(ctx context.Context, stage string, duration time.Duration, err error)

	// RecordStep records an orchestrator step completion.
	// done reports whether the conversation reached its terminal node.
	RecordStep(ctx context.Context, done bool, duration time.Duration)

	// RecordCheckpoint records a snapshot save.
	RecordCheckpoint(ctx context.Context, stage string, sizeBytes int64)

	// RecordProviderCall records one upstream search or interpreter call.
	// outcome is "ok", "fallback", or the error kind.
	RecordProviderCall(ctx context.Context, provider, outcome string, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	nodeExecutions  metric.Int64Counter
	nodeLatency     metric.Float64Histogram
	nodeErrors      metric.Int64Counter
	steps           metric.Int64Counter
	stepLatency     metric.Float64Histogram
	checkpointSize  metric.Int64Histogram
	providerCalls   metric.Int64Counter
	providerLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("travelbot")

	nodeExecutions, err := meter.Int64Counter("travelbot.node.executions",
		metric.WithDescription("Number of node executions"),
	)
	if err != nil {
		return nil, err
	}

	nodeLatency, err := meter.Float64Histogram("travelbot.node.latency_ms",
		metric.WithDescription("Node execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	nodeErrors, err := meter.Int64Counter("travelbot.node.errors",
		metric.WithDescription("Number of node execution errors"),
	)
	if err != nil {
		return nil, err
	}

	steps, err := meter.Int64Counter("travelbot.steps",
		metric.WithDescription("Number of orchestrator steps"),
	)
	if err != nil {
		return nil, err
	}

	stepLatency, err := meter.Float64Histogram("travelbot.step.latency_ms",
		metric.WithDescription("Orchestrator step latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	checkpointSize, err := meter.Int64Histogram("travelbot.checkpoint.size_bytes",
		metric.WithDescription("Snapshot size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	providerCalls, err := meter.Int64Counter("travelbot.provider.calls",
		metric.WithDescription("Number of upstream provider calls"),
	)
	if err != nil {
		return nil, err
	}

	providerLatency, err := meter.Float64Histogram("travelbot.provider.latency_ms",
		metric.WithDescription("Upstream provider call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		nodeExecutions:  nodeExecutions,
		nodeLatency:     nodeLatency,
		nodeErrors:      nodeErrors,
		steps:           steps,
		stepLatency:     stepLatency,
		checkpointSize:  checkpointSize,
		providerCalls:   providerCalls,
		providerLatency: providerLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
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

// RecordNodeExecution records a node execution.
func (m *otelMetrics) RecordNodeExecution(ctx context.Context, stage string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("stage", stage),
	}

	m.nodeExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.nodeLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.nodeErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordStep records an orchestrator step.
func (m *otelMetrics) RecordStep(ctx context.Context, done bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Bool("done", done),
	}
	m.steps.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.stepLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordCheckpoint records a snapshot save.
func (m *otelMetrics) RecordCheckpoint(ctx context.Context, stage string, sizeBytes int64) {
	attrs := []attribute.KeyValue{
		attribute.String("stage", stage),
	}
	m.checkpointSize.Record(ctx, sizeBytes, metric.WithAttributes(attrs...))
}

// RecordProviderCall records an upstream provider call.
func (m *otelMetrics) RecordProviderCall(ctx context.Context, provider, outcome string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	}
	m.providerCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.providerLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}
