package travelbot

import (
	"log/slog"
	"time"

	"github.com/mansiraturi/travelbot/pkg/travelbot/observability"
)

// Defaults for orchestrator tuning knobs.
const (
	// DefaultStepTimeout bounds one Step call end to end.
	DefaultStepTimeout = 60 * time.Second

	// DefaultMaxIterations bounds node executions per step. A full
	// step runs at most a handful of nodes, so hitting this means the
	// graph is looping.
	DefaultMaxIterations = 25
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger. Nil is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracing enables span creation through the given manager.
func WithTracing(sm observability.SpanManager) Option {
	return func(o *Orchestrator) {
		if sm != nil {
			o.spans = sm
			o.tracing = true
		}
	}
}

// WithClock sets the time source. Tests inject a fixed clock to make
// checkpoints and histories deterministic.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithStepTimeout bounds one Step call. Zero disables the bound.
func WithStepTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.stepTimeout = d
	}
}

// WithMaxIterations bounds node executions per step.
func WithMaxIterations(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}
