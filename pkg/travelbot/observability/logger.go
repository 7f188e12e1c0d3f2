// Package observability provides structured logging, metrics, and
// tracing for the travel planner:
//
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// New creates a text logger on stderr at the given level.
// The "error" attribute key is shortened to "err".
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// EnrichLogger adds conversation context to a logger.
// Returns a new logger with conversation_id, stage, and attempt fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "conv-123", "search_flights", 1)
//	enriched.Info("doing work") // includes conversation_id, stage, attempt
func EnrichLogger(logger *slog.Logger, conversationID, stage string, attempt int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("conversation_id", conversationID),
		slog.String("stage", stage),
		slog.Int("attempt", attempt),
	)
}

// LogStepStart logs the start of an orchestrator step.
func LogStepStart(logger *slog.Logger, conversationID, stage string) {
	if logger == nil {
		return
	}
	logger.Info("step starting",
		slog.String("conversation_id", conversationID),
		slog.String("stage", stage),
	)
}

// LogStepComplete logs a completed orchestrator step.
func LogStepComplete(logger *slog.Logger, conversationID, stage string, durationMs float64, nodesRun int, awaiting bool) {
	if logger == nil {
		return
	}
	logger.Info("step completed",
		slog.String("conversation_id", conversationID),
		slog.String("stage", stage),
		slog.Float64("duration_ms", durationMs),
		slog.Int("nodes_executed", nodesRun),
		slog.Bool("awaiting_input", awaiting),
	)
}

// LogStepError logs a failed orchestrator step.
func LogStepError(logger *slog.Logger, conversationID string, err error, durationMs float64, stage string) {
	if logger == nil {
		return
	}
	logger.Error("step failed",
		slog.String("conversation_id", conversationID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("stage", stage),
	)
}

// LogNodeStart logs node execution start.
func LogNodeStart(logger *slog.Logger, stage string) {
	if logger == nil {
		return
	}
	logger.Debug("node starting",
		slog.String("stage", stage),
	)
}

// LogNodeComplete logs successful node completion.
func LogNodeComplete(logger *slog.Logger, stage string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("node completed",
		slog.String("stage", stage),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogNodeError logs node execution error.
func LogNodeError(logger *slog.Logger, stage string, err error) {
	if logger == nil {
		return
	}
	logger.Error("node failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// LogCheckpoint logs snapshot creation.
func LogCheckpoint(logger *slog.Logger, stage string, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint saved",
		slog.String("stage", stage),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogCheckpointError logs snapshot persistence failure.
func LogCheckpointError(logger *slog.Logger, stage string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("checkpoint failed",
		slog.String("stage", stage),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogProviderDegraded logs a search provider falling back to canned results.
func LogProviderDegraded(logger *slog.Logger, provider, kind string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("provider degraded to fallback",
		slog.String("provider", provider),
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)
}

// LogAwaitingInput logs a conversation suspending for user input.
func LogAwaitingInput(logger *slog.Logger, conversationID, stage string) {
	if logger == nil {
		return
	}
	logger.Debug("awaiting user input",
		slog.String("conversation_id", conversationID),
		slog.String("stage", stage),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
