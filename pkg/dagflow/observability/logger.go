// Package observability provides structured logging, metrics, and
// distributed tracing helpers for dagflow graph lifecycles.
//
// Logging uses slog from the Go stdlib; metrics and tracing use
// OpenTelemetry. Everything is opt-in and has no-op implementations
// when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds graph and run context to a logger.
// Returns a new logger with graph_id, run_id, and node_id fields.
func EnrichLogger(logger *slog.Logger, graphID, runID, nodeID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("graph_id", graphID),
		slog.String("run_id", runID),
		slog.String("node_id", nodeID),
	)
}

// LogFinishStart logs the start of a graph finish barrier.
func LogFinishStart(logger *slog.Logger, graphID string, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Debug("graph finish starting",
		slog.String("graph_id", graphID),
		slog.Int("nodes", nodeCount),
	)
}

// LogFinishComplete logs a graph finish barrier where every hook
// completed.
func LogFinishComplete(logger *slog.Logger, graphID string, duration time.Duration, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Info("graph finished",
		slog.String("graph_id", graphID),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
		slog.Int("nodes", nodeCount),
	)
}

// LogHookError logs a lifecycle hook failure.
func LogHookError(logger *slog.Logger, graphID, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("lifecycle hook failed",
		slog.String("graph_id", graphID),
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogRunStart logs the creation of a run context.
func LogRunStart(logger *slog.Logger, graphID, runID string, streaming bool) {
	if logger == nil {
		return
	}
	logger.Info("graph run starting",
		slog.String("graph_id", graphID),
		slog.String("run_id", runID),
		slog.Bool("streaming", streaming),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
