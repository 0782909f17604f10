// Package observability provides structured logging, metrics, and
// tracing for flowcanvas: slog for logs, OpenTelemetry for metrics
// and spans. All features are opt-in with no-op implementations.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds run context to a logger.
// Returns a new logger with workflow_id and node_id fields.
func EnrichLogger(logger *slog.Logger, workflowID, nodeID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("workflow_id", workflowID),
		slog.String("node_id", nodeID),
	)
}

// LogRunStart logs the start of a node run.
func LogRunStart(logger *slog.Logger, nodeID, model string) {
	if logger == nil {
		return
	}
	logger.Info("node run starting",
		slog.String("node_id", nodeID),
		slog.String("model", model),
	)
}

// LogRunComplete logs successful node run completion.
func LogRunComplete(logger *slog.Logger, nodeID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("node run completed",
		slog.String("node_id", nodeID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRunError logs node run failure.
func LogRunError(logger *slog.Logger, nodeID string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("node run failed",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogResolveRejected logs that input resolution gated a run.
func LogResolveRejected(logger *slog.Logger, nodeID string, messages []string) {
	if logger == nil {
		return
	}
	logger.Warn("input resolution rejected run",
		slog.String("node_id", nodeID),
		slog.Int("error_count", len(messages)),
	)
}

// LogConnectionRejected logs a rejected edge candidate.
func LogConnectionRejected(logger *slog.Logger, source, target, handle string) {
	if logger == nil {
		return
	}
	logger.Debug("connection rejected",
		slog.String("source", source),
		slog.String("target", target),
		slog.String("target_handle", handle),
	)
}

// LogSnapshot logs a history snapshot.
func LogSnapshot(logger *slog.Logger, pastDepth int) {
	if logger == nil {
		return
	}
	logger.Debug("history snapshot saved",
		slog.Int("past_depth", pastDepth),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
