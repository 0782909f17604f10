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

// MetricsRecorder records flowcanvas metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordNodeRun records a node run with its duration and error status.
	RecordNodeRun(ctx context.Context, nodeID, model string, duration time.Duration, err error)

	// RecordConnectionRejected records a rejected edge candidate.
	RecordConnectionRejected(ctx context.Context, reason string)

	// RecordSnapshot records a history snapshot and the resulting depth.
	RecordSnapshot(ctx context.Context, pastDepth int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	nodeRuns       metric.Int64Counter
	runLatency     metric.Float64Histogram
	runErrors      metric.Int64Counter
	rejectedConns  metric.Int64Counter
	snapshots      metric.Int64Counter
	historyDepth   metric.Int64Histogram
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
	meter := otel.Meter("flowcanvas")

	nodeRuns, err := meter.Int64Counter("flowcanvas.node.runs",
		metric.WithDescription("Number of node runs"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("flowcanvas.node.run_latency_ms",
		metric.WithDescription("Node run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	runErrors, err := meter.Int64Counter("flowcanvas.node.run_errors",
		metric.WithDescription("Number of failed node runs"),
	)
	if err != nil {
		return nil, err
	}

	rejectedConns, err := meter.Int64Counter("flowcanvas.connection.rejections",
		metric.WithDescription("Number of rejected edge candidates"),
	)
	if err != nil {
		return nil, err
	}

	snapshots, err := meter.Int64Counter("flowcanvas.history.snapshots",
		metric.WithDescription("Number of history snapshots saved"),
	)
	if err != nil {
		return nil, err
	}

	historyDepth, err := meter.Int64Histogram("flowcanvas.history.depth",
		metric.WithDescription("Undo stack depth after each snapshot"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		nodeRuns:      nodeRuns,
		runLatency:    runLatency,
		runErrors:     runErrors,
		rejectedConns: rejectedConns,
		snapshots:     snapshots,
		historyDepth:  historyDepth,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
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

// RecordNodeRun records a node run.
func (m *otelMetrics) RecordNodeRun(ctx context.Context, nodeID, model string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("node_id", nodeID),
		attribute.String("model", model),
	}

	m.nodeRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.runErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordConnectionRejected records a rejected edge candidate.
func (m *otelMetrics) RecordConnectionRejected(ctx context.Context, reason string) {
	m.rejectedConns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordSnapshot records a history snapshot.
func (m *otelMetrics) RecordSnapshot(ctx context.Context, pastDepth int) {
	m.snapshots.Add(ctx, 1)
	m.historyDepth.Record(ctx, int64(pastDepth))
}
