package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a test meter provider and returns its
// manual reader for collection.
func setupMetricsTest(t *testing.T) *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		otel.SetMeterProvider(original)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("shutting down meter provider: %v", err)
		}
	})

	return reader
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// nodeDataPoint finds the int64 sum datapoint carrying the given
// node_id attribute.
func nodeDataPoint(metric *metricdata.Metrics, nodeID string) (int64, bool) {
	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		return 0, false
	}
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if attr.Key == "node_id" && attr.Value.AsString() == nodeID {
				return dp.Value, true
			}
		}
	}
	return 0, false
}

func TestNewMetricsRecorder(t *testing.T) {
	setupMetricsTest(t)

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "expected real metrics recorder, got noop")
}

func TestRecordNodeRun(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records run count", func(t *testing.T) {
		m.RecordNodeRun(ctx, "llm-1", "claude-sonnet-4-5", 50*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "flowcanvas.node.runs")
		require.NotNil(t, metric)

		value, found := nodeDataPoint(metric, "llm-1")
		require.True(t, found, "expected datapoint for node_id=llm-1")
		assert.GreaterOrEqual(t, value, int64(1))
	})

	t.Run("records latency", func(t *testing.T) {
		m.RecordNodeRun(ctx, "llm-2", "claude-sonnet-4-5", 100*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "flowcanvas.node.run_latency_ms")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("records errors when present", func(t *testing.T) {
		m.RecordNodeRun(ctx, "failing", "claude-sonnet-4-5", 10*time.Millisecond, errors.New("run failed"))

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "flowcanvas.node.run_errors")
		require.NotNil(t, metric)

		value, found := nodeDataPoint(metric, "failing")
		require.True(t, found, "expected error datapoint")
		assert.GreaterOrEqual(t, value, int64(1))
	})

	t.Run("does not record error when nil", func(t *testing.T) {
		m.RecordNodeRun(ctx, "success_only", "claude-sonnet-4-5", 10*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "flowcanvas.node.run_errors")
		if metric == nil {
			return
		}
		if value, found := nodeDataPoint(metric, "success_only"); found {
			assert.Equal(t, int64(0), value, "expected no errors for success_only node")
		}
	})
}

func TestRecordConnectionRejected(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordConnectionRejected(context.Background(), "invalid")

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "flowcanvas.connection.rejections")
	require.NotNil(t, metric)

	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)

	found := false
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if attr.Key == "reason" && attr.Value.AsString() == "invalid" {
				found = true
			}
		}
	}
	assert.True(t, found, "expected reason=invalid attribute")
}

func TestRecordSnapshot(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordSnapshot(context.Background(), 7)

	rm := collectMetrics(t, reader)

	require.NotNil(t, findMetric(rm, "flowcanvas.history.snapshots"))

	depth := findMetric(rm, "flowcanvas.history.depth")
	require.NotNil(t, depth)
	hist, ok := depth.Data.(metricdata.Histogram[int64])
	require.True(t, ok, "expected Histogram[int64] type")
	require.NotEmpty(t, hist.DataPoints)
}

func TestNewOtelMetrics_Creation(t *testing.T) {
	setupMetricsTest(t)

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.NotNil(t, m.nodeRuns)
	assert.NotNil(t, m.runLatency)
	assert.NotNil(t, m.runErrors)
	assert.NotNil(t, m.rejectedConns)
	assert.NotNil(t, m.snapshots)
	assert.NotNil(t, m.historyDepth)
}
