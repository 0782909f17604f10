package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogger returns a JSON logger writing into buf.
func captureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// lastRecord decodes the last log line in buf.
func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &record))
	return record
}

// TestEnrichLogger tests field propagation.
func TestEnrichLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := EnrichLogger(captureLogger(&buf), "wf-1", "node-1")
	logger.Info("hello")

	record := lastRecord(t, &buf)
	assert.Equal(t, "wf-1", record["workflow_id"])
	assert.Equal(t, "node-1", record["node_id"])
}

// TestLogRunLifecycle tests the start/complete/error events.
func TestLogRunLifecycle(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogger(&buf)

	LogRunStart(logger, "llm-1", "claude-sonnet-4-5")
	record := lastRecord(t, &buf)
	assert.Equal(t, "node run starting", record["msg"])
	assert.Equal(t, "claude-sonnet-4-5", record["model"])

	LogRunComplete(logger, "llm-1", 12.5)
	record = lastRecord(t, &buf)
	assert.Equal(t, "node run completed", record["msg"])
	assert.Equal(t, 12.5, record["duration_ms"])

	LogRunError(logger, "llm-1", errors.New("boom"), 3)
	record = lastRecord(t, &buf)
	assert.Equal(t, "node run failed", record["msg"])
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "boom", record["error"])
}

// TestLogResolveRejected tests the gating event.
func TestLogResolveRejected(t *testing.T) {
	var buf bytes.Buffer
	LogResolveRejected(captureLogger(&buf), "llm-1", []string{"a", "b"})

	record := lastRecord(t, &buf)
	assert.Equal(t, "input resolution rejected run", record["msg"])
	assert.Equal(t, float64(2), record["error_count"])
}

// TestLogConnectionRejected tests the edge-rejection event.
func TestLogConnectionRejected(t *testing.T) {
	var buf bytes.Buffer
	LogConnectionRejected(captureLogger(&buf), "a", "b", "text")

	record := lastRecord(t, &buf)
	assert.Equal(t, "connection rejected", record["msg"])
	assert.Equal(t, "text", record["target_handle"])
}

// TestNilLoggerSafe tests that every helper tolerates a nil logger.
func TestNilLoggerSafe(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "wf", "n"))
	LogRunStart(nil, "n", "m")
	LogRunComplete(nil, "n", 1)
	LogRunError(nil, "n", errors.New("x"), 1)
	LogResolveRejected(nil, "n", nil)
	LogConnectionRejected(nil, "a", "b", "h")
	LogSnapshot(nil, 0)
}

// TestTimedOperation tests elapsed-time measurement.
func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, done(), float64(4))
}

// TestNoopImplementations tests that the no-op metrics and span
// manager are safe to call and leave the context alone.
func TestNoopImplementations(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	m.RecordNodeRun(context.Background(), "n", "model", time.Second, nil)
	m.RecordConnectionRejected(context.Background(), "invalid")
	m.RecordSnapshot(context.Background(), 3)

	var s SpanManager = NoopSpanManager{}
	ctx := context.Background()
	outCtx, span := s.StartRunSpan(ctx, "n", "model")
	assert.Equal(t, ctx, outCtx)
	s.EndSpanWithError(span, errors.New("x"))
	s.AddSpanEvent(outCtx, "event")
}
