package flowcanvas

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/llm"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/observability"
)

// DefaultModel is used when a runnable node has no model configured.
const DefaultModel = "claude-sonnet-4-5"

// RunResult is the outcome of a successful node run.
type RunResult struct {
	// Output is the model's text output.
	Output string
	// Model is the model that produced the output.
	Model string
	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Runner drives the "run node" operation: it resolves inputs from
// the graph, invokes the LLM collaborator, and maps the outcome to a
// result or error. Resolution and validation are pure over the given
// (nodes, edges) snapshot; only the LLM call suspends.
//
// Runner enforces at most one in-flight run per node: a second run
// started before the first resolves fails with ErrRunInFlight rather
// than racing the result write-back.
type Runner struct {
	client       llm.Client
	defaultModel string
	logger       *slog.Logger
	metrics      observability.MetricsRecorder
	spans        observability.SpanManager
	tracing      bool

	mu       sync.Mutex
	inflight map[string]bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for run lifecycle events.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithTracing enables run spans using the given span manager.
func WithTracing(s observability.SpanManager) RunnerOption {
	return func(r *Runner) {
		r.spans = s
		r.tracing = true
	}
}

// WithDefaultModel overrides the model used when a node has none set.
func WithDefaultModel(model string) RunnerOption {
	return func(r *Runner) { r.defaultModel = model }
}

// NewRunner creates a Runner backed by the given LLM client.
func NewRunner(client llm.Client, opts ...RunnerOption) *Runner {
	r := &Runner{
		client:       client,
		defaultModel: DefaultModel,
		metrics:      observability.NoopMetrics{},
		spans:        observability.NoopSpanManager{},
		inflight:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunNode executes the LLM-class node with the given ID against a
// graph snapshot. Every path terminates in either a result or an
// error; nothing propagates as a panic.
//
// Failure modes:
//   - ErrNodeNotFound: no node with that ID
//   - ErrNotRunnable: the node is not an LLM or ImageDescribe node
//   - ErrRunInFlight: a run for this node has not yet resolved
//   - *ResolveError: input resolution found validation failures
//   - *RunError: the LLM collaborator failed
func (r *Runner) RunNode(ctx context.Context, nodeID string, nodes []Node, edges []Edge) (result *RunResult, runErr error) {
	node, ok := findNode(nodes, nodeID)
	if !ok {
		return nil, fmt.Errorf("run: %w: %s", ErrNodeNotFound, nodeID)
	}

	model, runnable := runModel(node)
	if !runnable {
		return nil, fmt.Errorf("run node %s (%s): %w", nodeID, node.Type, ErrNotRunnable)
	}
	if model == "" {
		model = r.defaultModel
	}

	if !r.acquire(nodeID) {
		return nil, fmt.Errorf("run node %s: %w", nodeID, ErrRunInFlight)
	}
	defer r.release(nodeID)

	observability.LogRunStart(r.logger, nodeID, model)
	done := observability.TimedOperation()
	start := time.Now()

	if r.tracing {
		var span trace.Span
		ctx, span = r.spans.StartRunSpan(ctx, nodeID, model)
		defer func() { r.spans.EndSpanWithError(span, runErr) }()
	}
	defer func() {
		r.metrics.RecordNodeRun(ctx, nodeID, model, time.Since(start), runErr)
	}()

	inputs := ResolveInputs(nodeID, nodes, edges)
	if len(inputs.Errors) > 0 {
		observability.LogResolveRejected(r.logger, nodeID, inputs.Errors)
		runErr = &ResolveError{NodeID: nodeID, Messages: inputs.Errors}
		return nil, runErr
	}

	resp, err := r.client.Complete(ctx, llm.Request{
		Model:        model,
		SystemPrompt: inputs.SystemPrompt,
		UserMessage:  inputs.UserMessage,
		Images:       inputs.Images,
	})
	if err != nil {
		runErr = &RunError{NodeID: nodeID, Err: err}
		observability.LogRunError(r.logger, nodeID, runErr, done())
		return nil, runErr
	}

	observability.LogRunComplete(r.logger, nodeID, done())
	return &RunResult{
		Output:   resp.Output,
		Model:    resp.Model,
		Duration: resp.Duration,
	}, nil
}

// acquire marks a node as having an in-flight run.
// Returns false if one is already in flight.
func (r *Runner) acquire(nodeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight[nodeID] {
		return false
	}
	r.inflight[nodeID] = true
	return true
}

// release clears the in-flight mark for a node.
func (r *Runner) release(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, nodeID)
}

// runModel returns the configured model of a runnable node.
// The second return is false for non-runnable kinds.
func runModel(n Node) (string, bool) {
	switch d := n.Data.(type) {
	case LLMData:
		return d.Model, true
	case DescribeData:
		return d.Model, true
	default:
		return "", false
	}
}
