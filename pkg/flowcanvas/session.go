package flowcanvas

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/llm"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/observability"
)

// Session owns one workflow's graph, history, and runner, and
// sequences them correctly: a history snapshot is taken just before
// every accepted mutation (pre-image), undo pushes the current state
// to the redo queue before applying the popped entry, and run
// results are written back into node state with loading-flag
// transitions.
//
// Session is single-writer by design: all edits arrive from one
// logical event loop. Only RunNode suspends.
type Session struct {
	graph   *Graph
	history *History
	runner  *Runner
	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithSessionMetrics sets the session metrics recorder.
func WithSessionMetrics(m observability.MetricsRecorder) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// WithHistoryLimit caps the undo stack.
func WithHistoryLimit(limit int) SessionOption {
	return func(s *Session) { s.history = NewHistoryWithLimit(limit) }
}

// WithValidator sets the connection validator for the session graph.
func WithValidator(v Validator) SessionOption {
	return func(s *Session) { s.graph.validator = v }
}

// NewSession creates an editing session over an empty graph.
// runner may be nil for sessions that never execute nodes.
func NewSession(runner *Runner, opts ...SessionOption) *Session {
	s := &Session{
		graph:   NewGraph(),
		history: NewHistory(),
		runner:  runner,
		metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Graph returns the session's graph for read access.
func (s *Session) Graph() *Graph { return s.graph }

// History returns the session's history manager.
func (s *Session) History() *History { return s.history }

// AddNode snapshots and adds a node.
func (s *Session) AddNode(n Node) error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if _, exists := s.graph.Node(n.ID); exists {
		return ErrDuplicateNodeID
	}
	s.snapshot()
	return s.graph.AddNode(n)
}

// RemoveNode snapshots and removes a node along with its edges.
// Removing an unknown ID is a no-op and does not touch history.
func (s *Session) RemoveNode(id string) {
	if _, exists := s.graph.Node(id); !exists {
		return
	}
	s.snapshot()
	s.graph.RemoveNode(id)
}

// AddEdge validates the candidate, then snapshots and adds it.
// A rejected edge leaves both graph and history untouched.
func (s *Session) AddEdge(e Edge) error {
	if err := s.graph.CanAddEdge(e); err != nil {
		if errors.Is(err, ErrInvalidConnection) {
			observability.LogConnectionRejected(s.logger, e.Source, e.Target, string(e.TargetHandle))
			s.metrics.RecordConnectionRejected(context.Background(), "invalid")
		}
		return err
	}
	s.snapshot()
	return s.graph.AddEdge(e)
}

// RemoveEdge snapshots and removes an edge.
// Removing an unknown ID is a no-op and does not touch history.
func (s *Session) RemoveEdge(id string) {
	if findEdge(s.graph.edges, id) < 0 {
		return
	}
	s.snapshot()
	s.graph.RemoveEdge(id)
}

// PatchNode snapshots and applies a typed partial update.
func (s *Session) PatchNode(id string, patch NodePatch) error {
	n, exists := s.graph.Node(id)
	if !exists {
		return ErrNodeNotFound
	}
	if n.Type != patch.PatchKind() {
		return ErrPatchKindMismatch
	}
	s.snapshot()
	return s.graph.PatchNode(id, patch)
}

// Undo restores the most recent snapshot, pushing the current state
// onto the redo queue first. Returns false if there is nothing to
// undo.
func (s *Session) Undo() bool {
	entry := s.history.Undo()
	if entry == nil {
		return false
	}
	s.history.PushToFuture(s.graph.nodes, s.graph.edges)
	s.graph.Replace(entry.Nodes, entry.Edges)
	return true
}

// Redo re-applies the next snapshot forward in time, pushing the
// current state onto the undo stack without clearing the remaining
// redo queue. Returns false if there is nothing to redo.
func (s *Session) Redo() bool {
	entry := s.history.Redo()
	if entry == nil {
		return false
	}
	s.history.SaveState(s.graph.nodes, s.graph.edges, false)
	s.graph.Replace(entry.Nodes, entry.Edges)
	return true
}

// Load replaces the session's workflow with the given snapshot and
// clears history: undo state from a previous document is meaningless.
func (s *Session) Load(nodes []Node, edges []Edge, viewport json.RawMessage) {
	s.graph.Replace(nodes, edges)
	s.graph.SetViewport(viewport)
	s.history.Clear()
}

// RunNode executes an LLM-class node and writes the outcome back
// into the node's data. The node's IsLoading flag is true for the
// duration of the call; on completion exactly one of Output/Error
// reflects the attempt (success clears the error, failure records
// it; prior output is left in place on failure).
//
// Run write-backs are not undoable: they do not snapshot history.
func (s *Session) RunNode(ctx context.Context, nodeID string) error {
	if s.runner == nil {
		return ErrNotRunnable
	}

	node, ok := s.graph.Node(nodeID)
	if !ok {
		return ErrNodeNotFound
	}

	s.setLoading(node, true)
	result, err := s.runner.RunNode(ctx, nodeID, s.graph.nodes, s.graph.edges)
	if err != nil {
		s.writeFailure(node, userMessage(err))
		return err
	}

	s.writeSuccess(node, result.Output)
	return nil
}

// snapshot saves the pre-mutation state and branches off any redo
// history.
func (s *Session) snapshot() {
	s.history.SaveState(s.graph.nodes, s.graph.edges, true)
	s.metrics.RecordSnapshot(context.Background(), s.history.PastLen())
	observability.LogSnapshot(s.logger, s.history.PastLen())
}

// setLoading flips the node's loading flag.
func (s *Session) setLoading(n Node, loading bool) {
	switch n.Type {
	case KindLLM:
		_ = s.graph.PatchNode(n.ID, LLMPatch{IsLoading: ptr(loading)})
	case KindImageDescribe:
		_ = s.graph.PatchNode(n.ID, DescribePatch{IsLoading: ptr(loading)})
	}
}

// writeSuccess records a completed run: output set, error cleared,
// loading cleared.
func (s *Session) writeSuccess(n Node, output string) {
	switch n.Type {
	case KindLLM:
		_ = s.graph.PatchNode(n.ID, LLMPatch{
			Output:    ptr(output),
			Error:     ptr(""),
			IsLoading: ptr(false),
		})
	case KindImageDescribe:
		_ = s.graph.PatchNode(n.ID, DescribePatch{
			Output:    ptr(output),
			Error:     ptr(""),
			IsLoading: ptr(false),
		})
	}
}

// writeFailure records a failed run: error set, loading cleared,
// prior output preserved.
func (s *Session) writeFailure(n Node, message string) {
	switch n.Type {
	case KindLLM:
		_ = s.graph.PatchNode(n.ID, LLMPatch{
			Error:     ptr(message),
			IsLoading: ptr(false),
		})
	case KindImageDescribe:
		_ = s.graph.PatchNode(n.ID, DescribePatch{
			Error:     ptr(message),
			IsLoading: ptr(false),
		})
	}
}

// userMessage extracts the single user-facing message for a failed
// run: the first validation error, a collaborator error message, or
// the error text itself.
func userMessage(err error) string {
	var resolveErr *ResolveError
	if errors.As(err, &resolveErr) && len(resolveErr.Messages) > 0 {
		return resolveErr.Messages[0]
	}
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return llmErr.Message
	}
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Err.Error()
	}
	return err.Error()
}
