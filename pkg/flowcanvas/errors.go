package flowcanvas

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph mutation.
var (
	// ErrNodeNotFound indicates an operation referenced a node ID
	// that is not in the workflow.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNodeID indicates AddNode was called with an ID
	// already present in the workflow.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdgeID indicates AddEdge was called with an ID
	// already present in the workflow.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrEmptyID indicates a node or edge was given an empty ID.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidConnection indicates a candidate edge failed
	// validation (self-loop, type mismatch, or cycle).
	ErrInvalidConnection = errors.New("invalid connection")

	// ErrPatchKindMismatch indicates a node patch targeted a node of
	// a different kind.
	ErrPatchKindMismatch = errors.New("patch does not match node kind")
)

// Sentinel errors for execution.
var (
	// ErrNotRunnable indicates the target node is not an LLM-class node.
	ErrNotRunnable = errors.New("node is not runnable")

	// ErrRunInFlight indicates a run is already in progress for the node.
	ErrRunInFlight = errors.New("run already in flight for node")
)

// Sentinel errors for export/import.
var (
	// ErrBadImport indicates an import payload is missing the
	// required top-level shape.
	ErrBadImport = errors.New("invalid import file")
)

// ResolveError reports that input resolution failed for a node.
// Messages holds every validation failure found; Error() surfaces
// only the first, which is what callers show to the user.
type ResolveError struct {
	// NodeID is the node whose inputs could not be resolved.
	NodeID string
	// Messages are the validation failures in discovery order.
	Messages []string
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("resolve inputs for node %s failed", e.NodeID)
	}
	return e.Messages[0]
}

// RunError wraps a failure from the LLM collaborator with node context.
type RunError struct {
	// NodeID is the node that was being run.
	NodeID string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	return fmt.Sprintf("run node %s: %v", e.NodeID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RunError) Unwrap() error {
	return e.Err
}
