package flowcanvas

import (
	"encoding/json"
	"fmt"
)

// Graph holds the authoritative node and edge collections for one
// workflow. Nodes and edges keep insertion order, which downstream
// components rely on (the resolver joins multi-source inputs in edge
// order).
//
// Graph is NOT safe for concurrent use. It is owned by a single
// editing session; see Session for the orchestrating layer.
type Graph struct {
	nodes    []Node
	edges    []Edge
	viewport json.RawMessage

	validator Validator
}

// NewGraph creates an empty graph using the default connection validator.
func NewGraph() *Graph {
	return &Graph{}
}

// NewGraphWithValidator creates an empty graph with a custom validator.
func NewGraphWithValidator(v Validator) *Graph {
	return &Graph{validator: v}
}

// Nodes returns the nodes in insertion order.
// The returned slice must not be modified.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the edges in insertion order.
// The returned slice must not be modified.
func (g *Graph) Edges() []Edge { return g.edges }

// Viewport returns the opaque viewport blob, if any.
func (g *Graph) Viewport() json.RawMessage { return g.viewport }

// SetViewport stores the opaque viewport blob.
func (g *Graph) SetViewport(v json.RawMessage) { g.viewport = v }

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	return findNode(g.nodes, id)
}

// AddNode appends a node to the workflow.
// The node's ID must be non-empty and unique; its Type is fixed from
// this point on.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return fmt.Errorf("add node: %w", ErrEmptyID)
	}
	if _, exists := findNode(g.nodes, n.ID); exists {
		return fmt.Errorf("add node: %w: %s", ErrDuplicateNodeID, n.ID)
	}

	g.nodes = append(g.nodes, n.Clone())
	return nil
}

// RemoveNode removes the node and every edge where it is source or
// target, so no dangling edges remain. Removing an unknown ID is a
// no-op.
func (g *Graph) RemoveNode(id string) {
	kept := g.nodes[:0]
	for _, n := range g.nodes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	g.nodes = kept

	keptEdges := g.edges[:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			keptEdges = append(keptEdges, e)
		}
	}
	g.edges = keptEdges
}

// CanAddEdge reports whether AddEdge would accept the candidate,
// without mutating the graph. Useful for connection-preview feedback.
func (g *Graph) CanAddEdge(e Edge) error {
	if e.ID == "" {
		return fmt.Errorf("add edge: %w", ErrEmptyID)
	}
	if findEdge(g.edges, e.ID) >= 0 {
		return fmt.Errorf("add edge: %w: %s", ErrDuplicateEdgeID, e.ID)
	}
	if !g.validator.IsValidConnection(e.Source, e.Target, e.TargetHandle, g.nodes, g.edges) {
		return fmt.Errorf("add edge %s -> %s: %w", e.Source, e.Target, ErrInvalidConnection)
	}
	return nil
}

// AddEdge appends an edge after passing it through the connection
// validator. Returns ErrInvalidConnection when the edge is a
// self-loop, fails the type-compatibility check, or would create a
// cycle. No partial state is created on rejection.
func (g *Graph) AddEdge(e Edge) error {
	if err := g.CanAddEdge(e); err != nil {
		return err
	}
	g.edges = append(g.edges, e)
	return nil
}

// RemoveEdge removes the edge with the given ID.
// Removing an unknown ID is a no-op.
func (g *Graph) RemoveEdge(id string) {
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
}

// PatchNode applies a typed partial update to a node's data. The
// patch must match the node's kind; a mismatch returns
// ErrPatchKindMismatch and leaves the node untouched.
func (g *Graph) PatchNode(id string, patch NodePatch) error {
	for i, n := range g.nodes {
		if n.ID != id {
			continue
		}
		if n.Type != patch.PatchKind() {
			return fmt.Errorf("patch node %s (%s): %w", id, n.Type, ErrPatchKindMismatch)
		}
		g.nodes[i].Data = patch.apply(n.Data)
		return nil
	}
	return fmt.Errorf("patch node: %w: %s", ErrNodeNotFound, id)
}

// Replace swaps the graph's contents with deep copies of the given
// nodes and edges. Used when restoring a history entry or loading a
// workflow.
func (g *Graph) Replace(nodes []Node, edges []Edge) {
	g.nodes = cloneNodes(nodes)
	g.edges = cloneEdges(edges)
}

// Clone returns a structurally independent copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:     cloneNodes(g.nodes),
		edges:     cloneEdges(g.edges),
		validator: g.validator,
	}
	if g.viewport != nil {
		c.viewport = make(json.RawMessage, len(g.viewport))
		copy(c.viewport, g.viewport)
	}
	return c
}

// workflowEnvelope is the wire shape of a whole workflow snapshot.
type workflowEnvelope struct {
	Nodes    []Node          `json:"nodes"`
	Edges    []Edge          `json:"edges"`
	Viewport json.RawMessage `json:"viewport,omitempty"`
}

// MarshalJSON implements json.Marshaler. The whole snapshot is
// serialized; there is no delta persistence.
func (g *Graph) MarshalJSON() ([]byte, error) {
	env := workflowEnvelope{
		Nodes:    g.nodes,
		Edges:    g.edges,
		Viewport: g.viewport,
	}
	if env.Nodes == nil {
		env.Nodes = []Node{}
	}
	if env.Edges == nil {
		env.Edges = []Edge{}
	}
	return json.Marshal(env)
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Graph) UnmarshalJSON(b []byte) error {
	var env workflowEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	g.nodes = env.Nodes
	g.edges = env.Edges
	g.viewport = env.Viewport
	return nil
}

// findNode returns the node with the given ID from a slice.
func findNode(nodes []Node, id string) (Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// findEdge returns the index of the edge with the given ID, or -1.
func findEdge(edges []Edge, id string) int {
	for i, e := range edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// cloneNodes deep-copies a node slice.
func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// cloneEdges copies an edge slice. Edges hold only value fields.
func cloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}
