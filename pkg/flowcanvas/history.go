package flowcanvas

// DefaultHistoryLimit caps the undo stack; the oldest snapshot is
// evicted when the cap is exceeded.
const DefaultHistoryLimit = 50

// HistoryEntry is an immutable deep copy of graph state at one point
// in time. Entries never share structure with the live graph:
// mutating the graph after a snapshot cannot alter the entry.
type HistoryEntry struct {
	Nodes []Node
	Edges []Edge
}

// History maintains the undo/redo stacks for one editing session.
//
// past is a bounded LIFO stack of pre-mutation snapshots; future is a
// FIFO queue replayed forward in time by Redo. The asymmetry is
// intentional: undo walks backward through the most recent snapshots,
// redo replays them in the order they were undone.
//
// History does not couple undo to the future queue itself. The caller
// must push the current (pre-undo) state via PushToFuture before
// applying the popped entry; Session sequences this correctly.
type History struct {
	past   []HistoryEntry
	future []HistoryEntry
	limit  int
}

// NewHistory creates a history with the default snapshot cap.
func NewHistory() *History {
	return NewHistoryWithLimit(DefaultHistoryLimit)
}

// NewHistoryWithLimit creates a history capped at limit snapshots.
// A non-positive limit falls back to the default.
func NewHistoryWithLimit(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// SaveState deep-copies the given state onto the undo stack,
// evicting the oldest entry when the cap is exceeded. Call it with
// the pre-mutation state, before applying a change, so Undo restores
// the state immediately prior to the action.
//
// clearFuture discards the redo queue; pass true for fresh mutating
// actions (a new edit after an undo branches history, and the old
// future is no longer reachable).
func (h *History) SaveState(nodes []Node, edges []Edge, clearFuture bool) {
	h.past = append(h.past, snapshot(nodes, edges))
	if len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	if clearFuture {
		h.future = nil
	}
}

// Undo pops and returns the most recent snapshot, or nil if there is
// nothing to undo.
func (h *History) Undo() *HistoryEntry {
	if len(h.past) == 0 {
		return nil
	}
	entry := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	return &entry
}

// Redo pops and returns the front of the redo queue (the next
// snapshot forward in time), or nil if there is nothing to redo.
func (h *History) Redo() *HistoryEntry {
	if len(h.future) == 0 {
		return nil
	}
	entry := h.future[0]
	h.future = h.future[1:]
	return &entry
}

// PushToFuture deep-copies the given state onto the front of the
// redo queue. Called with the current state just before an undo is
// applied.
func (h *History) PushToFuture(nodes []Node, edges []Edge) {
	h.future = append([]HistoryEntry{snapshot(nodes, edges)}, h.future...)
}

// Clear empties both stacks. Used when loading a new workflow, since
// history from a previous document is meaningless.
func (h *History) Clear() {
	h.past = nil
	h.future = nil
}

// CanUndo reports whether an undo snapshot is available.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether a redo snapshot is available.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// PastLen returns the undo stack depth.
func (h *History) PastLen() int { return len(h.past) }

// FutureLen returns the redo queue depth.
func (h *History) FutureLen() int { return len(h.future) }

// snapshot builds an entry from structural deep copies of the input.
func snapshot(nodes []Node, edges []Edge) HistoryEntry {
	return HistoryEntry{
		Nodes: cloneNodes(nodes),
		Edges: cloneEdges(edges),
	}
}
