package flowcanvas

// UnknownKindPolicy controls how the validator treats connections
// involving node kinds it does not recognize.
type UnknownKindPolicy int

const (
	// AllowUnknown skips the type-compatibility check for
	// unrecognized kinds, so extensions are not blocked. This is the
	// default.
	AllowUnknown UnknownKindPolicy = iota

	// RejectUnknown refuses connections whose source kind is
	// unrecognized.
	RejectUnknown
)

// Validator decides whether a candidate edge may be added to a
// workflow. The zero value is ready to use and allows unknown kinds.
//
// Validation is a pure function over the given (nodes, edges)
// snapshot; repeated calls with identical inputs produce identical
// results.
type Validator struct {
	// UnknownKinds selects the policy for unrecognized node kinds.
	UnknownKinds UnknownKindPolicy
}

// IsValidConnection reports whether an edge source -> target feeding
// targetHandle may be added given the current graph.
//
// A connection is rejected when:
//   - source == target (self-loop), regardless of types
//   - the source node's output type does not match targetHandle
//   - adding the edge would create a directed cycle
//
// The type check is skipped when targetHandle is empty or
// HandleOutput: only target-side handles are classified, so a
// source-side candidate handle cannot be type-checked. Unknown node
// kinds pass the type check under AllowUnknown.
func (v Validator) IsValidConnection(source, target string, targetHandle HandleKind, nodes []Node, edges []Edge) bool {
	if source == target {
		return false
	}

	if targetHandle != "" && targetHandle != HandleOutput {
		srcNode, ok := findNode(nodes, source)
		if ok {
			out, known := OutputType(srcNode.Type)
			switch {
			case !known:
				if v.UnknownKinds == RejectUnknown {
					return false
				}
				// fail open: do not block unrecognized extensions
			case out != targetHandle:
				return false
			}
		}
	}

	// Adding source -> target closes a cycle iff source is already
	// reachable from target over the existing edges.
	return !reachable(target, source, edges)
}

// reachable reports whether to can be reached from from by following
// edges forward. Depth-first search over a source -> targets
// adjacency list; the visited set bounds work to O(V+E).
func reachable(from, to string, edges []Edge) bool {
	adjacency := make(map[string][]string, len(edges))
	for _, e := range edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
	}

	visited := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == to {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		stack = append(stack, adjacency[current]...)
	}
	return false
}
