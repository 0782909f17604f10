/*
Package flowcanvas implements the graph model behind a canvas-based
workflow editor for LLM prompts.

# Overview

A workflow is a directed acyclic graph of typed nodes: text prompts,
image uploads, system prompts, LLM calls, and image-description
calls. Edges terminate at typed input handles (text, image, system)
on the target node. The package provides:

  - the node/edge data model with a closed, tagged set of node kinds
  - connection validation (handle-type compatibility + cycle detection)
  - input resolution, which walks a node's incoming edges and
    aggregates upstream data into the prompt bundle for an LLM call
  - the execution orchestrator that invokes the LLM collaborator
  - a bounded undo/redo history of deep graph snapshots

# Basic Usage

Build a graph through a Session, which snapshots history before each
mutation:

	session := flowcanvas.NewSession(runner)
	_ = session.AddNode(flowcanvas.Node{
	    ID:   "prompt",
	    Type: flowcanvas.KindTextInput,
	    Data: flowcanvas.TextData{Label: "Prompt", Content: "Hello"},
	})
	_ = session.AddNode(flowcanvas.Node{
	    ID:   "call",
	    Type: flowcanvas.KindLLM,
	    Data: flowcanvas.LLMData{Label: "LLM"},
	})
	_ = session.AddEdge(flowcanvas.Edge{
	    ID:           "e1",
	    Source:       "prompt",
	    Target:       "call",
	    TargetHandle: flowcanvas.HandleText,
	})

	err := session.RunNode(ctx, "call")

# Connection Validation

AddEdge rejects self-loops, edges whose source output type does not
match the target handle, and edges that would close a directed
cycle. Rejection is a boolean decision, not an exception: the graph
is left untouched. Unknown node kinds pass the type check by default
so forward-compatible extensions are not blocked; use
Validator{UnknownKinds: RejectUnknown} to tighten this.

# Input Resolution

ResolveInputs classifies each incoming edge by its target handle and
joins multiple contributions with a blank line in edge order. Any
validation failure (no inputs, missing model instruction, missing
image) gates execution; the first message is the user-facing error.

# History

History keeps up to 50 pre-mutation snapshots. Undo pops the most
recent; redo replays undone states forward in time. A fresh mutation
after an undo discards the redo queue. Every entry is a structural
deep copy, so later edits never alter a snapshot.

# Thread Safety

  - Graph, History, and Session are single-writer: one editing
    session, one logical event loop
  - Runner is safe for concurrent use and enforces at most one
    in-flight run per node

# Subpackages

  - llm: LLM collaborator interface, HTTP client, error taxonomy
  - store: workflow persistence (memory, SQLite)
  - config: configuration loading (YAML/JSON)
  - observability: logging, metrics, and tracing helpers
*/
package flowcanvas
