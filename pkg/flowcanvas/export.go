package flowcanvas

import (
	"encoding/json"
	"fmt"
	"time"
)

// ExportVersion is the version tag written into export files.
const ExportVersion = "1.0"

// ExportFile is the round-trip file format for sharing workflows.
type ExportFile struct {
	Version    string          `json:"version"`
	Name       string          `json:"name"`
	ExportedAt string          `json:"exportedAt"`
	Data       json.RawMessage `json:"data"`
}

// Export serializes the graph into an export file.
func Export(name string, g *Graph) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("export workflow: %w", err)
	}
	return json.MarshalIndent(ExportFile{
		Version:    ExportVersion,
		Name:       name,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Data:       data,
	}, "", "  ")
}

// importEnvelope checks only the top-level shape of the data field.
type importEnvelope struct {
	Nodes    json.RawMessage `json:"nodes"`
	Edges    json.RawMessage `json:"edges"`
	Viewport json.RawMessage `json:"viewport"`
}

// Import parses an export file and returns the workflow name and
// graph. Validation is deliberately shallow: it requires data.nodes
// and data.edges to be present and array-typed, nothing deeper.
// Corrupted node or edge shapes surface later as resolver or
// validator failures at run time.
func Import(b []byte) (string, *Graph, error) {
	var file ExportFile
	if err := json.Unmarshal(b, &file); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadImport, err)
	}

	var env importEnvelope
	if err := json.Unmarshal(file.Data, &env); err != nil {
		return "", nil, fmt.Errorf("%w: data is not an object", ErrBadImport)
	}
	if !isJSONArray(env.Nodes) {
		return "", nil, fmt.Errorf("%w: data.nodes missing or not an array", ErrBadImport)
	}
	if !isJSONArray(env.Edges) {
		return "", nil, fmt.Errorf("%w: data.edges missing or not an array", ErrBadImport)
	}

	g := NewGraph()
	if err := json.Unmarshal(file.Data, g); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadImport, err)
	}
	return file.Name, g, nil
}

// isJSONArray reports whether raw holds a JSON array.
func isJSONArray(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return c == '['
		}
	}
	return false
}
