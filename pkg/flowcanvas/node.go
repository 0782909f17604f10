package flowcanvas

import (
	"encoding/json"
	"fmt"
)

// NodeKind identifies the closed set of node variants.
type NodeKind string

// Node kinds understood by the editor core.
const (
	KindTextInput     NodeKind = "textInput"
	KindImageInput    NodeKind = "imageInput"
	KindSystemPrompt  NodeKind = "systemPrompt"
	KindLLM           NodeKind = "llm"
	KindImageDescribe NodeKind = "imageDescribe"
)

// HandleKind identifies a logical input slot on a node.
// Target handles carry a semantic type; HandleOutput is the
// source-side sentinel and never classifies an input.
type HandleKind string

// Handle kinds.
const (
	HandleText   HandleKind = "text"
	HandleImage  HandleKind = "image"
	HandleSystem HandleKind = "system"
	HandleOutput HandleKind = "output"
)

// OutputType returns the semantic type a node kind produces on its
// source handle. The second return is false for unrecognized kinds.
func OutputType(kind NodeKind) (HandleKind, bool) {
	switch kind {
	case KindTextInput, KindLLM, KindImageDescribe:
		return HandleText, true
	case KindImageInput:
		return HandleImage, true
	case KindSystemPrompt:
		return HandleSystem, true
	default:
		return "", false
	}
}

// Position is the node's canvas placement. The core treats it as opaque.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the per-kind payload of a node. It is a closed sum over
// the five node kinds (plus UnknownData for forward compatibility);
// consumers type-switch on the concrete variant.
type NodeData interface {
	// Kind returns the node kind this payload belongs to.
	Kind() NodeKind

	// clone returns a structurally independent copy.
	clone() NodeData
}

// TextData is the payload of a TextInput node.
type TextData struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// SystemPromptData is the payload of a SystemPrompt node.
type SystemPromptData struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// ImageData is the payload of an ImageInput node.
// ImageBytes holds the raw image as base64; empty means no upload yet.
type ImageData struct {
	Label      string `json:"label"`
	ImageBytes string `json:"imageBytes,omitempty"`
	FileName   string `json:"fileName,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
}

// LLMData is the payload of an LLM node.
type LLMData struct {
	Label     string `json:"label"`
	Model     string `json:"model"`
	Output    string `json:"output"`
	IsLoading bool   `json:"isLoading"`
	Error     string `json:"error,omitempty"`
}

// DescribeData is the payload of an ImageDescribe node.
// Prompt is the model instruction configured on the node itself,
// not fed through an edge.
type DescribeData struct {
	Label     string `json:"label"`
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Output    string `json:"output"`
	IsLoading bool   `json:"isLoading"`
	Error     string `json:"error,omitempty"`
}

// UnknownData preserves the payload of an unrecognized node kind
// across a load/save round-trip. The core never interprets it.
type UnknownData struct {
	TypeName NodeKind
	Raw      json.RawMessage
}

func (d TextData) Kind() NodeKind         { return KindTextInput }
func (d SystemPromptData) Kind() NodeKind { return KindSystemPrompt }
func (d ImageData) Kind() NodeKind        { return KindImageInput }
func (d LLMData) Kind() NodeKind          { return KindLLM }
func (d DescribeData) Kind() NodeKind     { return KindImageDescribe }
func (d UnknownData) Kind() NodeKind      { return d.TypeName }

func (d TextData) clone() NodeData         { return d }
func (d SystemPromptData) clone() NodeData { return d }
func (d ImageData) clone() NodeData        { return d }
func (d LLMData) clone() NodeData          { return d }
func (d DescribeData) clone() NodeData     { return d }

func (d UnknownData) clone() NodeData {
	raw := make(json.RawMessage, len(d.Raw))
	copy(raw, d.Raw)
	return UnknownData{TypeName: d.TypeName, Raw: raw}
}

// Node is one typed element on the canvas.
// ID is unique within a workflow; Type is immutable after creation.
type Node struct {
	ID       string
	Type     NodeKind
	Position Position
	Data     NodeData
}

// Clone returns a structurally independent copy of the node.
func (n Node) Clone() Node {
	c := n
	if n.Data != nil {
		c.Data = n.Data.clone()
	}
	return c
}

// nodeEnvelope is the wire shape of a Node.
type nodeEnvelope struct {
	ID       string          `json:"id"`
	Type     NodeKind        `json:"type"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data"`
}

// MarshalJSON implements json.Marshaler with a type-discriminated data field.
func (n Node) MarshalJSON() ([]byte, error) {
	var data any = n.Data
	if u, ok := n.Data.(UnknownData); ok {
		data = u.Raw
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal node %s data: %w", n.ID, err)
	}
	return json.Marshal(nodeEnvelope{
		ID:       n.ID,
		Type:     n.Type,
		Position: n.Position,
		Data:     raw,
	})
}

// UnmarshalJSON implements json.Unmarshaler, decoding the data field
// into the variant selected by the type discriminator. Unrecognized
// kinds round-trip as UnknownData.
func (n *Node) UnmarshalJSON(b []byte) error {
	var env nodeEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}

	data, err := decodeNodeData(env.Type, env.Data)
	if err != nil {
		return fmt.Errorf("node %s: %w", env.ID, err)
	}

	n.ID = env.ID
	n.Type = env.Type
	n.Position = env.Position
	n.Data = data
	return nil
}

// decodeNodeData decodes raw JSON into the payload variant for kind.
func decodeNodeData(kind NodeKind, raw json.RawMessage) (NodeData, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	switch kind {
	case KindTextInput:
		var d TextData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode text data: %w", err)
		}
		return d, nil
	case KindSystemPrompt:
		var d SystemPromptData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode system prompt data: %w", err)
		}
		return d, nil
	case KindImageInput:
		var d ImageData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode image data: %w", err)
		}
		return d, nil
	case KindLLM:
		var d LLMData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode llm data: %w", err)
		}
		return d, nil
	case KindImageDescribe:
		var d DescribeData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode image describe data: %w", err)
		}
		return d, nil
	default:
		kept := make(json.RawMessage, len(raw))
		copy(kept, raw)
		return UnknownData{TypeName: kind, Raw: kept}, nil
	}
}

// Edge is a directional connection between two nodes.
// TargetHandle classifies which input slot on the target the edge
// feeds; empty or HandleOutput means the handle is unclassified.
type Edge struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	Target       string     `json:"target"`
	TargetHandle HandleKind `json:"targetHandle,omitempty"`
}
