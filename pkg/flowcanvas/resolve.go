package flowcanvas

import (
	"log/slog"
	"strings"
)

// User-facing resolver error messages. Only the first error is
// surfaced per failed operation; see Inputs.Errors.
const (
	msgNoInputs        = "No inputs connected. Connect a Text node to provide a prompt."
	msgNoInputsForDesc = "No inputs connected. Connect an Image node and set a Model instruction."
	msgNoInstruction   = "Image Describe requires a Model instruction. Set the prompt in the node properties."
	msgNoImages        = "No images connected. Connect an Image node to describe."
	msgNoText          = "No text input provided. Connect a Text node."
)

// defaultMimeType is assumed for uploaded images with no recorded type.
const defaultMimeType = "image/jpeg"

// Inputs is the structured input bundle assembled for an LLM-class
// node. It is rebuilt from the graph on every execution request and
// never cached.
//
// Errors is the authoritative gate: any entry means the caller must
// not proceed to execution. The first entry is the user-facing
// message; the rest are retained so callers can present a full list
// if they choose to.
type Inputs struct {
	SystemPrompt string
	UserMessage  string
	Images       []string
	Errors       []string
}

// ResolveInputs walks the edges terminating at targetID and
// aggregates upstream node data into an input bundle.
//
// Multiple contributions to the same handle are joined with a blank
// line in edge order. Edge order is insertion order, so the join is
// deterministic for a given snapshot but not canonical across
// reorderings.
func ResolveInputs(targetID string, nodes []Node, edges []Edge) Inputs {
	target, _ := findNode(nodes, targetID)
	isDescribe := target.Type == KindImageDescribe

	var incoming []Edge
	for _, e := range edges {
		if e.Target == targetID {
			incoming = append(incoming, e)
		}
	}

	if len(incoming) == 0 {
		if isDescribe {
			return Inputs{Errors: []string{msgNoInputsForDesc}}
		}
		return Inputs{Errors: []string{msgNoInputs}}
	}

	var systemParts, userParts, images []string
	for _, e := range incoming {
		src, ok := findNode(nodes, e.Source)
		if !ok {
			// Cascade removal keeps edges referentially intact, so a
			// missing source only happens on corrupted input.
			slog.Warn("edge source missing, skipping", "edge_id", e.ID, "source", e.Source)
			continue
		}

		switch e.TargetHandle {
		case HandleSystem:
			if content, ok := textContent(src); ok {
				if trimmed := strings.TrimSpace(content); trimmed != "" {
					systemParts = append(systemParts, trimmed)
				}
			}
		case HandleText:
			if content, ok := textOutput(src); ok {
				if trimmed := strings.TrimSpace(content); trimmed != "" {
					userParts = append(userParts, trimmed)
				}
			}
		case HandleImage:
			if d, ok := src.Data.(ImageData); ok && d.ImageBytes != "" {
				images = append(images, dataURI(d.MimeType, d.ImageBytes))
			}
		default:
			slog.Debug("skipping edge with unclassified target handle",
				"edge_id", e.ID, "target_handle", string(e.TargetHandle))
		}
	}

	var errs []string
	if isDescribe {
		d, _ := target.Data.(DescribeData)
		if prompt := strings.TrimSpace(d.Prompt); prompt != "" {
			userParts = append(userParts, prompt)
		} else {
			errs = append(errs, msgNoInstruction)
		}
		if len(images) == 0 {
			errs = append(errs, msgNoImages)
		}
	}

	userMessage := strings.Join(userParts, "\n\n")
	if !isDescribe && userMessage == "" {
		errs = append(errs, msgNoText)
	}

	return Inputs{
		SystemPrompt: strings.Join(systemParts, "\n\n"),
		UserMessage:  userMessage,
		Images:       images,
		Errors:       errs,
	}
}

// textContent returns the authored content of a text-bearing node.
// Only SystemPrompt and TextInput nodes may feed a system handle.
func textContent(n Node) (string, bool) {
	switch d := n.Data.(type) {
	case SystemPromptData:
		return d.Content, true
	case TextData:
		return d.Content, true
	default:
		return "", false
	}
}

// textOutput returns the text a node contributes to a text handle:
// authored content for input nodes, the latest output for LLM nodes.
func textOutput(n Node) (string, bool) {
	switch d := n.Data.(type) {
	case TextData:
		return d.Content, true
	case SystemPromptData:
		return d.Content, true
	case LLMData:
		return d.Output, true
	default:
		return "", false
	}
}

// dataURI builds a ready-to-send data URI from base64 image bytes.
func dataURI(mimeType, base64Bytes string) string {
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	return "data:" + mimeType + ";base64," + base64Bytes
}
