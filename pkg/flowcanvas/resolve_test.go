package flowcanvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolveInputs_Aggregation verifies the basic bundle: a text
// source on the text handle, a system prompt on the system handle.
func TestResolveInputs_Aggregation(t *testing.T) {
	nodes := []Node{
		textNode("t1", "Hello"),
		sysNode("s1", "Be terse"),
		llmNode("llm", ""),
	}
	edges := []Edge{
		edge("e1", "t1", "llm", HandleText),
		edge("e2", "s1", "llm", HandleSystem),
	}

	inputs := ResolveInputs("llm", nodes, edges)

	assert.Equal(t, "Be terse", inputs.SystemPrompt)
	assert.Equal(t, "Hello", inputs.UserMessage)
	assert.Empty(t, inputs.Images)
	assert.Empty(t, inputs.Errors)
}

// TestResolveInputs_MultiSourceJoin verifies multiple text sources
// are joined with a blank line in edge order.
func TestResolveInputs_MultiSourceJoin(t *testing.T) {
	nodes := []Node{
		textNode("t1", "A"),
		textNode("t2", "B"),
		llmNode("llm", ""),
	}
	edges := []Edge{
		edge("e1", "t1", "llm", HandleText),
		edge("e2", "t2", "llm", HandleText),
	}

	inputs := ResolveInputs("llm", nodes, edges)
	assert.Equal(t, "A\n\nB", inputs.UserMessage)
}

// TestResolveInputs_MultiSystemJoin verifies multiple system
// contributions join the same way.
func TestResolveInputs_MultiSystemJoin(t *testing.T) {
	nodes := []Node{
		sysNode("s1", "Rule one."),
		textNode("t1", "Rule two."),
		llmNode("llm", ""),
	}
	edges := []Edge{
		edge("e1", "s1", "llm", HandleSystem),
		edge("e2", "t1", "llm", HandleSystem),
		edge("e3", "t1", "llm", HandleText),
	}

	inputs := ResolveInputs("llm", nodes, edges)
	assert.Equal(t, "Rule one.\n\nRule two.", inputs.SystemPrompt)
	assert.Empty(t, inputs.Errors)
}

// TestResolveInputs_LLMOutputChaining verifies an upstream LLM node
// contributes its output, not its configuration, to a text handle.
func TestResolveInputs_LLMOutputChaining(t *testing.T) {
	nodes := []Node{
		{ID: "up", Type: KindLLM, Data: LLMData{Label: "LLM", Output: "  upstream result  "}},
		llmNode("down", ""),
	}
	edges := []Edge{edge("e1", "up", "down", HandleText)}

	inputs := ResolveInputs("down", nodes, edges)
	assert.Equal(t, "upstream result", inputs.UserMessage)
	assert.Empty(t, inputs.Errors)
}

// TestResolveInputs_NoEdges verifies the missing-input error for a
// plain LLM target.
func TestResolveInputs_NoEdges(t *testing.T) {
	nodes := []Node{llmNode("llm", "")}

	inputs := ResolveInputs("llm", nodes, nil)

	require.Len(t, inputs.Errors, 1)
	assert.Equal(t, "No inputs connected. Connect a Text node to provide a prompt.", inputs.Errors[0])
	assert.Empty(t, inputs.UserMessage)
	assert.Empty(t, inputs.SystemPrompt)
	assert.Empty(t, inputs.Images)
}

// TestResolveInputs_NoEdges_ImageDescribe verifies the
// context-appropriate wording for an ImageDescribe target.
func TestResolveInputs_NoEdges_ImageDescribe(t *testing.T) {
	nodes := []Node{describeNode("desc", "what is this?")}

	inputs := ResolveInputs("desc", nodes, nil)

	require.Len(t, inputs.Errors, 1)
	assert.Contains(t, inputs.Errors[0], "No inputs connected")
	assert.Contains(t, inputs.Errors[0], "Image node")
}

// TestResolveInputs_ImageDescribe verifies the happy path: the node's
// own prompt becomes the user message and the image becomes a data URI.
func TestResolveInputs_ImageDescribe(t *testing.T) {
	nodes := []Node{
		imageNode("img", "aGVsbG8=", "image/png"),
		describeNode("desc", "Describe the scene"),
	}
	edges := []Edge{edge("e1", "img", "desc", HandleImage)}

	inputs := ResolveInputs("desc", nodes, edges)

	assert.Empty(t, inputs.Errors)
	assert.Equal(t, "Describe the scene", inputs.UserMessage)
	require.Len(t, inputs.Images, 1)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", inputs.Images[0])
}

// TestResolveInputs_ImageDescribe_MissingPrompt verifies the
// model-instruction requirement.
func TestResolveInputs_ImageDescribe_MissingPrompt(t *testing.T) {
	nodes := []Node{
		imageNode("img", "aGVsbG8=", "image/png"),
		describeNode("desc", "   "),
	}
	edges := []Edge{edge("e1", "img", "desc", HandleImage)}

	inputs := ResolveInputs("desc", nodes, edges)

	require.NotEmpty(t, inputs.Errors)
	assert.Contains(t, inputs.Errors[0], "Model instruction")
}

// TestResolveInputs_ImageDescribe_MissingImage verifies the
// image requirement.
func TestResolveInputs_ImageDescribe_MissingImage(t *testing.T) {
	nodes := []Node{
		textNode("t1", "context"),
		describeNode("desc", "Describe it"),
	}
	edges := []Edge{edge("e1", "t1", "desc", HandleText)}

	inputs := ResolveInputs("desc", nodes, edges)

	require.NotEmpty(t, inputs.Errors)
	assert.Contains(t, inputs.Errors[0], "Connect an Image node")
}

// TestResolveInputs_ImageDescribe_BothMissing verifies the full error
// list is retained, instruction error first.
func TestResolveInputs_ImageDescribe_BothMissing(t *testing.T) {
	nodes := []Node{
		textNode("t1", "context"),
		describeNode("desc", ""),
	}
	edges := []Edge{edge("e1", "t1", "desc", HandleText)}

	inputs := ResolveInputs("desc", nodes, edges)

	require.Len(t, inputs.Errors, 2)
	assert.Contains(t, inputs.Errors[0], "Model instruction")
	assert.Contains(t, inputs.Errors[1], "Connect an Image node")
}

// TestResolveInputs_DefaultMimeType verifies images with no recorded
// mime type fall back to image/jpeg.
func TestResolveInputs_DefaultMimeType(t *testing.T) {
	nodes := []Node{
		imageNode("img", "Zm9v", ""),
		describeNode("desc", "Describe"),
	}
	edges := []Edge{edge("e1", "img", "desc", HandleImage)}

	inputs := ResolveInputs("desc", nodes, edges)
	require.Len(t, inputs.Images, 1)
	assert.Equal(t, "data:image/jpeg;base64,Zm9v", inputs.Images[0])
}

// TestResolveInputs_EmptyImageSkipped verifies an ImageInput with no
// upload contributes nothing.
func TestResolveInputs_EmptyImageSkipped(t *testing.T) {
	nodes := []Node{
		imageNode("img", "", "image/png"),
		describeNode("desc", "Describe"),
	}
	edges := []Edge{edge("e1", "img", "desc", HandleImage)}

	inputs := ResolveInputs("desc", nodes, edges)
	assert.Empty(t, inputs.Images)
	require.NotEmpty(t, inputs.Errors)
	assert.Contains(t, inputs.Errors[0], "Connect an Image node")
}

// TestResolveInputs_WhitespaceOnlySkipped verifies whitespace-only
// contributions are dropped before joining.
func TestResolveInputs_WhitespaceOnlySkipped(t *testing.T) {
	nodes := []Node{
		textNode("t1", "   "),
		textNode("t2", "real"),
		llmNode("llm", ""),
	}
	edges := []Edge{
		edge("e1", "t1", "llm", HandleText),
		edge("e2", "t2", "llm", HandleText),
	}

	inputs := ResolveInputs("llm", nodes, edges)
	assert.Equal(t, "real", inputs.UserMessage)
}

// TestResolveInputs_MissingUserMessage verifies the final gate for a
// target whose only inputs contribute nothing usable.
func TestResolveInputs_MissingUserMessage(t *testing.T) {
	nodes := []Node{
		sysNode("s1", "Be terse"),
		llmNode("llm", ""),
	}
	edges := []Edge{edge("e1", "s1", "llm", HandleSystem)}

	inputs := ResolveInputs("llm", nodes, edges)

	assert.Equal(t, "Be terse", inputs.SystemPrompt)
	require.Len(t, inputs.Errors, 1)
	assert.Contains(t, inputs.Errors[0], "No text input provided")
}

// TestResolveInputs_UnknownHandleSkipped verifies edges with
// unclassified handles are ignored without failing resolution.
func TestResolveInputs_UnknownHandleSkipped(t *testing.T) {
	nodes := []Node{
		textNode("t1", "Hello"),
		textNode("t2", "ignored"),
		llmNode("llm", ""),
	}
	edges := []Edge{
		edge("e1", "t1", "llm", HandleText),
		edge("e2", "t2", "llm", HandleKind("audio")),
	}

	inputs := ResolveInputs("llm", nodes, edges)
	assert.Equal(t, "Hello", inputs.UserMessage)
	assert.Empty(t, inputs.Errors)
}

// TestResolveInputs_WrongSourceForImageHandle verifies only
// ImageInput nodes can feed an image handle.
func TestResolveInputs_WrongSourceForImageHandle(t *testing.T) {
	nodes := []Node{
		textNode("t1", "not an image"),
		describeNode("desc", "Describe"),
	}
	edges := []Edge{edge("e1", "t1", "desc", HandleImage)}

	inputs := ResolveInputs("desc", nodes, edges)
	assert.Empty(t, inputs.Images)
	require.NotEmpty(t, inputs.Errors)
}
