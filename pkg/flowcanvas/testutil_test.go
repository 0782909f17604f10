package flowcanvas

// Shared test fixtures for the flowcanvas package.

// textNode builds a TextInput node with the given content.
func textNode(id, content string) Node {
	return Node{
		ID:   id,
		Type: KindTextInput,
		Data: TextData{Label: "Text", Content: content},
	}
}

// sysNode builds a SystemPrompt node with the given content.
func sysNode(id, content string) Node {
	return Node{
		ID:   id,
		Type: KindSystemPrompt,
		Data: SystemPromptData{Label: "System Prompt", Content: content},
	}
}

// imageNode builds an ImageInput node holding base64 bytes.
func imageNode(id, bytes, mime string) Node {
	return Node{
		ID:   id,
		Type: KindImageInput,
		Data: ImageData{Label: "Image", ImageBytes: bytes, FileName: "photo.png", MimeType: mime},
	}
}

// llmNode builds an LLM node with the given model.
func llmNode(id, model string) Node {
	return Node{
		ID:   id,
		Type: KindLLM,
		Data: LLMData{Label: "LLM", Model: model},
	}
}

// describeNode builds an ImageDescribe node with the given prompt.
func describeNode(id, prompt string) Node {
	return Node{
		ID:   id,
		Type: KindImageDescribe,
		Data: DescribeData{Label: "Image Describe", Prompt: prompt},
	}
}

// edge builds an edge feeding the given target handle.
func edge(id, source, target string, handle HandleKind) Edge {
	return Edge{ID: id, Source: source, Target: target, TargetHandle: handle}
}
