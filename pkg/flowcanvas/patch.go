package flowcanvas

// NodePatch is a typed partial update to one node-data variant.
// Nil fields are left untouched; set fields overwrite. Each variant
// has its own patch type so a patch can only touch fields of the
// kind it targets.
type NodePatch interface {
	// PatchKind returns the node kind this patch applies to.
	PatchKind() NodeKind

	// apply merges the patch into data. data is guaranteed to be the
	// variant matching PatchKind.
	apply(data NodeData) NodeData
}

// TextPatch updates a TextInput node.
type TextPatch struct {
	Label   *string
	Content *string
}

// PatchKind implements NodePatch.
func (p TextPatch) PatchKind() NodeKind { return KindTextInput }

func (p TextPatch) apply(data NodeData) NodeData {
	d := data.(TextData)
	if p.Label != nil {
		d.Label = *p.Label
	}
	if p.Content != nil {
		d.Content = *p.Content
	}
	return d
}

// SystemPromptPatch updates a SystemPrompt node.
type SystemPromptPatch struct {
	Label   *string
	Content *string
}

// PatchKind implements NodePatch.
func (p SystemPromptPatch) PatchKind() NodeKind { return KindSystemPrompt }

func (p SystemPromptPatch) apply(data NodeData) NodeData {
	d := data.(SystemPromptData)
	if p.Label != nil {
		d.Label = *p.Label
	}
	if p.Content != nil {
		d.Content = *p.Content
	}
	return d
}

// ImagePatch updates an ImageInput node.
type ImagePatch struct {
	Label      *string
	ImageBytes *string
	FileName   *string
	MimeType   *string
}

// PatchKind implements NodePatch.
func (p ImagePatch) PatchKind() NodeKind { return KindImageInput }

func (p ImagePatch) apply(data NodeData) NodeData {
	d := data.(ImageData)
	if p.Label != nil {
		d.Label = *p.Label
	}
	if p.ImageBytes != nil {
		d.ImageBytes = *p.ImageBytes
	}
	if p.FileName != nil {
		d.FileName = *p.FileName
	}
	if p.MimeType != nil {
		d.MimeType = *p.MimeType
	}
	return d
}

// LLMPatch updates an LLM node.
type LLMPatch struct {
	Label     *string
	Model     *string
	Output    *string
	IsLoading *bool
	Error     *string
}

// PatchKind implements NodePatch.
func (p LLMPatch) PatchKind() NodeKind { return KindLLM }

func (p LLMPatch) apply(data NodeData) NodeData {
	d := data.(LLMData)
	if p.Label != nil {
		d.Label = *p.Label
	}
	if p.Model != nil {
		d.Model = *p.Model
	}
	if p.Output != nil {
		d.Output = *p.Output
	}
	if p.IsLoading != nil {
		d.IsLoading = *p.IsLoading
	}
	if p.Error != nil {
		d.Error = *p.Error
	}
	return d
}

// DescribePatch updates an ImageDescribe node.
type DescribePatch struct {
	Label     *string
	Model     *string
	Prompt    *string
	Output    *string
	IsLoading *bool
	Error     *string
}

// PatchKind implements NodePatch.
func (p DescribePatch) PatchKind() NodeKind { return KindImageDescribe }

func (p DescribePatch) apply(data NodeData) NodeData {
	d := data.(DescribeData)
	if p.Label != nil {
		d.Label = *p.Label
	}
	if p.Model != nil {
		d.Model = *p.Model
	}
	if p.Prompt != nil {
		d.Prompt = *p.Prompt
	}
	if p.Output != nil {
		d.Output = *p.Output
	}
	if p.IsLoading != nil {
		d.IsLoading = *p.IsLoading
	}
	if p.Error != nil {
		d.Error = *p.Error
	}
	return d
}

// ptr returns a pointer to v. Convenience for building patches.
func ptr[T any](v T) *T { return &v }
