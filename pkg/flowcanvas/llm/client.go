// Package llm defines the LLM invocation collaborator: the boundary
// the editor core calls with an assembled prompt and images, and the
// error taxonomy vendor failures are mapped into.
package llm

import (
	"context"
	"time"
)

// Client executes a completion against an LLM backend.
// Implementations own transport, auth, and mapping vendor-specific
// failures to the ErrorKind taxonomy.
type Client interface {
	// Complete runs a single completion. A nil error guarantees a
	// non-nil response; failures are returned as *Error where the
	// backend reported a classified failure.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request carries the fully assembled inputs for one completion.
type Request struct {
	// Model is the model identifier. Required.
	Model string `json:"model"`

	// SystemPrompt is the optional system instruction.
	SystemPrompt string `json:"system,omitempty"`

	// UserMessage is the aggregated user prompt. Required.
	UserMessage string `json:"prompt"`

	// Images are ready-to-send data URIs, in graph edge order.
	Images []string `json:"images,omitempty"`
}

// Response is the output of a successful completion.
type Response struct {
	// Output is the model's text output.
	Output string `json:"output"`

	// Model is the model that produced the output.
	Model string `json:"model"`

	// Duration is the wall-clock time of the call.
	Duration time.Duration `json:"duration"`
}
