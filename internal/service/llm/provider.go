// Package llm hosts the model-facing layer: provider abstraction,
// context packing, and the chat and transform services built on top.
package llm

import (
	"context"
)

// Message is one conversation turn sent to a provider.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// GenerateRequest contains the parameters for one streamed generation.
type GenerateRequest struct {
	Model     string
	System    string
	Messages  []Message
	MaxTokens int
}

// StreamMetadata is the final accounting for a completed stream.
type StreamMetadata struct {
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string
}

// StreamEvent is one item on a provider stream. Exactly one field is
// set: a text delta, the terminal metadata, or an error. The channel is
// always closed after a Metadata or Err event.
type StreamEvent struct {
	TextDelta string
	Metadata  *StreamMetadata
	Err       error
}

// Provider is a streaming LLM backend. StreamResponse returns a channel
// generator; cancelling ctx stops the stream and closes the channel
// without an error event.
type Provider interface {
	Name() string
	SupportsModel(model string) bool
	StreamResponse(ctx context.Context, req *GenerateRequest) (<-chan StreamEvent, error)
}
