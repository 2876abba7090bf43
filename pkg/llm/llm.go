// Package llm defines the inference client contract the conversation layer
// is written against, along with the inference option model shared by all
// backends.
package llm

import (
	"context"
)

// Wire roles for outbound messages. These mirror the role vocabulary of the
// Bedrock Converse API; system entries are lifted out of the message list by
// backends that carry system instructions separately.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry of the outbound message list sent to a model.
type Message struct {
	Role string
	Text string
}

// InferenceClient is the minimal transport contract: send role-tagged
// messages plus inference options, get back generated text or an error.
// Implementations do not retry; retry policy belongs to the caller.
type InferenceClient interface {
	Generate(ctx context.Context, messages []Message, opts *Options) (string, error)
}

// StreamChunkFunc receives incremental response text during streaming.
type StreamChunkFunc func(chunk string)

// StreamingInferenceClient extends InferenceClient with a streaming mode.
// Streaming is a transport feature only; the context-window manager never
// uses it.
type StreamingInferenceClient interface {
	InferenceClient

	// GenerateStream invokes the model, calling fn for each text chunk as
	// it arrives, and returns the complete response text.
	GenerateStream(ctx context.Context, messages []Message, opts *Options, fn StreamChunkFunc) (string, error)
}

// ModelIdentifier is implemented by clients that know which model they are
// bound to.
type ModelIdentifier interface {
	ModelID() string
}
