package agent

import (
	"context"

	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// LLMProvider is the interface every concrete backend (Anthropic, OpenAI,
// Bedrock) implements. The turn loop and the provider chain only ever see
// this interface — concrete SDK types never leak past internal/providers.
//
// Implementations must be safe for concurrent use: multiple turns across
// different sessions may call Complete simultaneously.
type LLMProvider interface {
	// Complete sends req and streams the response back on the returned
	// channel. The channel is closed when the response is complete or the
	// context is cancelled; a CompletionChunk with a non-nil Err is always
	// the last value sent before close.
	Complete(ctx context.Context, req *CompletionRequest) (<-chan *CompletionChunk, error)

	// Name identifies this provider for health tracking and logging.
	Name() string
}

// CompletionRequest is the provider-agnostic request built by the turn
// loop from a Session's history plus the effective tool set.
type CompletionRequest struct {
	Model             string
	System            string
	Messages          []models.Message
	Tools             []models.ToolSchema
	Temperature       float64
	MaxTokens         int
	Role              string // routing tag consulted by the provider chain
}

// CompletionChunk is one unit of a streamed completion. Exactly one of
// Text, ToolCall, or Err is set, except for the final chunk which carries
// Done=true and optionally the fully assembled ToolCalls.
type CompletionChunk struct {
	Text      string
	ToolCall  *models.ToolCall
	Done      bool
	ToolCalls []models.ToolCall // populated on the Done chunk
	Err       error
}
