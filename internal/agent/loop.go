package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// MaxToolIterations bounds how many provider round-trips a single turn may
// make before the loop gives up and returns a synthetic message.
const MaxToolIterations = 20

// TurnInput is everything the loop needs to drive one user turn.
//
//	┌─────────┐     ┌──────────┐     ┌───────────────────┐
//	│  Init   │────▶│  Stream  │────▶│  Execute Tools    │
//	└─────────┘     └──────────┘     └───────────────────┘
//	                      │                    │
//	                      ▼                    │
//	               ┌──────────┐                │
//	               │ Complete │◀───────────────┘  (no tool calls, or cap hit)
//	               └──────────┘
//	                      ▲
//	               ┌──────────┐
//	               │ Continue │◀──── (tool results appended, loop again)
//	               └──────────┘
type TurnInput struct {
	History      []models.Message
	SystemPrompt string
	ToolAllow    []string
	ToolDeny     []string
	Role         string
	Model        string
	Temperature  float64
	MaxTokens    int
}

// Loop drives turns: one LLM/tool round-trip state machine per call to Run.
type Loop struct {
	chain ProviderChain
	tools *ToolRegistry
}

// ProviderChain is the subset of the provider chain's behavior the loop
// depends on, letting tests substitute a fake chain.
type ProviderChain interface {
	Complete(ctx context.Context, req *CompletionRequest) (<-chan *CompletionChunk, error)
}

// NewLoop builds a Loop against a provider chain and the global tool
// registry. Per-turn tool filtering happens in Run, not here.
func NewLoop(chain ProviderChain, tools *ToolRegistry) *Loop {
	return &Loop{chain: chain, tools: tools}
}

// Run executes the turn-loop algorithm and returns the final assistant
// message. It never returns a ToolExecution error — those are folded into
// tool-output messages and the loop continues; it returns a Go error only
// for a Provider or Schema failure, which aborts the turn.
func (l *Loop) Run(ctx context.Context, in TurnInput, sink EventSink) (*models.Message, error) {
	schemas := EffectiveToolSet(l.tools.Schemas(), in.ToolAllow, in.ToolDeny)

	wire := withSystemPrompt(in.History, in.SystemPrompt)

	for iter := 1; iter <= MaxToolIterations; iter++ {
		req := &CompletionRequest{
			Model:       in.Model,
			Messages:    cloneMessages(wire),
			Tools:       schemas,
			Temperature: in.Temperature,
			MaxTokens:   in.MaxTokens,
			Role:        in.Role,
		}

		assistant, err := l.streamOne(ctx, req, sink)
		if err != nil {
			sink.Emit(ctx, models.AgentEvent{Type: models.AgentEventError, Err: err})
			return nil, err
		}

		if len(assistant.ToolCalls) == 0 {
			sink.Emit(ctx, models.AgentEvent{Type: models.AgentEventDone, Message: assistant})
			return assistant, nil
		}

		wire = append(wire, *assistant)
		for _, call := range assistant.ToolCalls {
			output := l.executeOne(ctx, call, in.ToolAllow, in.ToolDeny, sink)
			wire = append(wire, toolOutputMessage(*output))
		}
	}

	final := maxIterationsMessage()
	sink.Emit(ctx, models.AgentEvent{Type: models.AgentEventDone, Message: &final})
	return &final, nil
}

// streamOne drains a single provider stream into one assistant message,
// emitting ContentChunk events as text arrives.
func (l *Loop) streamOne(ctx context.Context, req *CompletionRequest, sink EventSink) (*models.Message, error) {
	chunks, err := l.chain.Complete(ctx, req)
	if err != nil {
		return nil, &agenterr.ProviderError{Message: err.Error(), Cause: err}
	}

	msg := models.NewMessage(models.RoleAssistant, "")
	var text []byte

	for chunk := range chunks {
		if chunk.Err != nil {
			return nil, &agenterr.ProviderError{Message: chunk.Err.Error(), Cause: chunk.Err}
		}
		if chunk.Text != "" {
			text = append(text, chunk.Text...)
			sink.Emit(ctx, models.AgentEvent{Type: models.AgentEventContentChunk, Text: chunk.Text})
		}
		if chunk.Done {
			msg.ToolCalls = chunk.ToolCalls
		}
	}

	msg.Content = string(text)
	return &msg, nil
}

// executeOne performs step 3.c.i-v of the turn-loop algorithm for a single
// tool call: allowlist/denylist check, argument parsing, dispatch, and
// result emission, in that exact order.
func (l *Loop) executeOne(ctx context.Context, call models.ToolCall, allow, deny []string, sink EventSink) *models.ToolOutput {
	sink.Emit(ctx, models.AgentEvent{Type: models.AgentEventToolCallStart, ToolCallID: call.ID, ToolCallName: call.Name})

	var output *models.ToolOutput
	switch {
	case !IsPermitted(call.Name, allow, deny):
		output = &models.ToolOutput{
			ToolCallID: call.ID,
			Content:    fmt.Sprintf("Tool not allowed: %s", call.Name),
			IsError:    true,
		}
	case !json.Valid([]byte(call.Arguments)):
		output = &models.ToolOutput{
			ToolCallID: call.ID,
			Content:    fmt.Sprintf("Invalid JSON arguments: %s", call.Name),
			IsError:    true,
		}
	default:
		output = l.tools.Execute(ctx, call)
	}

	sink.Emit(ctx, models.AgentEvent{Type: models.AgentEventToolResult, ToolCallID: call.ID, ToolOutput: output})
	return output
}

// withSystemPrompt prepends prompt as a system message unless history
// already starts with one.
func withSystemPrompt(history []models.Message, prompt string) []models.Message {
	if prompt == "" {
		return history
	}
	if len(history) > 0 && history[0].Role == models.RoleSystem {
		return history
	}
	out := make([]models.Message, 0, len(history)+1)
	out = append(out, models.NewMessage(models.RoleSystem, prompt))
	out = append(out, history...)
	return out
}

func cloneMessages(in []models.Message) []models.Message {
	out := make([]models.Message, len(in))
	copy(out, in)
	return out
}

func toolOutputMessage(out models.ToolOutput) models.Message {
	msg := models.NewMessage(models.RoleTool, out.Content)
	msg.ToolCallID = out.ToolCallID
	return msg
}

func maxIterationsMessage() models.Message {
	return models.NewMessage(models.RoleAssistant, "[Agent reached maximum tool iterations]")
}
