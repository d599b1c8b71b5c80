package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Bbeierle12/Agent-Shell/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedChain replays one slice of chunks per call to Complete, in order.
type scriptedChain struct {
	calls int
	script [][]*CompletionChunk
}

func (s *scriptedChain) Complete(ctx context.Context, req *CompletionRequest) (<-chan *CompletionChunk, error) {
	idx := s.calls
	s.calls++
	ch := make(chan *CompletionChunk, len(s.script[idx]))
	for _, c := range s.script[idx] {
		ch <- c
	}
	close(ch)
	return ch, nil
}

type echoTool struct{}

func (echoTool) Name() string             { return "python_exec" }
func (echoTool) Description() string      { return "runs python" }
func (echoTool) Schema() json.RawMessage  { return json.RawMessage(`{}`) }
func (t echoTool) Execute(ctx context.Context, args json.RawMessage) (*models.ToolOutput, error) {
	return &models.ToolOutput{Content: "4"}, nil
}

func collectEvents(t *testing.T, loop *Loop, in TurnInput) []models.AgentEvent {
	t.Helper()
	var events []models.AgentEvent
	sink := NewCallbackSink(func(ctx context.Context, e models.AgentEvent) {
		events = append(events, e)
	})
	_, err := loop.Run(context.Background(), in, sink)
	require.NoError(t, err)
	return events
}

func TestLoop_ToolCallThenDone(t *testing.T) {
	chain := &scriptedChain{script: [][]*CompletionChunk{
		{
			{ToolCalls: []models.ToolCall{{ID: "tc1", Name: "python_exec", Arguments: `{"code":"2+2"}`}}, Done: true},
		},
		{
			{Text: "4"},
			{Done: true},
		},
	}}
	registry := NewToolRegistry()
	registry.Register(echoTool{})
	loop := NewLoop(chain, registry)

	events := collectEvents(t, loop, TurnInput{
		History: []models.Message{models.NewMessage(models.RoleUser, "what is 2+2?")},
	})

	require.Len(t, events, 4)
	assert.Equal(t, models.AgentEventToolCallStart, events[0].Type)
	assert.Equal(t, "tc1", events[0].ToolCallID)
	assert.Equal(t, models.AgentEventToolResult, events[1].Type)
	assert.Contains(t, events[1].ToolOutput.Content, "4")
	assert.Equal(t, models.AgentEventContentChunk, events[2].Type)
	assert.Equal(t, "4", events[2].Text)
	assert.Equal(t, models.AgentEventDone, events[3].Type)
	assert.Equal(t, "4", events[3].Message.Content)
}

func TestLoop_NoToolCalls_EmitsDoneImmediately(t *testing.T) {
	chain := &scriptedChain{script: [][]*CompletionChunk{
		{{Text: "hello"}, {Done: true}},
	}}
	loop := NewLoop(chain, NewToolRegistry())

	events := collectEvents(t, loop, TurnInput{
		History: []models.Message{models.NewMessage(models.RoleUser, "hi")},
	})

	require.Len(t, events, 2)
	assert.Equal(t, models.AgentEventContentChunk, events[0].Type)
	assert.Equal(t, models.AgentEventDone, events[1].Type)
}

func TestLoop_ToolNotAllowed_SkipsExecution(t *testing.T) {
	chain := &scriptedChain{script: [][]*CompletionChunk{
		{{ToolCalls: []models.ToolCall{{ID: "tc1", Name: "python_exec", Arguments: `{}`}}, Done: true}},
		{{Done: true}},
	}}
	registry := NewToolRegistry()
	registry.Register(echoTool{})
	loop := NewLoop(chain, registry)

	events := collectEvents(t, loop, TurnInput{
		History:  []models.Message{models.NewMessage(models.RoleUser, "run code")},
		ToolDeny: []string{"python_exec"},
	})

	require.GreaterOrEqual(t, len(events), 2)
	assert.True(t, events[1].ToolOutput.IsError)
	assert.Contains(t, events[1].ToolOutput.Content, "Tool not allowed")
}

func TestLoop_InvalidJSONArguments(t *testing.T) {
	chain := &scriptedChain{script: [][]*CompletionChunk{
		{{ToolCalls: []models.ToolCall{{ID: "tc1", Name: "python_exec", Arguments: `{not json`}}, Done: true}},
		{{Done: true}},
	}}
	registry := NewToolRegistry()
	registry.Register(echoTool{})
	loop := NewLoop(chain, registry)

	events := collectEvents(t, loop, TurnInput{
		History: []models.Message{models.NewMessage(models.RoleUser, "run code")},
	})

	require.GreaterOrEqual(t, len(events), 2)
	assert.True(t, events[1].ToolOutput.IsError)
	assert.Contains(t, events[1].ToolOutput.Content, "Invalid JSON arguments")
}

func TestLoop_MaxIterationsCap(t *testing.T) {
	script := make([][]*CompletionChunk, MaxToolIterations)
	for i := range script {
		script[i] = []*CompletionChunk{
			{ToolCalls: []models.ToolCall{{ID: "tc", Name: "python_exec", Arguments: `{}`}}, Done: true},
		}
	}
	chain := &scriptedChain{script: script}
	registry := NewToolRegistry()
	registry.Register(echoTool{})
	loop := NewLoop(chain, registry)

	msg, err := loop.Run(context.Background(), TurnInput{
		History: []models.Message{models.NewMessage(models.RoleUser, "loop forever")},
	}, NopSink{})

	require.NoError(t, err)
	assert.Equal(t, "[Agent reached maximum tool iterations]", msg.Content)
}
