// Package openai adapts the OpenAI chat-completions API to
// agent.LLMProvider using sashabaranov/go-openai.
package openai

import (
	"context"
	"fmt"
	"io"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/Bbeierle12/Agent-Shell/internal/agent"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// Config configures a Provider.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

// Provider implements agent.LLMProvider against the OpenAI chat API (and
// any OpenAI-compatible endpoint reachable via BaseURL).
type Provider struct {
	client       *gopenai.Client
	defaultModel string
}

// New builds a Provider. APIKey is required.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = gopenai.GPT4o
	}
	clientCfg := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Provider{client: gopenai.NewClientWithConfig(clientCfg), defaultModel: cfg.DefaultModel}, nil
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Complete(ctx context.Context, req *agent.CompletionRequest) (<-chan *agent.CompletionChunk, error) {
	messages := convertMessages(req.Messages, req.System)

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	chatReq := gopenai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		chatReq.Temperature = float32(req.Temperature)
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = convertTools(req.Tools)
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	out := make(chan *agent.CompletionChunk, 16)
	go processStream(stream, out)
	return out, nil
}

func processStream(stream *gopenai.ChatCompletionStream, out chan<- *agent.CompletionChunk) {
	defer close(out)
	defer stream.Close()

	calls := make(map[int]*models.ToolCall)

	for {
		resp, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				out <- &agent.CompletionChunk{Done: true, ToolCalls: flushCalls(calls)}
				return
			}
			out <- &agent.CompletionChunk{Err: fmt.Errorf("openai: stream: %w", err)}
			return
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta
		if delta.Content != "" {
			out <- &agent.CompletionChunk{Text: delta.Content}
		}
		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			cur, ok := calls[idx]
			if !ok {
				cur = &models.ToolCall{}
				calls[idx] = cur
			}
			if tc.ID != "" {
				cur.ID = tc.ID
			}
			if tc.Function.Name != "" {
				cur.Name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				cur.Arguments += tc.Function.Arguments
			}
		}
		if resp.Choices[0].FinishReason == gopenai.FinishReasonToolCalls {
			out <- &agent.CompletionChunk{Done: true, ToolCalls: flushCalls(calls)}
			return
		}
	}
}

func flushCalls(calls map[int]*models.ToolCall) []models.ToolCall {
	out := make([]models.ToolCall, 0, len(calls))
	for _, c := range calls {
		if c.ID != "" && c.Name != "" {
			out = append(out, *c)
		}
	}
	return out
}

func convertMessages(msgs []models.Message, system string) []gopenai.ChatCompletionMessage {
	out := make([]gopenai.ChatCompletionMessage, 0, len(msgs)+1)
	if system != "" {
		out = append(out, gopenai.ChatCompletionMessage{Role: gopenai.ChatMessageRoleSystem, Content: system})
	}
	for _, m := range msgs {
		switch m.Role {
		case models.RoleUser:
			out = append(out, gopenai.ChatCompletionMessage{Role: gopenai.ChatMessageRoleUser, Content: m.Content})
		case models.RoleAssistant:
			msg := gopenai.ChatCompletionMessage{Role: gopenai.ChatMessageRoleAssistant, Content: m.Content}
			for _, tc := range m.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, gopenai.ToolCall{
					ID:   tc.ID,
					Type: gopenai.ToolTypeFunction,
					Function: gopenai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			out = append(out, msg)
		case models.RoleTool:
			out = append(out, gopenai.ChatCompletionMessage{
				Role:       gopenai.ChatMessageRoleTool,
				Content:    m.Content,
				ToolCallID: m.ToolCallID,
			})
		}
	}
	return out
}

func convertTools(schemas []models.ToolSchema) []gopenai.Tool {
	out := make([]gopenai.Tool, len(schemas))
	for i, s := range schemas {
		out[i] = gopenai.Tool{
			Type: gopenai.ToolTypeFunction,
			Function: &gopenai.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  s.Parameters,
			},
		}
	}
	return out
}
