// Package anthropic adapts Anthropic's Claude Messages API to
// agent.LLMProvider.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Bbeierle12/Agent-Shell/internal/agent"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// Config configures a Provider.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

// Provider implements agent.LLMProvider against Anthropic's Messages API.
type Provider struct {
	client       anthropic.Client
	defaultModel string
}

// New builds a Provider. APIKey is required.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "claude-sonnet-4-20250514"
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Provider{client: anthropic.NewClient(opts...), defaultModel: cfg.DefaultModel}, nil
}

func (p *Provider) Name() string { return "anthropic" }

// Complete streams a response, converting Anthropic's SSE message events
// into agent.CompletionChunk values.
func (p *Provider) Complete(ctx context.Context, req *agent.CompletionRequest) (<-chan *agent.CompletionChunk, error) {
	params, err := p.buildParams(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	out := make(chan *agent.CompletionChunk, 16)

	go func() {
		defer close(out)
		var toolCalls []models.ToolCall
		var current *models.ToolCall
		var currentArgs []byte

		for stream.Next() {
			event := stream.Current()
			switch event.Type {
			case "content_block_start":
				block := event.AsContentBlockStart().ContentBlock
				if block.Type == "tool_use" {
					tu := block.AsToolUse()
					current = &models.ToolCall{ID: tu.ID, Name: tu.Name}
					currentArgs = currentArgs[:0]
				}
			case "content_block_delta":
				delta := event.AsContentBlockDelta().Delta
				switch delta.Type {
				case "text_delta":
					if text := delta.AsTextDelta().Text; text != "" {
						out <- &agent.CompletionChunk{Text: text}
					}
				case "input_json_delta":
					currentArgs = append(currentArgs, delta.AsInputJSONDelta().PartialJSON...)
				}
			case "content_block_stop":
				if current != nil {
					current.Arguments = string(currentArgs)
					toolCalls = append(toolCalls, *current)
					current = nil
				}
			case "message_stop":
				out <- &agent.CompletionChunk{Done: true, ToolCalls: toolCalls}
				return
			}
		}
		if err := stream.Err(); err != nil {
			out <- &agent.CompletionChunk{Err: fmt.Errorf("anthropic: stream: %w", err)}
			return
		}
		out <- &agent.CompletionChunk{Done: true, ToolCalls: toolCalls}
	}()

	return out, nil
}

func (p *Provider) buildParams(req *agent.CompletionRequest) (anthropic.MessageNewParams, error) {
	messages, err := convertMessages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		tools, err := convertTools(req.Tools)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		params.Tools = tools
	}
	return params, nil
}

func convertMessages(msgs []models.Message) ([]anthropic.MessageParam, error) {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case models.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case models.RoleAssistant:
			blocks := []anthropic.ContentBlockParamUnion{}
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var input map[string]any
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &input); err != nil {
						return nil, fmt.Errorf("tool call %s: %w", tc.ID, err)
					}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		case models.RoleTool:
			out = append(out, anthropic.NewUserMessage(anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false)))
		}
	}
	return out, nil
}

func convertTools(schemas []models.ToolSchema) ([]anthropic.ToolUnionParam, error) {
	out := make([]anthropic.ToolUnionParam, 0, len(schemas))
	for _, s := range schemas {
		var params anthropic.ToolInputSchemaParam
		if len(s.Parameters) > 0 {
			if err := json.Unmarshal(s.Parameters, &params); err != nil {
				return nil, fmt.Errorf("tool %s: schema: %w", s.Name, err)
			}
		}
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        s.Name,
				Description: anthropic.String(s.Description),
				InputSchema: params,
			},
		})
	}
	return out, nil
}
