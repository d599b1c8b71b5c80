// Package bedrock adapts AWS Bedrock's Converse streaming API to
// agent.LLMProvider.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/Bbeierle12/Agent-Shell/internal/agent"
	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// throttlingCodes are the Bedrock API error codes that represent a
// transient, retryable condition rather than a permanent failure.
var throttlingCodes = map[string]bool{
	"ThrottlingException":         true,
	"ServiceUnavailableException": true,
	"ModelTimeoutException":       true,
	"ModelNotReadyException":      true,
	"InternalServerException":     true,
}

// classifyError wraps a Bedrock API error as a ProviderError, using
// smithy's APIError interface to tell a throttling/availability error
// (transient, worth failing over) from everything else (permanent: bad
// credentials, validation, unsupported model).
func classifyError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &agenterr.ProviderError{
			Provider:  "bedrock",
			Permanent: !throttlingCodes[apiErr.ErrorCode()],
			Message:   apiErr.ErrorMessage(),
			Cause:     err,
		}
	}
	return fmt.Errorf("bedrock: %w", err)
}

// Config configures a Provider.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	DefaultModel    string
}

// Provider implements agent.LLMProvider against the Bedrock Converse
// streaming API.
type Provider struct {
	client       *bedrockruntime.Client
	defaultModel string
}

// New builds a Provider. If AccessKeyID/SecretAccessKey are empty the
// default AWS credential chain (env, shared config, IAM role) is used.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "anthropic.claude-3-sonnet-20240229-v1:0"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("bedrock: failed to load AWS config: %w", err)
	}

	return &Provider{
		client:       bedrockruntime.NewFromConfig(awsCfg),
		defaultModel: cfg.DefaultModel,
	}, nil
}

func (p *Provider) Name() string { return "bedrock" }

func (p *Provider) Complete(ctx context.Context, req *agent.CompletionRequest) (<-chan *agent.CompletionChunk, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	messages, err := convertMessages(req.Messages)
	if err != nil {
		return nil, classifyError(err)
	}

	converseReq := &bedrockruntime.ConverseStreamInput{
		ModelId:  aws.String(model),
		Messages: messages,
	}
	if req.System != "" {
		converseReq.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}
	if req.MaxTokens > 0 {
		converseReq.InferenceConfig = &types.InferenceConfiguration{MaxTokens: aws.Int32(int32(req.MaxTokens))}
	}
	if len(req.Tools) > 0 {
		converseReq.ToolConfig = convertTools(req.Tools)
	}

	stream, err := p.client.ConverseStream(ctx, converseReq)
	if err != nil {
		return nil, classifyError(err)
	}

	out := make(chan *agent.CompletionChunk, 16)
	go processStream(stream, out)
	return out, nil
}

func processStream(stream *bedrockruntime.ConverseStreamOutput, out chan<- *agent.CompletionChunk) {
	defer close(out)
	eventStream := stream.GetStream()
	defer eventStream.Close()

	var current *models.ToolCall
	var args []byte
	var toolCalls []models.ToolCall

	for event := range eventStream.Events() {
		switch ev := event.(type) {
		case *types.ConverseStreamOutputMemberContentBlockStart:
			if tu, ok := ev.Value.Start.(*types.ContentBlockStartMemberToolUse); ok {
				current = &models.ToolCall{ID: aws.ToString(tu.Value.ToolUseId), Name: aws.ToString(tu.Value.Name)}
				args = args[:0]
			}
		case *types.ConverseStreamOutputMemberContentBlockDelta:
			switch delta := ev.Value.Delta.(type) {
			case *types.ContentBlockDeltaMemberText:
				if delta.Value != "" {
					out <- &agent.CompletionChunk{Text: delta.Value}
				}
			case *types.ContentBlockDeltaMemberToolUse:
				if delta.Value.Input != nil {
					args = append(args, *delta.Value.Input...)
				}
			}
		case *types.ConverseStreamOutputMemberContentBlockStop:
			if current != nil {
				current.Arguments = string(args)
				toolCalls = append(toolCalls, *current)
				current = nil
			}
		case *types.ConverseStreamOutputMemberMessageStop:
			out <- &agent.CompletionChunk{Done: true, ToolCalls: toolCalls}
			return
		}
	}
	if err := eventStream.Err(); err != nil {
		out <- &agent.CompletionChunk{Err: fmt.Errorf("bedrock: stream: %w", err)}
		return
	}
	out <- &agent.CompletionChunk{Done: true, ToolCalls: toolCalls}
}

func convertMessages(msgs []models.Message) ([]types.Message, error) {
	out := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case models.RoleUser:
			out = append(out, types.Message{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})
		case models.RoleAssistant:
			var blocks []types.ContentBlock
			if m.Content != "" {
				blocks = append(blocks, &types.ContentBlockMemberText{Value: m.Content})
			}
			for _, tc := range m.ToolCalls {
				var input map[string]any
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &input); err != nil {
						return nil, fmt.Errorf("tool call %s: %w", tc.ID, err)
					}
				}
				blocks = append(blocks, &types.ContentBlockMemberToolUse{
					Value: types.ToolUseBlock{
						ToolUseId: aws.String(tc.ID),
						Name:      aws.String(tc.Name),
						Input:     document.NewLazyDocument(input),
					},
				})
			}
			out = append(out, types.Message{Role: types.ConversationRoleAssistant, Content: blocks})
		case models.RoleTool:
			out = append(out, types.Message{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberToolResult{
					Value: types.ToolResultBlock{
						ToolUseId: aws.String(m.ToolCallID),
						Content:   []types.ToolResultContentBlock{&types.ToolResultContentBlockMemberText{Value: m.Content}},
					},
				}},
			})
		}
	}
	return out, nil
}

func convertTools(schemas []models.ToolSchema) *types.ToolConfiguration {
	tools := make([]types.Tool, 0, len(schemas))
	for _, s := range schemas {
		var schema map[string]any
		if len(s.Parameters) > 0 {
			_ = json.Unmarshal(s.Parameters, &schema)
		}
		tools = append(tools, &types.ToolMemberToolSpec{
			Value: types.ToolSpecification{
				Name:        aws.String(s.Name),
				Description: aws.String(s.Description),
				InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schema)},
			},
		})
	}
	return &types.ToolConfiguration{Tools: tools}
}
