// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
)

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{
		client: &client,
		opts:   opts,
	}
}

// NewModelFromClient creates a new Anthropic model from an existing client
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

// Generate calls the Messages API. System messages are sent on the system
// channel; tool output is replayed as user text.
func (m *Model) Generate(ctx context.Context, messages []core.Message, files []core.File) (*core.Response, error) {
	system, rest := model.SplitSystem(messages)

	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    buildMessages(rest, files),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}
	for _, s := range system {
		params.System = append(params.System, anthropic.TextBlockParam{Text: s})
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, goerr.Wrap(err, "anthropic api error", goerr.V("model", string(m.opts.Model)))
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	finishReason := "stop"
	if resp.StopReason != "" {
		finishReason = string(resp.StopReason)
	}

	return &core.Response{
		Content: text.String(),
		Metadata: map[string]string{
			"provider":      "anthropic",
			"model":         string(resp.Model),
			"finish_reason": finishReason,
		},
	}, nil
}

// Name implements model.Model.
func (m *Model) Name() string { return "anthropic:" + string(m.opts.Model) }

// buildMessages converts prompt messages to Anthropic message format. Images
// are attached to the last user message.
func buildMessages(msgs []core.Message, files []core.File) []anthropic.MessageParam {
	lastUser := -1
	for i, m := range msgs {
		if m.Role != core.RoleAssistant {
			lastUser = i
		}
	}

	messages := make([]anthropic.MessageParam, 0, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		case core.RoleTool:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock("Tool output: "+m.Content)))
		default:
			blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)}
			if i == lastUser {
				for _, f := range files {
					if strings.HasPrefix(f.MimeType, "image/") {
						blocks = append(blocks, anthropic.NewImageBlockBase64(f.MimeType, base64.StdEncoding.EncodeToString(f.Data)))
					}
				}
			}
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		}
	}
	return messages
}

var _ model.Model = (*Model)(nil)
