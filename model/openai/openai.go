// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API. NewOllama targets an Ollama server through its
// OpenAI-compatible endpoint.
package openai

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
)

// DefaultOllamaBaseURL is the OpenAI-compatible endpoint of a local Ollama.
const DefaultOllamaBaseURL = "http://localhost:11434/v1/"

// Options configure the OpenAI model adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// Provider is reported by Name() as "<provider>:<model>".
	Provider string
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client. The API key
// is read from OPENAI_API_KEY unless passed through client options.
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewOllama creates a model served by Ollama. An empty baseURL uses
// DefaultOllamaBaseURL.
func NewOllama(baseURL, modelName string, optFns ...func(o *Options)) *Model {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	client := openai.NewClient(option.WithBaseURL(baseURL), option.WithAPIKey("ollama"))
	fns := append([]func(o *Options){func(o *Options) {
		o.Model = modelName
		o.Provider = "ollama"
	}}, optFns...)
	return NewModelFromClient(&client, fns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		Provider:            "openai",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate sends a non-streaming chat completion.
func (m *Model) Generate(ctx context.Context, messages []core.Message, files []core.File) (*core.Response, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(messages, files),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, goerr.Wrap(err, "openai api error", goerr.V("model", m.opts.Model))
	}
	if len(resp.Choices) == 0 {
		return nil, goerr.New("no choices returned", goerr.V("model", m.opts.Model))
	}

	ch0 := resp.Choices[0]
	return &core.Response{
		Content: ch0.Message.Content,
		Metadata: map[string]string{
			"provider":      m.opts.Provider,
			"model":         resp.Model,
			"finish_reason": ch0.FinishReason,
		},
	}, nil
}

// Name implements model.Model.
func (m *Model) Name() string { return m.opts.Provider + ":" + m.opts.Model }

// buildMessages converts prompt messages into OpenAI chat messages. Tool
// output is replayed as a user message; image files are attached to the last
// user message as data URLs.
func buildMessages(msgs []core.Message, files []core.File) []openai.ChatCompletionMessageParamUnion {
	lastUser := -1
	for i, m := range msgs {
		if m.Role == core.RoleUser {
			lastUser = i
		}
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		case core.RoleTool:
			messages = append(messages, openai.UserMessage("Tool output: "+m.Content))
		default:
			if i == lastUser && hasImages(files) {
				messages = append(messages, openai.UserMessage(contentParts(m.Content, files)))
				continue
			}
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	return messages
}

func hasImages(files []core.File) bool {
	for _, f := range files {
		if strings.HasPrefix(f.MimeType, "image/") {
			return true
		}
	}
	return false
}

func contentParts(text string, files []core.File) []openai.ChatCompletionContentPartUnionParam {
	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(text)}
	for _, f := range files {
		if !strings.HasPrefix(f.MimeType, "image/") {
			continue
		}
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: DataURL(f),
		}))
	}
	return parts
}

// DataURL encodes f as a base64 data URL.
func DataURL(f core.File) string {
	return "data:" + f.MimeType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

var _ model.Model = (*Model)(nil)
