// Package gemini provides an implementation of model.Model backed by the
// Google Gen AI SDK (Gemini API or Vertex AI).
package gemini

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
)

// Generator is the subset of the genai client used by Model.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configures the Gemini adapter.
type Options struct {
	Model       string
	Temperature float32
	// Project and Location select Vertex AI instead of the Gemini API.
	Project  string
	Location string
}

// Model wraps genai behind model.Model.
type Model struct {
	gen  Generator
	opts Options
}

func defaultOptions() Options {
	return Options{Model: "gemini-2.5-flash", Temperature: 0.7}
}

// NewModel creates a Gemini model. apiKey is used for the Gemini API backend;
// setting Options.Project switches to Vertex AI.
func NewModel(ctx context.Context, apiKey string, optFns ...func(o *Options)) (*Model, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if opts.Project != "" {
		cfg = &genai.ClientConfig{Project: opts.Project, Location: opts.Location, Backend: genai.BackendVertexAI}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}
	return &Model{gen: client.Models, opts: opts}, nil
}

// NewModelFromGenerator wraps an existing generator, e.g. client.Models.
func NewModelFromGenerator(gen Generator, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{gen: gen, opts: opts}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, messages []core.Message, files []core.File) (*core.Response, error) {
	system, rest := model.SplitSystem(messages)

	config := &genai.GenerateContentConfig{Temperature: genai.Ptr(m.opts.Temperature)}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), "")
	}

	resp, err := m.gen.GenerateContent(ctx, m.opts.Model, buildContents(rest, files), config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content", goerr.V("model", m.opts.Model))
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, goerr.New("no candidates returned", goerr.V("model", m.opts.Model))
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought {
			text.WriteString(part.Text)
		}
	}

	return &core.Response{
		Content: text.String(),
		Metadata: map[string]string{
			"provider":      "gemini",
			"model":         m.opts.Model,
			"finish_reason": string(candidate.FinishReason),
		},
	}, nil
}

// Name implements model.Model.
func (m *Model) Name() string { return "gemini:" + m.opts.Model }

// buildContents maps messages to genai contents. Assistant turns use the
// model role; files are attached inline to the last user turn.
func buildContents(msgs []core.Message, files []core.File) []*genai.Content {
	lastUser := -1
	for i, m := range msgs {
		if m.Role != core.RoleAssistant {
			lastUser = i
		}
	}

	contents := make([]*genai.Content, 0, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case core.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		case core.RoleTool:
			contents = append(contents, genai.NewContentFromText("Tool output: "+m.Content, genai.RoleUser))
		default:
			if i != lastUser || len(files) == 0 {
				contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
				continue
			}
			parts := []*genai.Part{genai.NewPartFromText(m.Content)}
			for _, f := range files {
				parts = append(parts, genai.NewPartFromBytes(f.Data, f.MimeType))
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
		}
	}
	return contents
}

var _ model.Model = (*Model)(nil)
