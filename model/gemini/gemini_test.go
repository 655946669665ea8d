package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hupe1980/agentkit/core"
)

type mockGenerator struct {
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (m *mockGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.contents = contents
	m.config = config
	return m.resp, m.err
}

func TestGenerate(t *testing.T) {
	gen := &mockGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText("hello there", genai.RoleModel),
			FinishReason: genai.FinishReasonStop,
		}},
	}}
	m := NewModelFromGenerator(gen)

	resp, err := m.Generate(context.Background(), []core.Message{
		core.NewMessage(core.RoleSystem, "be kind"),
		core.NewMessage(core.RoleUser, "hi"),
		core.NewMessage(core.RoleAssistant, "hey"),
		core.NewMessage(core.RoleUser, "what is this"),
	}, []core.File{{Name: "a.png", MimeType: "image/png", Data: []byte{1}}})
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Content)
	assert.Equal(t, "gemini", resp.Metadata["provider"])

	require.NotNil(t, gen.config.SystemInstruction)
	assert.Equal(t, "be kind", gen.config.SystemInstruction.Parts[0].Text)
	require.Len(t, gen.contents, 3)
	assert.Equal(t, string(genai.RoleModel), gen.contents[1].Role)
	require.Len(t, gen.contents[2].Parts, 2)
	assert.Equal(t, "image/png", gen.contents[2].Parts[1].InlineData.MIMEType)
}

func TestGenerate_Errors(t *testing.T) {
	m := NewModelFromGenerator(&mockGenerator{err: errors.New("quota")})
	_, err := m.Generate(context.Background(), []core.Message{core.NewMessage(core.RoleUser, "x")}, nil)
	assert.ErrorContains(t, err, "quota")

	m = NewModelFromGenerator(&mockGenerator{resp: &genai.GenerateContentResponse{}})
	_, err = m.Generate(context.Background(), []core.Message{core.NewMessage(core.RoleUser, "x")}, nil)
	assert.Error(t, err)
}
