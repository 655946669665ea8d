package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
)

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages([]core.Message{
		core.NewMessage(core.RoleUser, "hi"),
		core.NewMessage(core.RoleAssistant, "hello"),
		core.NewMessage(core.RoleTool, "42"),
		core.NewMessage(core.RoleUser, "look"),
	}, []core.File{{Name: "a.png", MimeType: "image/png", Data: []byte{1}}})

	require.Len(t, msgs, 4)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	require.NotNil(t, msgs[2].Content[0].OfText)
	assert.Equal(t, "Tool output: 42", msgs[2].Content[0].OfText.Text)

	require.Len(t, msgs[3].Content, 2)
	assert.NotNil(t, msgs[3].Content[1].OfImage)
	assert.Len(t, msgs[0].Content, 1)
}

func TestName(t *testing.T) {
	m := NewModel(func(o *Options) { o.Model = "claude-test" })
	assert.Equal(t, "anthropic:claude-test", m.Name())
}
