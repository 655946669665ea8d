package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
)

func TestMockModel(t *testing.T) {
	m := NewMockModel("mock")
	m.AddResponse("ping", "pong")

	resp, err := m.Generate(context.Background(), []core.Message{
		core.NewMessage(core.RoleSystem, "be brief"),
		core.NewMessage(core.RoleUser, "ping"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Content)
	assert.Equal(t, "mock", resp.Metadata["model"])

	resp, err = m.Generate(context.Background(), []core.Message{core.NewMessage(core.RoleUser, "other")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: other", resp.Content)

	_, err = m.Generate(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestMockModel_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockModel("mock").Generate(ctx, []core.Message{core.NewMessage(core.RoleUser, "x")}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitSystem(t *testing.T) {
	system, rest := SplitSystem([]core.Message{
		core.NewMessage(core.RoleSystem, "a"),
		core.NewMessage(core.RoleUser, "u"),
		core.NewMessage(core.RoleSystem, ""),
		core.NewMessage(core.RoleAssistant, "x"),
	})
	assert.Equal(t, []string{"a"}, system)
	require.Len(t, rest, 2)
	assert.Equal(t, core.RoleUser, rest[0].Role)
	assert.Equal(t, core.RoleAssistant, rest[1].Role)
}
