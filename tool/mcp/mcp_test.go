package mcp

import (
	"context"
	"errors"
	"testing"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

func upperTool() tool.Tool {
	return tool.NewFunctionTool("shout", "Upper-cases text", map[string]any{
		"type":       "object",
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
		"required":   []string{"text"},
	}, func(_ context.Context, req tool.Request) (any, error) {
		s, _ := req.String("text")
		if s == "fail" {
			return nil, errors.New("refused")
		}
		return s + "!", nil
	})
}

// -------------------- Transport Tests --------------------

func TestTransport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tr := NewTransport()
	require.NoError(t, tr.Register(upperTool()))
	assert.ErrorIs(t, tr.Register(upperTool()), core.ErrDuplicate)

	cli, err := tr.Client(ctx)
	require.NoError(t, err)
	defer cli.Close()

	catalog := tool.NewCatalog()
	n, err := RegisterTools(ctx, catalog, cli)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, spec, ok := catalog.Lookup("SHOUT")
	require.True(t, ok)
	assert.Equal(t, "Upper-cases text", spec.Description)
	assert.Equal(t, "object", spec.InputSchema["type"])

	resp, err := catalog.Invoke(ctx, "shout", tool.Request{SessionID: "s1", Arguments: map[string]any{"text": "hey"}})
	require.NoError(t, err)
	assert.Equal(t, "hey!", resp.Content)
	assert.Equal(t, "mcp", resp.Metadata["provider"])

	_, err = catalog.Invoke(ctx, "shout", tool.Request{SessionID: "s1", Arguments: map[string]any{"text": "fail"}})
	assert.ErrorIs(t, err, core.ErrToolExecution)
}

func TestDefaultTransport_Once(t *testing.T) {
	assert.Same(t, DefaultTransport(), DefaultTransport())
}

// -------------------- RegisterTools Tests --------------------

type stubCaller struct {
	tools  []mcpproto.Tool
	result *mcpproto.CallToolResult
	err    error
	last   mcpproto.CallToolRequest
}

func (s *stubCaller) ListTools(context.Context, mcpproto.ListToolsRequest) (*mcpproto.ListToolsResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &mcpproto.ListToolsResult{Tools: s.tools}, nil
}

func (s *stubCaller) CallTool(_ context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	s.last = req
	return s.result, nil
}

func TestRegisterTools_ErrorResult(t *testing.T) {
	ctx := context.Background()
	stub := &stubCaller{
		tools:  []mcpproto.Tool{mcpproto.NewTool("lookup", mcpproto.WithDescription("Looks things up"))},
		result: mcpproto.NewToolResultError("backend down"),
	}

	catalog := tool.NewCatalog()
	_, err := RegisterTools(ctx, catalog, stub)
	require.NoError(t, err)

	_, err = catalog.Invoke(ctx, "lookup", tool.Request{Arguments: map[string]any{"q": "x"}})
	var toolErr *tool.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "backend down", toolErr.Message)
	assert.Equal(t, "lookup", stub.last.Params.Name)
}

func TestRegisterTools_ListFailure(t *testing.T) {
	_, err := RegisterTools(context.Background(), tool.NewCatalog(), &stubCaller{err: errors.New("offline")})
	assert.Error(t, err)
}

func TestRegisterTools_DuplicateStops(t *testing.T) {
	catalog := tool.NewCatalog()
	catalog.MustRegister(upperTool())
	stub := &stubCaller{tools: []mcpproto.Tool{mcpproto.NewTool("shout")}}

	n, err := RegisterTools(context.Background(), catalog, stub)
	assert.ErrorIs(t, err, core.ErrDuplicate)
	assert.Equal(t, 0, n)
}
