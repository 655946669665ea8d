package mcp

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mark3labs/mcp-go/client"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

const (
	serverName    = "agentkit"
	serverVersion = "0.1.0"
)

// Transport is an in-process MCP server hosting agentkit tools.
type Transport struct {
	srv *server.MCPServer

	mu    sync.Mutex
	names map[string]struct{}
}

// NewTransport creates an empty in-process transport.
func NewTransport() *Transport {
	return &Transport{
		srv:   server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(true)),
		names: map[string]struct{}{},
	}
}

var (
	defaultOnce      sync.Once
	defaultTransport *Transport
)

// DefaultTransport returns the process-wide transport, creating it on first
// use. Prefer passing an explicit *Transport where possible.
func DefaultTransport() *Transport {
	defaultOnce.Do(func() {
		defaultTransport = NewTransport()
	})
	return defaultTransport
}

// Register publishes t on the server. Names follow catalog normalization and
// may only be published once.
func (tr *Transport) Register(t tool.Tool) error {
	spec := t.Spec()
	key := tool.NormalizeName(spec.Name)
	if key == "" {
		return core.NewError(core.ErrConfig, "mcp.register", "", goerr.New("tool name is empty"))
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if _, exists := tr.names[key]; exists {
		return core.NewError(core.ErrDuplicate, "mcp.register", "", goerr.New("tool already published", goerr.V("name", spec.Name)))
	}

	schema, err := json.Marshal(spec.InputSchema)
	if err != nil || spec.InputSchema == nil {
		schema = json.RawMessage(`{"type":"object"}`)
	}

	tr.srv.AddTool(mcpproto.NewToolWithRawSchema(spec.Name, spec.Description, schema), handler(t))
	tr.names[key] = struct{}{}
	return nil
}

func handler(t tool.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
		sessionID, _ := req.GetArguments()["session_id"].(string)
		resp, err := t.Invoke(ctx, tool.Request{SessionID: sessionID, Arguments: req.GetArguments()})
		if err != nil {
			return mcpproto.NewToolResultError(err.Error()), nil
		}
		return mcpproto.NewToolResultText(resp.Content), nil
	}
}

// Client returns an initialized in-process client connected to the transport.
// Callers own the client and should Close it.
func (tr *Transport) Client(ctx context.Context) (*client.Client, error) {
	cli, err := client.NewInProcessClient(tr.srv)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create in-process client")
	}

	if err := cli.Start(ctx); err != nil {
		_ = cli.Close()
		return nil, goerr.Wrap(err, "failed to start client")
	}

	req := mcpproto.InitializeRequest{}
	req.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION
	req.Params.Capabilities = mcpproto.ClientCapabilities{}
	req.Params.ClientInfo = mcpproto.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}

	if _, err := cli.Initialize(ctx, req); err != nil {
		_ = cli.Close()
		return nil, goerr.Wrap(err, "failed to initialize client")
	}

	return cli, nil
}

// Server exposes the underlying MCP server, e.g. to serve it over stdio.
func (tr *Transport) Server() *server.MCPServer { return tr.srv }
