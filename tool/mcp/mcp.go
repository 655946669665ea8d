// Package mcp bridges agentkit tools and the Model Context Protocol.
//
// RegisterTools imports the tools advertised by an MCP server into a
// tool.Catalog. Transport hosts catalog tools (including agents exposed via
// Agent.AsTool) on an in-process MCP server so other agents in the same
// process can reach them through a regular MCP client.
package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	mcpproto "github.com/mark3labs/mcp-go/mcp"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

// Caller is the subset of an MCP client used to import and call remote tools.
// *client.Client from mark3labs/mcp-go satisfies it.
type Caller interface {
	ListTools(ctx context.Context, request mcpproto.ListToolsRequest) (*mcpproto.ListToolsResult, error)
	CallTool(ctx context.Context, request mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error)
}

// RegisterTools lists the tools of c and registers a proxy for each one in
// catalog. It returns the number of tools registered.
func RegisterTools(ctx context.Context, catalog *tool.Catalog, c Caller) (int, error) {
	resp, err := c.ListTools(ctx, mcpproto.ListToolsRequest{})
	if err != nil {
		return 0, core.NewError(core.ErrToolExecution, "mcp.list_tools", "", goerr.Wrap(err, "failed to list tools"))
	}

	n := 0
	for _, t := range resp.Tools {
		if err := catalog.Register(&remoteTool{caller: c, spec: specOf(t)}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func specOf(t mcpproto.Tool) tool.Spec {
	raw := t.RawInputSchema
	if len(raw) == 0 {
		raw, _ = json.Marshal(t.InputSchema)
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil || schema == nil {
		schema = map[string]any{"type": "object"}
	}
	return tool.Spec{Name: t.Name, Description: t.Description, InputSchema: schema}
}

type remoteTool struct {
	caller Caller
	spec   tool.Spec
}

func (t *remoteTool) Spec() tool.Spec { return t.spec }

func (t *remoteTool) Invoke(ctx context.Context, req tool.Request) (*tool.Response, error) {
	call := mcpproto.CallToolRequest{}
	call.Params.Name = t.spec.Name
	call.Params.Arguments = req.Arguments

	res, err := t.caller.CallTool(ctx, call)
	if err != nil {
		return nil, &tool.ToolError{Tool: t.spec.Name, Message: err.Error(), Code: tool.CodeExecution}
	}

	text := textOf(res)
	if res.IsError {
		return nil, &tool.ToolError{Tool: t.spec.Name, Message: text, Code: tool.CodeExecution}
	}
	return &tool.Response{Content: text, Metadata: map[string]string{"provider": "mcp", "tool": t.spec.Name}}, nil
}

func textOf(res *mcpproto.CallToolResult) string {
	parts := make([]string, 0, len(res.Content))
	for _, content := range res.Content {
		if text, ok := content.(mcpproto.TextContent); ok {
			parts = append(parts, text.Text)
		} else if textPtr, ok := content.(*mcpproto.TextContent); ok {
			parts = append(parts, textPtr.Text)
		}
	}
	return strings.Join(parts, "\n")
}
