package code

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hupe1980/agentkit/tool"
)

// ToolName is the catalog name of the code execution tool.
const ToolName = "codemode.run_code"

type runCodeTool struct {
	engine Engine
}

// NewTool exposes engine as the codemode.run_code tool. It requires a "code"
// argument and accepts an optional "timeout" in milliseconds.
func NewTool(engine Engine) tool.Tool { return &runCodeTool{engine: engine} }

func (t *runCodeTool) Spec() tool.Spec {
	return tool.Spec{
		Name:        ToolName,
		Description: "Execute a code snippet that chains the available tools and return its result.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"code":    map[string]any{"type": "string", "description": "Program to execute"},
				"timeout": map[string]any{"type": "integer", "description": "Timeout in milliseconds"},
			},
			"required": []string{"code"},
		},
		Examples: []map[string]any{
			{"code": `echo {"input": "hello"}`},
		},
	}
}

func (t *runCodeTool) Invoke(ctx context.Context, req tool.Request) (*tool.Response, error) {
	src, ok := req.String("code")
	if !ok {
		return nil, tool.NewToolError(ToolName, "codemode.run_code requires `code`", tool.CodeValidation)
	}

	timeout := DefaultTimeout
	switch ms := req.Arguments["timeout"].(type) {
	case float64:
		if ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}
	case int:
		if ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := t.engine.Execute(ctx, src)
	if err != nil {
		return nil, &tool.ToolError{Tool: ToolName, Message: err.Error(), Code: tool.CodeExecution}
	}

	data, err := json.Marshal(res)
	if err != nil {
		return nil, &tool.ToolError{Tool: ToolName, Message: err.Error(), Code: tool.CodeExecution}
	}
	return &tool.Response{Content: string(data), Metadata: map[string]string{"provider": "codemode"}}, nil
}
