package agent

import (
	"context"
	"strings"

	"github.com/hupe1980/agentkit/tool"
	"github.com/hupe1980/agentkit/tool/mcp"
)

// ProviderName derives the provider from a tool name: the part before the
// first '.', or "agent" when that part is blank.
func ProviderName(name string) string {
	provider, _, _ := strings.Cut(name, ".")
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return "agent"
	}
	return provider
}

type agentTool struct {
	agent          *Agent
	spec           tool.Spec
	provider       string
	defaultSession string
}

// AsTool exposes the agent as a tool. Callers pass a required "instruction"
// and an optional "session_id"; without one, turns go to the session
// "<provider>.session".
func (a *Agent) AsTool(name, description string) tool.Tool {
	provider := ProviderName(name)
	return &agentTool{
		agent:          a,
		provider:       provider,
		defaultSession: provider + ".session",
		spec: tool.Spec{
			Name:        name,
			Description: description,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"instruction": map[string]any{
						"type":        "string",
						"description": "The instruction or query for the agent.",
					},
					"session_id": map[string]any{
						"type":        "string",
						"description": "Optional session id; defaults to the provider-derived session.",
					},
				},
				"required": []string{"instruction"},
			},
		},
	}
}

func (t *agentTool) Spec() tool.Spec { return t.spec }

func (t *agentTool) Invoke(ctx context.Context, req tool.Request) (*tool.Response, error) {
	instruction, _ := req.String("instruction")
	if strings.TrimSpace(instruction) == "" {
		return nil, tool.NewToolError(t.spec.Name, "missing or invalid 'instruction'", tool.CodeValidation)
	}

	sessionID, _ := req.String("session_id")
	if strings.TrimSpace(sessionID) == "" {
		sessionID = t.defaultSession
	}

	content, err := t.agent.Generate(ctx, sessionID, instruction)
	if err != nil {
		return nil, &tool.ToolError{Tool: t.spec.Name, Message: err.Error(), Code: tool.CodeExecution}
	}
	return &tool.Response{
		Content:  content,
		Metadata: map[string]string{"provider": t.provider, "session_id": sessionID},
	}, nil
}

// Publish registers the agent as a tool on an in-process MCP transport so
// other agents can import it with mcp.RegisterTools. Pass
// mcp.DefaultTransport() to use the process-wide transport.
func (a *Agent) Publish(t *mcp.Transport, name, description string) error {
	return t.Register(a.AsTool(name, description))
}

type subAgent struct {
	agent             *Agent
	name, description string
}

// AsSubAgent adapts the agent to tool.SubAgent. Each Run uses the session
// ProviderName(name)+".session", so "writer.v2" runs in "writer.session".
func (a *Agent) AsSubAgent(name, description string) tool.SubAgent {
	return &subAgent{agent: a, name: name, description: description}
}

func (s *subAgent) Name() string        { return s.name }
func (s *subAgent) Description() string { return s.description }

func (s *subAgent) Run(ctx context.Context, input string) (string, error) {
	return s.agent.Generate(ctx, ProviderName(s.name)+".session", input)
}
