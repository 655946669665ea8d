package tool

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hupe1980/agentkit/core"
)

// SubAgent is a delegated worker that turns an instruction into text.
type SubAgent interface {
	Name() string
	Description() string
	Run(ctx context.Context, input string) (string, error)
}

// SubAgentDirectory registers sub-agents under normalized names, with the
// same empty/duplicate rules and ordering as Catalog.
type SubAgentDirectory struct {
	mu     sync.RWMutex
	agents map[string]SubAgent
	order  []string
}

// NewSubAgentDirectory creates an empty directory.
func NewSubAgentDirectory() *SubAgentDirectory {
	return &SubAgentDirectory{agents: map[string]SubAgent{}}
}

// Register adds a sub-agent.
func (d *SubAgentDirectory) Register(sa SubAgent) error {
	key := NormalizeName(sa.Name())
	if key == "" {
		return core.NewError(core.ErrConfig, "subagents.register", "", goerr.New("sub-agent name is empty"))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.agents[key]; exists {
		return core.NewError(core.ErrDuplicate, "subagents.register", "", goerr.New("sub-agent already registered", goerr.V("name", sa.Name())))
	}
	d.agents[key] = sa
	d.order = append(d.order, key)
	return nil
}

// Lookup finds a sub-agent by case-insensitive, trimmed name.
func (d *SubAgentDirectory) Lookup(name string) (SubAgent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sa, ok := d.agents[NormalizeName(name)]
	return sa, ok
}

// All returns the sub-agents in registration order.
func (d *SubAgentDirectory) All() []SubAgent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]SubAgent, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.agents[key])
	}
	return out
}

// RegisterAll exposes every sub-agent in the directory as a tool in c.
func (d *SubAgentDirectory) RegisterAll(c *Catalog) error {
	for _, sa := range d.All() {
		if err := c.Register(NewSubAgentTool(sa)); err != nil {
			return err
		}
	}
	return nil
}

type subAgentTool struct {
	sa SubAgent
}

// NewSubAgentTool adapts a SubAgent into a Tool taking a single required
// "input" string argument.
func NewSubAgentTool(sa SubAgent) Tool { return &subAgentTool{sa: sa} }

func (t *subAgentTool) Spec() Spec {
	return Spec{
		Name:        t.sa.Name(),
		Description: t.sa.Description(),
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"input": map[string]any{"type": "string", "description": "Instruction for the sub-agent"},
			},
			"required": []string{"input"},
		},
	}
}

func (t *subAgentTool) Invoke(ctx context.Context, req Request) (*Response, error) {
	input, ok := req.String("input")
	if !ok || input == "" {
		return nil, NewToolError(t.sa.Name(), "missing or invalid 'input'", CodeValidation)
	}
	out, err := t.sa.Run(ctx, input)
	if err != nil {
		return nil, &ToolError{Tool: t.sa.Name(), Message: err.Error(), Code: CodeExecution}
	}
	return &Response{Content: out, Metadata: map[string]string{"provider": "subagent", "subagent": t.sa.Name()}}, nil
}
