package code

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

// Plan is the routing decision returned by the model.
type Plan struct {
	Tool      string         `json:"tool,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Code      string         `json:"code,omitempty"`
}

// OrchestratorOptions configures an Orchestrator.
type OrchestratorOptions struct {
	Logger logging.Logger
}

// Orchestrator asks a model whether a prompt can be answered by a single tool
// call or a code snippet, and runs it if so.
type Orchestrator struct {
	engine  Engine
	catalog *tool.Catalog
	model   model.Model
	logger  logging.Logger
}

// NewOrchestrator creates an orchestrator routing prompts over the tools in
// catalog and code run by engine.
func NewOrchestrator(engine Engine, catalog *tool.Catalog, m model.Model, optFns ...func(o *OrchestratorOptions)) *Orchestrator {
	opts := OrchestratorOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{engine: engine, catalog: catalog, model: m, logger: logging.OrNoOp(opts.Logger)}
}

// Route returns the value produced for prompt, or ok=false when the model
// found no route.
func (o *Orchestrator) Route(ctx context.Context, prompt string) (any, bool, error) {
	plan, err := o.Plan(ctx, prompt)
	if err != nil {
		return nil, false, err
	}
	if plan == nil {
		o.logger.Debug("codemode.route.none")
		return nil, false, nil
	}

	switch {
	case plan.Tool != "":
		o.logger.Debug("codemode.route.tool", "tool", plan.Tool)
		resp, err := o.catalog.Invoke(ctx, plan.Tool, tool.Request{SessionID: "codemode", Arguments: plan.Arguments})
		if err != nil {
			return nil, false, err
		}
		return decodeValue(resp.Content), true, nil
	default:
		o.logger.Debug("codemode.route.code")
		ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
		res, err := o.engine.Execute(ctx, plan.Code)
		if err != nil {
			return nil, false, core.NewError(core.ErrToolExecution, "codemode.execute", "", err)
		}
		return res.Value, true, nil
	}
}

// Plan asks the model for a routing decision. A nil plan means no route.
func (o *Orchestrator) Plan(ctx context.Context, prompt string) (*Plan, error) {
	resp, err := o.model.Generate(ctx, []core.Message{core.NewMessage(core.RoleUser, o.routingPrompt(prompt))}, nil)
	if err != nil {
		return nil, core.NewError(core.ErrModel, "codemode.plan", "", goerr.Wrap(err, "routing model failed", goerr.V("model", o.model.Name())))
	}
	return ParsePlan(resp.Content), nil
}

// ParsePlan extracts a plan from a model reply. Code fences are removed first;
// replies without a usable tool or code field yield nil.
func ParsePlan(reply string) *Plan {
	raw, ok := util.ExtractJSON(util.StripCodeFence(reply))
	if !ok {
		return nil
	}
	var p Plan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	p.Tool = strings.TrimSpace(p.Tool)
	if p.Tool == "" && strings.TrimSpace(p.Code) == "" {
		return nil
	}
	if p.Arguments == nil {
		p.Arguments = map[string]any{}
	}
	return &p
}

func (o *Orchestrator) routingPrompt(prompt string) string {
	var b strings.Builder
	b.WriteString("You route user requests to tools. Available tools:\n")
	for _, spec := range o.catalog.Specs() {
		if tool.NormalizeName(spec.Name) == ToolName {
			continue
		}
		schema, _ := json.Marshal(spec.InputSchema)
		fmt.Fprintf(&b, "- %s: %s (arguments: %s)\n", spec.Name, spec.Description, schema)
	}
	b.WriteString("\nIf a single tool answers the request reply with {\"tool\": \"<name>\", \"arguments\": {...}}.\n")
	b.WriteString("If several tools must be chained reply with {\"code\": \"<program>\"}, one `<tool> <json arguments>` call per line.\n")
	b.WriteString("Otherwise reply with {}.\n\nRequest: ")
	b.WriteString(prompt)
	return b.String()
}
