package agent

import (
	"context"

	"github.com/hupe1980/agentkit/code"
	"github.com/hupe1980/agentkit/core"
)

// SourceCodeModeOrchestrator tags replies produced by the code-mode orchestrator.
const SourceCodeModeOrchestrator = "codemode_orchestrator"

// Resolver may answer a turn before the model is consulted. ok=false passes
// the turn on to the next resolver (and finally the model).
type Resolver interface {
	Resolve(ctx context.Context, sessionID, input string) (resp *core.Response, ok bool, err error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, sessionID, input string) (*core.Response, bool, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, sessionID, input string) (*core.Response, bool, error) {
	return f(ctx, sessionID, input)
}

// NewOrchestratorResolver turns a code-mode orchestrator into a resolver. Its
// replies carry metadata source=codemode_orchestrator.
func NewOrchestratorResolver(o *code.Orchestrator) Resolver {
	return ResolverFunc(func(ctx context.Context, _ string, input string) (*core.Response, bool, error) {
		v, ok, err := o.Route(ctx, input)
		if err != nil || !ok {
			return nil, false, err
		}
		return &core.Response{
			Content:  code.FormatValue(v),
			Metadata: map[string]string{"source": SourceCodeModeOrchestrator},
		}, true, nil
	})
}
