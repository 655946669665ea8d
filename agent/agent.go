package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/agentkit/code"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/memory"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tokens"
	"github.com/hupe1980/agentkit/tool"
)

const (
	// DefaultSystemPrompt is used when Options.SystemPrompt is left untouched.
	DefaultSystemPrompt = "You are a helpful AI assistant. Provide concise, accurate answers and explain when you use tools."
	// DefaultContextLimit is the token budget for conversation history.
	DefaultContextLimit = 8192
)

// Options configures an Agent.
//
// Use functional options with New to override defaults.
type Options struct {
	// SystemPrompt is prepended to every prompt. Empty disables it.
	SystemPrompt string
	// ContextLimit bounds the estimated tokens of history included in a prompt.
	ContextLimit int
	// Catalog holds the tools available to InvokeTool and resolvers.
	Catalog *tool.Catalog
	// TokenCounter estimates record cost (defaults to tokens.Heuristic).
	TokenCounter tokens.Counter
	// Resolvers are tried in order before the model.
	Resolvers []Resolver
	// SerializeSessions runs generate calls of the same session one at a time.
	SerializeSessions bool
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	codeEngine   code.Engine
	orchestrate  bool
	routingModel model.Model
}

// WithSystemPrompt sets the system prompt.
func WithSystemPrompt(prompt string) func(o *Options) {
	return func(o *Options) { o.SystemPrompt = prompt }
}

// WithContextLimit sets the history token budget.
func WithContextLimit(limit int) func(o *Options) {
	return func(o *Options) { o.ContextLimit = limit }
}

// WithCatalog shares an existing tool catalog with the agent.
func WithCatalog(c *tool.Catalog) func(o *Options) {
	return func(o *Options) { o.Catalog = c }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithTokenCounter replaces the token estimator used for the history budget.
func WithTokenCounter(c tokens.Counter) func(o *Options) {
	return func(o *Options) { o.TokenCounter = c }
}

// WithResolvers appends resolvers to the shortcut chain.
func WithResolvers(rs ...Resolver) func(o *Options) {
	return func(o *Options) { o.Resolvers = append(o.Resolvers, rs...) }
}

// WithSessionSerialization serializes concurrent generate calls per session.
func WithSessionSerialization() func(o *Options) {
	return func(o *Options) { o.SerializeSessions = true }
}

// WithCodeMode exposes engine as the codemode.run_code tool.
func WithCodeMode(engine code.Engine) func(o *Options) {
	return func(o *Options) { o.codeEngine = engine }
}

// WithCodeModeOrchestrator enables code mode plus the routing orchestrator,
// which is tried after any explicit resolvers. A nil engine runs scripts over
// the agent's catalog; a nil model reuses the agent's primary model.
func WithCodeModeOrchestrator(engine code.Engine, routing model.Model) func(o *Options) {
	return func(o *Options) {
		o.codeEngine = engine
		o.orchestrate = true
		o.routingModel = routing
	}
}

// Agent is the generation orchestrator. It is safe for concurrent use.
type Agent struct {
	model        model.Model
	memory       *memory.SessionMemory
	catalog      *tool.Catalog
	systemPrompt string
	contextLimit int
	counter      tokens.Counter
	resolvers    []Resolver
	logger       logging.Logger

	serialize bool
	locks     sync.Map // session id -> *sync.Mutex
}

// New creates an agent backed by m and mem.
func New(m model.Model, mem *memory.SessionMemory, optFns ...func(o *Options)) *Agent {
	opts := Options{
		SystemPrompt: DefaultSystemPrompt,
		ContextLimit: DefaultContextLimit,
		TokenCounter: tokens.Heuristic{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Catalog == nil {
		opts.Catalog = tool.NewCatalog(func(o *tool.CatalogOptions) { o.Logger = opts.Logger })
	}
	if opts.TokenCounter == nil {
		opts.TokenCounter = tokens.Heuristic{}
	}
	logger := logging.OrNoOp(opts.Logger)

	a := &Agent{
		model:        m,
		memory:       mem,
		catalog:      opts.Catalog,
		systemPrompt: opts.SystemPrompt,
		contextLimit: opts.ContextLimit,
		counter:      opts.TokenCounter,
		resolvers:    append([]Resolver(nil), opts.Resolvers...),
		logger:       logger,
		serialize:    opts.SerializeSessions,
	}

	engine := opts.codeEngine
	if engine == nil && opts.orchestrate {
		engine = code.NewScriptEngine(a.catalog)
	}
	if engine != nil {
		if err := a.catalog.Register(code.NewTool(engine)); err != nil && !errors.Is(err, core.ErrDuplicate) {
			logger.Warn("agent.codemode.register_failed", "error", err)
		}
	}
	if opts.orchestrate {
		routing := opts.routingModel
		if routing == nil {
			routing = m
		}
		orch := code.NewOrchestrator(engine, a.catalog, routing, func(o *code.OrchestratorOptions) { o.Logger = logger })
		a.resolvers = append(a.resolvers, NewOrchestratorResolver(orch))
	}

	return a
}

// Generate answers input within session sessionID.
func (a *Agent) Generate(ctx context.Context, sessionID, input string) (string, error) {
	resp, err := a.generate(ctx, sessionID, input, nil)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateWithFiles answers input with attachments. Resolvers are skipped
// whenever files are present.
func (a *Agent) GenerateWithFiles(ctx context.Context, sessionID, input string, files []core.File) (string, error) {
	resp, err := a.generate(ctx, sessionID, input, files)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateTOON answers input and returns the response (content and metadata)
// in TOON encoding.
func (a *Agent) GenerateTOON(ctx context.Context, sessionID, input string) (string, error) {
	resp, err := a.generate(ctx, sessionID, input, nil)
	if err != nil {
		return "", err
	}
	return EncodeTOON(resp), nil
}

func (a *Agent) generate(ctx context.Context, sessionID, input string, files []core.File) (*core.Response, error) {
	if a.serialize {
		mu := a.sessionLock(sessionID)
		mu.Lock()
		defer mu.Unlock()
	}

	userRecord := core.NewMemoryRecord(sessionID, core.RoleUser, input)
	if err := a.memory.Store(ctx, userRecord); err != nil {
		return nil, err
	}

	if len(files) == 0 {
		resp, ok, err := a.resolve(ctx, sessionID, input)
		if err != nil {
			return nil, err
		}
		if ok {
			if err := a.store(ctx, sessionID, core.RoleAssistant, resp.Content, resp.Metadata); err != nil {
				return nil, err
			}
			return resp, nil
		}
	}

	messages := a.buildPrompt(sessionID, input, userRecord.ID)

	start := time.Now()
	resp, err := a.model.Generate(ctx, messages, files)
	logging.ModelCall(a.logger, a.model.Name(), a.promptTokens(messages), time.Since(start), err)
	if err != nil {
		return nil, core.NewError(core.ErrModel, "agent.generate", sessionID, err)
	}

	if err := a.store(ctx, sessionID, core.RoleAssistant, resp.Content, nil); err != nil {
		return nil, err
	}
	return resp, nil
}

func (a *Agent) resolve(ctx context.Context, sessionID, input string) (*core.Response, bool, error) {
	for _, r := range a.resolvers {
		resp, ok, err := r.Resolve(ctx, sessionID, input)
		if err != nil {
			if core.KindOf(err) == nil {
				err = core.NewError(core.ErrToolExecution, "agent.resolve", sessionID, err)
			}
			return nil, false, err
		}
		if ok && resp != nil {
			a.logger.Debug("agent.resolved", "session_id", sessionID, "source", resp.Metadata["source"])
			return resp, true, nil
		}
	}
	return nil, false, nil
}

func (a *Agent) store(ctx context.Context, sessionID string, role core.Role, content string, metadata map[string]string) error {
	rec := core.NewMemoryRecord(sessionID, role, content)
	if len(metadata) > 0 {
		rec = rec.WithMetadata(metadata)
	}
	return a.memory.Store(ctx, rec)
}

func (a *Agent) sessionLock(sessionID string) *sync.Mutex {
	mu, _ := a.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (a *Agent) promptTokens(messages []core.Message) int {
	n := 0
	for _, m := range messages {
		n += a.counter.Count(m.Content)
	}
	return n
}

// InvokeTool calls a catalog tool and records the call as a tool record
// "Called <name>: <content>" carrying the tool's metadata. Nothing is stored
// when the call fails.
func (a *Agent) InvokeTool(ctx context.Context, sessionID, name string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	resp, err := a.catalog.Invoke(ctx, name, tool.Request{SessionID: sessionID, Arguments: args})
	if err != nil {
		return "", err
	}
	if err := a.store(ctx, sessionID, core.RoleTool, "Called "+name+": "+resp.Content, resp.Metadata); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Flush forces the memory backend to persist buffered writes.
func (a *Agent) Flush(ctx context.Context, _ string) error {
	return a.memory.Flush(ctx)
}

// Tools returns the agent's catalog.
func (a *Agent) Tools() *tool.Catalog { return a.catalog }

// Memory returns the agent's session memory.
func (a *Agent) Memory() *memory.SessionMemory { return a.memory }

// SystemPrompt returns the configured system prompt.
func (a *Agent) SystemPrompt() string { return a.systemPrompt }
