package tool

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
)

// CatalogOptions configures a Catalog.
type CatalogOptions struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

type entry struct {
	tool Tool
	spec Spec
}

// Catalog is a thread-safe name → tool registry. Keys are the lower-cased,
// trimmed tool names; registration order is preserved for enumeration and a
// name can only be registered once.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string
	logger  logging.Logger
}

// NewCatalog creates an empty catalog.
func NewCatalog(optFns ...func(o *CatalogOptions)) *Catalog {
	opts := CatalogOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Catalog{entries: map[string]entry{}, logger: logging.OrNoOp(opts.Logger)}
}

// NormalizeName returns the lookup key for a tool name.
func NormalizeName(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Register adds t under its normalized spec name. Empty names fail with
// core.ErrConfig, already registered names with core.ErrDuplicate.
func (c *Catalog) Register(t Tool) error {
	spec := t.Spec()
	key := NormalizeName(spec.Name)
	if key == "" {
		return core.NewError(core.ErrConfig, "catalog.register", "", goerr.New("tool name is empty"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		return core.NewError(core.ErrDuplicate, "catalog.register", "", goerr.New("tool already registered", goerr.V("name", spec.Name)))
	}
	c.entries[key] = entry{tool: t, spec: spec}
	c.order = append(c.order, key)
	c.logger.Debug("catalog.register", "tool", spec.Name)
	return nil
}

// MustRegister is like Register but panics on error. Intended for static setup.
func (c *Catalog) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := c.Register(t); err != nil {
			panic(err)
		}
	}
}

// Lookup finds a tool by case-insensitive, trimmed name.
func (c *Catalog) Lookup(name string) (Tool, Spec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[NormalizeName(name)]
	if !ok {
		return nil, Spec{}, false
	}
	return e.tool, e.spec, true
}

// Invoke looks up and calls a tool. A missing tool yields core.ErrToolNotFound;
// any error raised by the tool itself yields core.ErrToolExecution.
func (c *Catalog) Invoke(ctx context.Context, name string, req Request) (*Response, error) {
	t, spec, ok := c.Lookup(name)
	if !ok {
		return nil, core.NewError(core.ErrToolNotFound, "catalog.invoke", req.SessionID, goerr.New("unknown tool", goerr.V("name", name)))
	}

	start := time.Now()
	resp, err := t.Invoke(ctx, req)
	logging.ToolCall(c.logger, spec.Name, time.Since(start), err)
	if err != nil {
		return nil, core.NewError(core.ErrToolExecution, "catalog.invoke", req.SessionID, err)
	}
	if resp == nil {
		resp = &Response{}
	}
	return resp, nil
}

// Specs returns a snapshot of all specs in registration order.
func (c *Catalog) Specs() []Spec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Spec, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.entries[key].spec)
	}
	return out
}

// Tools returns all registered tools in registration order.
func (c *Catalog) Tools() []Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Tool, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.entries[key].tool)
	}
	return out
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
