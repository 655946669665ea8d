// Package agentkit provides a high-level façade over the agent, memory and
// tool packages. Most applications interact with this package by:
//  1. Creating an agent via New() with a model.Model (optionally overriding the
//     default in-memory store, window or logger)
//  2. Registering tools on the agent's catalog
//  3. Calling Generate with a session id per conversation
//
// All defaults are safe for local development and testing; production
// deployments typically supply a durable memory store and a structured logger.
package agentkit

import (
	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/memory"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

// Options configures the agent built by New.
type Options struct {
	// MemoryStore (defaults to memory.InMemoryStore if nil)
	MemoryStore core.MemoryStore

	// Window bounds the short-term cache of every session.
	Window int

	// Catalog (defaults to an empty catalog if nil)
	Catalog *tool.Catalog

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Agent carries additional agent options applied after the ones above.
	Agent []func(o *agent.Options)
}

// New creates an agent for m. Any unset service is initialized with an
// in-memory implementation.
func New(m model.Model, optFns ...func(o *Options)) *agent.Agent {
	opts := Options{
		Window: memory.DefaultWindow,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MemoryStore == nil {
		opts.MemoryStore = memory.NewInMemoryStore()
	}
	if opts.Catalog == nil {
		opts.Catalog = tool.NewCatalog(func(o *tool.CatalogOptions) { o.Logger = opts.Logger })
	}

	mem := memory.NewSessionMemory(opts.MemoryStore, func(o *memory.Options) {
		o.Window = opts.Window
		o.Logger = opts.Logger
	})

	agentOpts := append([]func(o *agent.Options){
		agent.WithCatalog(opts.Catalog),
		agent.WithLogger(opts.Logger),
	}, opts.Agent...)

	return agent.New(m, mem, agentOpts...)
}
