package main

import (
	"context"
	"os"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"github.com/hupe1980/agentkit"
	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/config"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/memory"
	"github.com/hupe1980/agentkit/memory/chromem"
	"github.com/hupe1980/agentkit/memory/firestore"
	"github.com/hupe1980/agentkit/memory/postgres"
	"github.com/hupe1980/agentkit/memory/sqlite"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/model/anthropic"
	"github.com/hupe1980/agentkit/model/gemini"
	"github.com/hupe1980/agentkit/model/openai"
	"github.com/hupe1980/agentkit/tool"
)

// app holds the services shared by the subcommands.
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	agent   *agent.Agent
	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, logger: newLogger(cfg.Log)}

	m, err := newModel(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}

	store, err := a.newStore(ctx, cfg.Store)
	if err != nil {
		a.close()
		return nil, err
	}

	catalog := tool.NewCatalog(func(o *tool.CatalogOptions) { o.Logger = a.logger })
	catalog.MustRegister(builtinTools()...)

	agentOpts := []func(o *agent.Options){
		agent.WithSystemPrompt(cfg.SystemPrompt),
		agent.WithContextLimit(cfg.ContextLimit),
	}
	if cfg.SerializeSessions {
		agentOpts = append(agentOpts, agent.WithSessionSerialization())
	}
	if codeMode {
		agentOpts = append(agentOpts, agent.WithCodeModeOrchestrator(nil, nil))
	}

	a.agent = agentkit.New(m, func(o *agentkit.Options) {
		o.MemoryStore = store
		o.Window = cfg.Window
		o.Catalog = catalog
		o.Logger = a.logger
		o.Agent = agentOpts
	})

	a.logger.Debug("agentkit ready", "model", m.Name(), "store", cfg.Store.Driver, "tools", catalog.Len())
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newLogger(cfg config.LogConfig) logging.Logger {
	level := logging.ParseLevel(cfg.Level)
	switch cfg.Format {
	case "json":
		zl := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerologLevel(level))
		return logging.NewZerologAdapter(zl)
	case "text":
		return logging.NewRuntimeLogger(&logging.LoggerConfig{
			Level:     level,
			Format:    "text",
			Output:    os.Stderr,
			Component: "agentkit",
		})
	default:
		return logging.NewConsoleLogger(level, os.Stderr)
	}
}

func zerologLevel(l logging.LogLevel) zerolog.Level {
	switch l {
	case logging.LogLevelDebug:
		return zerolog.DebugLevel
	case logging.LogLevelWarn:
		return zerolog.WarnLevel
	case logging.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func newModel(ctx context.Context, cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		var opts []option.RequestOption
		if cfg.APIKey != "" {
			opts = append(opts, option.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		client := openaisdk.NewClient(opts...)
		return openai.NewModelFromClient(&client, func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = cfg.Temperature
		}), nil
	case config.ProviderOllama:
		name := cfg.Name
		if name == "" {
			name = "llama3"
		}
		return openai.NewOllama(cfg.BaseURL, name, func(o *openai.Options) { o.Temperature = cfg.Temperature }), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
			o.APIKey = cfg.APIKey
			o.Temperature = cfg.Temperature
		}), nil
	case config.ProviderGemini:
		return gemini.NewModel(ctx, cfg.APIKey, func(o *gemini.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = float32(cfg.Temperature)
			o.Project = cfg.Project
			o.Location = cfg.Location
		})
	default:
		return model.NewMockModel("mock"), nil
	}
}

func (a *app) newStore(ctx context.Context, cfg config.StoreConfig) (core.MemoryStore, error) {
	var store core.MemoryStore

	switch cfg.Driver {
	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, cfg.DSN, func(o *sqlite.Options) { o.Logger = a.logger })
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		store = s
	case config.StorePostgres:
		s, err := postgres.Open(ctx, cfg.DSN, func(o *postgres.Options) {
			if cfg.Collection != "" {
				o.Table = cfg.Collection
			}
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		store = s
	case config.StoreFirestore:
		s, err := firestore.Open(ctx, cfg.DSN, cfg.Database, func(o *firestore.Options) {
			if cfg.Collection != "" {
				o.Collection = cfg.Collection
			}
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		store = s
	case config.StoreChromem:
		store = chromem.New(func(o *chromem.Options) { o.Logger = a.logger })
	default:
		store = memory.NewInMemoryStore()
	}

	if cfg.CacheSize > 0 {
		cached, err := memory.NewCachedStore(store, func(o *memory.CacheOptions) { o.MaxEntries = cfg.CacheSize })
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, cached.Close)
		store = cached
	}
	return store, nil
}

func builtinTools() []tool.Tool {
	echo := tool.NewFunctionTool("echo", "Return the given text unchanged.", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{"type": "string", "description": "Text to echo"},
		},
		"required": []string{"input"},
	}, func(_ context.Context, req tool.Request) (any, error) {
		s, _ := req.String("input")
		return s, nil
	}, func(o *tool.FunctionOptions) {
		o.Examples = []map[string]any{{"input": "hello"}}
	})

	clock := tool.NewFunctionTool("clock", "Return the current UTC time in RFC 3339 format.", map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}, func(context.Context, tool.Request) (any, error) {
		return time.Now().UTC().Format(time.RFC3339), nil
	})

	return []tool.Tool{echo, clock}
}
