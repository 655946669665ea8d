// Package config loads agentkit runtime settings. Values are layered:
// built-in defaults, then an optional YAML file, then AGENTKIT_* environment
// variables.
package config

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentkit/core"
)

// Store drivers.
const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StorePostgres  = "postgres"
	StoreChromem   = "chromem"
	StoreFirestore = "firestore"
)

// Model providers.
const (
	ProviderMock      = "mock"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config is the root of the runtime settings consumed by cmd/agentkit.
type Config struct {
	SystemPrompt string `yaml:"system_prompt" env:"AGENTKIT_SYSTEM_PROMPT"`
	ContextLimit int    `yaml:"context_limit" env:"AGENTKIT_CONTEXT_LIMIT"`
	Window       int    `yaml:"window" env:"AGENTKIT_WINDOW"`
	// MMRLambda weighs relevance against diversity for the /recall command,
	// from 0 (diversity only) to 1 (relevance only).
	MMRLambda float32 `yaml:"mmr_lambda" env:"AGENTKIT_MMR_LAMBDA"`
	// SerializeSessions runs turns of one session one at a time.
	SerializeSessions bool `yaml:"serialize_sessions" env:"AGENTKIT_SERIALIZE_SESSIONS"`

	Model ModelConfig `yaml:"model" envPrefix:"AGENTKIT_MODEL_"`
	Store StoreConfig `yaml:"store" envPrefix:"AGENTKIT_STORE_"`
	Log   LogConfig   `yaml:"log" envPrefix:"AGENTKIT_LOG_"`
}

// ModelConfig selects the model provider and its credentials.
type ModelConfig struct {
	Provider    string  `yaml:"provider" env:"PROVIDER"`
	Name        string  `yaml:"name" env:"NAME"`
	APIKey      string  `yaml:"api_key" env:"API_KEY"`
	BaseURL     string  `yaml:"base_url" env:"BASE_URL"`
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
	// Project selects Vertex AI for the gemini provider.
	Project  string `yaml:"project" env:"PROJECT"`
	Location string `yaml:"location" env:"LOCATION"`
}

// StoreConfig selects the memory backend behind the session memory.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	// DSN is a file path (sqlite), a connection URL (postgres) or a
	// project id (firestore).
	DSN        string `yaml:"dsn" env:"DSN"`
	Collection string `yaml:"collection" env:"COLLECTION"`
	Database   string `yaml:"database" env:"DATABASE"`
	// CacheSize enables the search cache when positive.
	CacheSize int64 `yaml:"cache_size" env:"CACHE_SIZE"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	// Format is "console", "text" or "json".
	Format string `yaml:"format" env:"FORMAT"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		SystemPrompt: "You are a helpful AI assistant.",
		ContextLimit: 8192,
		Window:       10,
		MMRLambda:    0.5,
		Model: ModelConfig{
			Provider:    ProviderMock,
			Temperature: 0.7,
		},
		Store: StoreConfig{Driver: StoreMemory},
		Log:   LogConfig{Level: "info", Format: "console"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, configError(goerr.Wrap(err, "failed to read config file", goerr.V("path", path)))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, configError(goerr.Wrap(err, "failed to parse config file", goerr.V("path", path)))
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, configError(goerr.Wrap(err, "failed to parse environment"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	c.Model.Provider = strings.ToLower(strings.TrimSpace(c.Model.Provider))
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))

	switch {
	case c.ContextLimit <= 0:
		return configError(goerr.New("context_limit must be positive", goerr.V("context_limit", c.ContextLimit)))
	case c.Window <= 0:
		return configError(goerr.New("window must be positive", goerr.V("window", c.Window)))
	case c.MMRLambda < 0 || c.MMRLambda > 1:
		return configError(goerr.New("mmr_lambda must be within [0,1]", goerr.V("mmr_lambda", c.MMRLambda)))
	}

	switch c.Model.Provider {
	case ProviderMock, ProviderOpenAI, ProviderOllama, ProviderAnthropic, ProviderGemini:
	default:
		return configError(goerr.New("unknown model provider", goerr.V("provider", c.Model.Provider)))
	}

	switch c.Store.Driver {
	case StoreMemory, StoreChromem:
	case StoreSQLite, StorePostgres, StoreFirestore:
		if c.Store.DSN == "" {
			return configError(goerr.New("store dsn is required", goerr.V("driver", c.Store.Driver)))
		}
	default:
		return configError(goerr.New("unknown store driver", goerr.V("driver", c.Store.Driver)))
	}

	switch c.Log.Format {
	case "console", "text", "json":
	default:
		return configError(goerr.New("unknown log format", goerr.V("format", c.Log.Format)))
	}
	return nil
}

func configError(err error) error {
	return core.NewError(core.ErrConfig, "config.Load", "", err)
}
