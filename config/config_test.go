package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8192, cfg.ContextLimit)
	assert.Equal(t, 10, cfg.Window)
	assert.Equal(t, ProviderMock, cfg.Model.Provider)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
system_prompt: Be brief.
window: 4
model:
  provider: OpenAI
  name: gpt-4o
store:
  driver: sqlite
  dsn: /tmp/agentkit.db
log:
  level: debug
`)
	t.Setenv("AGENTKIT_WINDOW", "6")
	t.Setenv("AGENTKIT_MODEL_NAME", "gpt-4o-mini")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", cfg.SystemPrompt)
	assert.Equal(t, 6, cfg.Window)
	assert.Equal(t, ProviderOpenAI, cfg.Model.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.Name)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/agentkit.db", cfg.Store.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8192, cfg.ContextLimit)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad window", "window: 0"},
		{"bad lambda", "mmr_lambda: 1.5"},
		{"unknown provider", "model:\n  provider: parrot"},
		{"unknown driver", "store:\n  driver: tape"},
		{"missing dsn", "store:\n  driver: postgres"},
		{"bad format", "log:\n  format: xml"},
		{"bad yaml", "window: [1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfig))
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, core.ErrConfig))
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("AGENTKIT_CONTEXT_LIMIT", "lots")
	_, err := Load("")
	assert.True(t, errors.Is(err, core.ErrConfig))
}
