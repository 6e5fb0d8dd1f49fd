package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "travelbuddy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	loader := NewLoader(NewValidator())

	cfg, err := loader.LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "travelbuddy.db", cfg.Database.Path)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 14, cfg.Planner.HorizonDays)
	assert.Equal(t, 3, cfg.Planner.StageAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Planner.LockTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /var/lib/travelbuddy/trips.db
llm:
  provider: ollama
  chat_model: llama3
  planning_model: llama3
planner:
  horizon_days: 21
  strict_meals: true
logging:
  level: debug
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/travelbuddy/trips.db", cfg.Database.Path)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.ChatModel)
	assert.Equal(t, 21, cfg.Planner.HorizonDays)
	assert.True(t, cfg.Planner.StrictMeals)
	assert.Equal(t, "debug", cfg.Logging.Level)

	assert.Equal(t, 3, cfg.Planner.BatchDays, "untouched fields keep defaults")
	assert.Equal(t, 6, cfg.Catalog.MaxCandidates)
}

func TestLoadEnvInterpolation(t *testing.T) {
	t.Setenv("TRAVELBUDDY_TEST_KEY", "sk-test-12345")
	path := writeConfig(t, `
llm:
  api_key: ${TRAVELBUDDY_TEST_KEY}
  base_url: https://${TRAVELBUDDY_TEST_UNSET}/v1
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-12345", cfg.LLM.APIKey)
	assert.Equal(t, "https://${TRAVELBUDDY_TEST_UNSET}/v1", cfg.LLM.BaseURL,
		"unset variables are left verbatim")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(NewValidator()).Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_LOAD_FAILED, types.CodeOf(err))
}

func TestLoadValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIn  string
	}{
		{
			name:    "unknown provider",
			content: "llm:\n  provider: bard\n",
			wantIn:  "llm.provider",
		},
		{
			name:    "horizon out of range",
			content: "planner:\n  horizon_days: 0\n",
			wantIn:  "planner.horizon_days",
		},
		{
			name:    "redis enabled without addr",
			content: "redis:\n  enabled: true\n  addr: \"\"\n",
			wantIn:  "redis.addr",
		},
		{
			name:    "tracing enabled without endpoint",
			content: "tracing:\n  enabled: true\n",
			wantIn:  "tracing.endpoint",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(NewValidator()).Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantIn)
		})
	}
}
