package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validCfg returns a fully-valid Config for mutation testing.
func validCfg() *Config {
	return &Config{
		Storage: StorageConfig{Driver: "memory"},
		Lookup: LookupConfig{
			DictionaryBaseURL: "https://api.dictionaryapi.dev",
			TimeoutMs:         5000,
		},
		Memory: MemoryConfig{
			MaxRecordsPerSession:        100,
			RetentionWindowMinutes:      50,
			EvictionImportanceThreshold: 0.3,
			SweepIntervalSeconds:        30,
		},
		Knowledge: KnowledgeConfig{MaxEntries: 500},
		Router: RouterConfig{
			ImmediateResponse:      true,
			ImmediateResponseFloor: 0.7,
		},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.True(t, strings.HasSuffix(cfg.Storage.Path, "cogno.db"))
	assert.Equal(t, 5*time.Second, cfg.Lookup.Timeout())
	assert.Equal(t, 100, cfg.Memory.MaxRecordsPerSession)
	assert.Equal(t, 50*time.Minute, cfg.Memory.RetentionWindow())
	assert.InDelta(t, 0.3, cfg.Memory.EvictionImportanceThreshold, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Memory.SweepInterval())
	assert.Equal(t, 500, cfg.Knowledge.MaxEntries)
	assert.True(t, cfg.Router.ImmediateResponse)
	assert.InDelta(t, 0.7, cfg.Router.ImmediateResponseFloor, 1e-9)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.API.ListenAddr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COGNO_STORAGE_PATH", "/tmp/override.db")
	t.Setenv("COGNO_API_LISTEN_ADDR", ":9999")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-key-1234")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Storage.Path)
	assert.Equal(t, ":9999", cfg.API.ListenAddr)
	assert.Equal(t, "sk-test-key-1234", cfg.Claude.APIKey)
}

func TestValidate_BadDriver(t *testing.T) {
	cfg := validCfg()
	cfg.Storage.Driver = "postgres"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
}

func TestValidate_SQLiteNeedsPath(t *testing.T) {
	cfg := validCfg()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Path = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.path")
}

func TestValidate_TimeoutZero(t *testing.T) {
	cfg := validCfg()
	cfg.Lookup.TimeoutMs = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout_ms")
}

func TestValidate_ThresholdOutOfRange(t *testing.T) {
	cfg := validCfg()
	cfg.Memory.EvictionImportanceThreshold = 1.5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eviction_importance_threshold")
}

func TestValidate_FloorOutOfRange(t *testing.T) {
	cfg := validCfg()
	cfg.Router.ImmediateResponseFloor = -0.1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "immediate_response_floor")
}

func TestValidate_MaxEntriesZero(t *testing.T) {
	cfg := validCfg()
	cfg.Knowledge.MaxEntries = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_entries")
}

func TestClaudeConfig_StringMasksKey(t *testing.T) {
	c := ClaudeConfig{APIKey: "sk-ant-verysecretkey123", Model: "claude-haiku-4-5-20251001"}
	s := c.String()
	assert.NotContains(t, s, "verysecretkey")
	assert.Contains(t, s, "sk-a")
	assert.Contains(t, s, "claude-haiku-4-5-20251001")

	short := ClaudeConfig{APIKey: "tiny"}
	assert.Contains(t, short.String(), "***")
	assert.NotContains(t, short.String(), "tiny")
}
