package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultLookupTimeoutMs is the external lookup deadline.
	DefaultLookupTimeoutMs = 5000

	// DefaultRetentionWindowMinutes is how long an unimportant session may
	// idle before eviction.
	DefaultRetentionWindowMinutes = 50

	// DefaultImmediateResponseFloor is the minimum fact importance for the
	// fast acknowledgement path.
	DefaultImmediateResponseFloor = 0.7
)

// Config holds all configuration for cogno.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Lookup    LookupConfig    `mapstructure:"lookup"`
	Claude    ClaudeConfig    `mapstructure:"claude"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Router    RouterConfig    `mapstructure:"router"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	API       APIConfig       `mapstructure:"api"`
}

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | memory
	Path   string `mapstructure:"path"`
}

// LookupConfig holds external lookup collaborator settings.
type LookupConfig struct {
	DictionaryBaseURL string `mapstructure:"dictionary_base_url"`
	TimeoutMs         int    `mapstructure:"timeout_ms"`
}

// Timeout returns the lookup deadline as a duration.
func (c LookupConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ClaudeConfig holds Anthropic Claude API settings for the encyclopedia
// lookup provider.
type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// String returns a safe representation of ClaudeConfig with the API key masked.
func (c ClaudeConfig) String() string {
	return fmt.Sprintf("ClaudeConfig{APIKey:%s, Model:%s}", maskAPIKey(c.APIKey), c.Model)
}

// maskAPIKey shows first 4 + last 4 chars, replacing the middle with asterisks.
func maskAPIKey(key string) string {
	const visible = 4
	if len(key) <= visible*2 {
		return "***"
	}
	return key[:visible] + "****" + key[len(key)-visible:]
}

// MemoryConfig holds conversational memory retention settings.
type MemoryConfig struct {
	MaxRecordsPerSession        int     `mapstructure:"max_records_per_session"`
	RetentionWindowMinutes      int     `mapstructure:"retention_window_minutes"`
	EvictionImportanceThreshold float64 `mapstructure:"eviction_importance_threshold"`
	SweepIntervalSeconds        int     `mapstructure:"sweep_interval_seconds"`
}

// RetentionWindow returns the retention window as a duration.
func (c MemoryConfig) RetentionWindow() time.Duration {
	return time.Duration(c.RetentionWindowMinutes) * time.Minute
}

// SweepInterval returns the sweep interval as a duration.
func (c MemoryConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// KnowledgeConfig holds knowledge store settings.
type KnowledgeConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// RouterConfig holds orchestrator settings.
type RouterConfig struct {
	ImmediateResponse      bool    `mapstructure:"immediate_response"`
	ImmediateResponseFloor float64 `mapstructure:"immediate_response_floor"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", filepath.Join(homeDir(), ".cogno", "cogno.db"))

	v.SetDefault("lookup.dictionary_base_url", "https://api.dictionaryapi.dev")
	v.SetDefault("lookup.timeout_ms", DefaultLookupTimeoutMs)

	v.SetDefault("claude.model", "claude-haiku-4-5-20251001")

	v.SetDefault("memory.max_records_per_session", 100)
	v.SetDefault("memory.retention_window_minutes", DefaultRetentionWindowMinutes)
	v.SetDefault("memory.eviction_importance_threshold", 0.3)
	v.SetDefault("memory.sweep_interval_seconds", 30)

	v.SetDefault("knowledge.max_entries", 500)

	v.SetDefault("router.immediate_response", true)
	v.SetDefault("router.immediate_response_floor", DefaultImmediateResponseFloor)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.auth_token", "")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".cogno"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("COGNO")
	v.AutomaticEnv()

	// Map specific env vars
	_ = v.BindEnv("claude.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("storage.path", "COGNO_STORAGE_PATH")
	_ = v.BindEnv("lookup.dictionary_base_url", "COGNO_LOOKUP_DICTIONARY_BASE_URL")
	_ = v.BindEnv("api.listen_addr", "COGNO_API_LISTEN_ADDR")
	_ = v.BindEnv("api.auth_token", "COGNO_API_AUTH_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Storage.Driver != "sqlite" && c.Storage.Driver != "memory" {
		return fmt.Errorf("storage.driver must be sqlite or memory, got %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path must not be empty for the sqlite driver")
	}
	if c.Lookup.TimeoutMs <= 0 {
		return fmt.Errorf("lookup.timeout_ms must be greater than 0")
	}
	if c.Memory.MaxRecordsPerSession <= 0 {
		return fmt.Errorf("memory.max_records_per_session must be greater than 0")
	}
	if c.Memory.RetentionWindowMinutes <= 0 {
		return fmt.Errorf("memory.retention_window_minutes must be greater than 0")
	}
	if c.Memory.EvictionImportanceThreshold < 0 || c.Memory.EvictionImportanceThreshold > 1 {
		return fmt.Errorf("memory.eviction_importance_threshold must be between 0 and 1")
	}
	if c.Memory.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("memory.sweep_interval_seconds must be greater than 0")
	}
	if c.Knowledge.MaxEntries <= 0 {
		return fmt.Errorf("knowledge.max_entries must be greater than 0")
	}
	if c.Router.ImmediateResponseFloor < 0 || c.Router.ImmediateResponseFloor > 1 {
		return fmt.Errorf("router.immediate_response_floor must be between 0 and 1")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
