package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all Lily configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Reasoning oracle (LLM) transport
	Oracle OracleConfig `yaml:"oracle"`

	// Task-execution retry engine
	Engine EngineConfig `yaml:"engine"`

	// Attempt ledger persistence
	Ledger LedgerConfig `yaml:"ledger"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "lily",
		Version: "2.0.0",

		Oracle: OracleConfig{
			Provider:      ProviderGemini,
			Model:         "gemini-2.0-flash",
			FallbackModel: "gemini-2.5-flash-lite",
			Timeout:       "60s",
			Cooldown:      "60s",
			SystemPrompt:  defaultSystemPrompt,
		},

		Engine: EngineConfig{
			MaxAttempts:      3,
			ContextWindow:    5,
			GUIGracePeriod:   "3s",
			CLITimeout:       "30s",
			PollInterval:     "100ms",
			OutputCap:        1000,
			FailureOutputCap: 200,
			Shell:            "/bin/sh",
		},

		Ledger: LedgerConfig{
			Backend:    LedgerSQLite,
			Path:       filepath.Join("data", "command_history.db"),
			MaxRecords: 100,
		},

		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Format:  "json",
			File:    filepath.Join("data", "logs", "lily.log"),
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults (with env overrides applied).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// OpenAI only takes over when no Gemini key is present
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Oracle.APIKey = key
		c.Oracle.Provider = ProviderOpenAI
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Oracle.APIKey = key
		c.Oracle.Provider = ProviderGemini
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		c.Oracle.BaseURL = url
	}
	if model := os.Getenv("LILY_MODEL"); model != "" {
		c.Oracle.Model = model
	}

	if path := os.Getenv("LILY_LEDGER_PATH"); path != "" {
		c.Ledger.Path = path
	}
	if n, err := strconv.Atoi(os.Getenv("LILY_MAX_ATTEMPTS")); err == nil && n > 0 {
		c.Engine.MaxAttempts = n
	}

	if level := os.Getenv("LILY_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Oracle.APIKey == "" {
		return fmt.Errorf("%w: oracle API key not configured (set GEMINI_API_KEY or OPENAI_API_KEY)", ErrInvalid)
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.Oracle.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("%w: invalid oracle provider: %s (valid: %v)", ErrInvalid, c.Oracle.Provider, ValidProviders)
	}

	switch c.Ledger.Backend {
	case LedgerSQLite, LedgerJSON, LedgerMemory:
	default:
		return fmt.Errorf("%w: invalid ledger backend: %s", ErrInvalid, c.Ledger.Backend)
	}

	if c.Engine.MaxAttempts < 1 {
		return fmt.Errorf("%w: engine.max_attempts must be at least 1, got %d", ErrInvalid, c.Engine.MaxAttempts)
	}
	if c.Ledger.MaxRecords < 1 {
		return fmt.Errorf("%w: ledger.max_records must be at least 1, got %d", ErrInvalid, c.Ledger.MaxRecords)
	}

	return nil
}

// parseDuration parses s, returning fallback when s is empty or malformed.
func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
