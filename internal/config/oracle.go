package config

import "time"

// Supported oracle providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ValidProviders lists all supported oracle providers.
var ValidProviders = []string{ProviderGemini, ProviderOpenAI}

const defaultSystemPrompt = "You are Lily, a friendly assistant and expert Linux system administrator. " +
	"Answer exactly in the format each request asks for."

// OracleConfig configures the external reasoning service.
type OracleConfig struct {
	Provider      string `yaml:"provider"` // gemini, openai
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	FallbackModel string `yaml:"fallback_model"` // empty disables fallback
	BaseURL       string `yaml:"base_url"`       // openai-compatible endpoints only
	Timeout       string `yaml:"timeout"`
	Cooldown      string `yaml:"cooldown"` // primary cooldown after a failure
	SystemPrompt  string `yaml:"system_prompt"`
}

// GetOracleTimeout returns the per-call oracle timeout.
func (c *Config) GetOracleTimeout() time.Duration {
	return parseDuration(c.Oracle.Timeout, 60*time.Second)
}

// GetOracleCooldown returns how long the primary model is skipped after a failure.
func (c *Config) GetOracleCooldown() time.Duration {
	return parseDuration(c.Oracle.Cooldown, 60*time.Second)
}
