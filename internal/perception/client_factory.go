package perception

import (
	"context"
	"fmt"

	"lily/internal/config"
)

// NewClientFromConfig builds provider -> optional fallback -> tracing.
func NewClientFromConfig(ctx context.Context, cfg *config.Config) (*TracingClient, error) {
	oc := cfg.Oracle
	if oc.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	build := func(model string) (LLMClient, error) {
		switch oc.Provider {
		case config.ProviderGemini, "":
			return NewGeminiClient(ctx, GeminiConfig{
				APIKey:       oc.APIKey,
				Model:        model,
				SystemPrompt: oc.SystemPrompt,
				Timeout:      cfg.GetOracleTimeout(),
				Temperature:  0.2,
			})
		case config.ProviderOpenAI:
			def := DefaultOpenAIConfig(oc.APIKey)
			def.BaseURL = oc.BaseURL
			def.Model = model
			def.SystemPrompt = oc.SystemPrompt
			def.Timeout = cfg.GetOracleTimeout()
			return NewOpenAIClient(def), nil
		default:
			return nil, fmt.Errorf("unsupported oracle provider: %s", oc.Provider)
		}
	}

	primary, err := build(oc.Model)
	if err != nil {
		return nil, err
	}

	client := primary
	if oc.FallbackModel != "" && oc.FallbackModel != oc.Model {
		fallback, err := build(oc.FallbackModel)
		if err != nil {
			return nil, err
		}
		client = NewFallbackClient(primary, fallback, cfg.GetOracleCooldown())
	}

	return NewTracingClient(client), nil
}
