package perception

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lily/internal/config"
)

func TestNewClientFromConfig_OpenAI(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Oracle.Provider = config.ProviderOpenAI
	cfg.Oracle.APIKey = "sk-test"
	cfg.Oracle.Model = "gpt-4o-mini"
	cfg.Oracle.FallbackModel = ""

	client, err := NewClientFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := client.underlying.(*OpenAIClient)
	assert.True(t, ok, "expected *OpenAIClient, got %T", client.underlying)
	assert.Equal(t, "gpt-4o-mini", client.Model())
}

func TestNewClientFromConfig_WithFallback(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Oracle.Provider = config.ProviderOpenAI
	cfg.Oracle.APIKey = "sk-test"
	cfg.Oracle.Model = "big"
	cfg.Oracle.FallbackModel = "small"

	client, err := NewClientFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	fb, ok := client.underlying.(*FallbackClient)
	require.True(t, ok, "expected *FallbackClient, got %T", client.underlying)
	assert.Equal(t, "big", modelOf(fb.primary))
	assert.Equal(t, "small", modelOf(fb.fallback))
}

func TestNewClientFromConfig_Errors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Oracle.APIKey = ""
	_, err := NewClientFromConfig(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	cfg.Oracle.APIKey = "k"
	cfg.Oracle.Provider = "carrier-pigeon"
	_, err = NewClientFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), GeminiConfig{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
