// Package perception is the only channel to the external reasoning oracle.
// Callers see a plain text-in, text-out contract and never the provider.
package perception

import (
	"context"
	"errors"
)

// LLMClient defines the interface for oracle providers.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

var (
	// ErrEmptyReply is returned when a provider answers with no text.
	ErrEmptyReply = errors.New("empty reply from oracle")
	// ErrNoAPIKey is returned when a provider is built without credentials.
	ErrNoAPIKey = errors.New("API key not configured")
)

const defaultSystemPrompt = "You are Lily, a friendly assistant and expert Linux system administrator."

// modelNamer is implemented by clients bound to a single model.
type modelNamer interface {
	Model() string
}

func modelOf(c LLMClient) string {
	if m, ok := c.(modelNamer); ok {
		return m.Model()
	}
	return "unknown"
}
