package perception

import (
	"context"
	"sync"
	"time"

	"lily/internal/logging"
)

// TraceStats counts oracle traffic through a TracingClient.
type TraceStats struct {
	Calls         int
	Failures      int
	TotalDuration time.Duration
}

// TracingClient wraps any LLMClient and logs every interaction.
type TracingClient struct {
	underlying LLMClient

	mu    sync.Mutex
	stats TraceStats
}

// NewTracingClient creates a tracing wrapper around an existing client.
func NewTracingClient(underlying LLMClient) *TracingClient {
	return &TracingClient{underlying: underlying}
}

// Model returns the underlying client's model.
func (tc *TracingClient) Model() string { return modelOf(tc.underlying) }

// Complete implements LLMClient.Complete with tracing.
func (tc *TracingClient) Complete(ctx context.Context, prompt string) (string, error) {
	return tc.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem implements LLMClient.CompleteWithSystem with tracing.
func (tc *TracingClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := modelOf(tc.underlying)
	start := time.Now()
	logging.PerceptionDebug("Oracle call started: model=%s prompt_len=%d", model, len(userPrompt))

	reply, err := tc.underlying.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	elapsed := time.Since(start)

	tc.mu.Lock()
	tc.stats.Calls++
	tc.stats.TotalDuration += elapsed
	if err != nil {
		tc.stats.Failures++
	}
	tc.mu.Unlock()

	if err != nil {
		logging.PerceptionWarn("Oracle call failed: model=%s duration=%v err=%v", model, elapsed, err)
	} else {
		logging.PerceptionDebug("Oracle call completed: model=%s duration=%v response_len=%d", model, elapsed, len(reply))
	}
	logging.Audit().OracleCall(model, elapsed, err)
	return reply, err
}

// Stats returns a snapshot of the call counters.
func (tc *TracingClient) Stats() TraceStats {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.stats
}
