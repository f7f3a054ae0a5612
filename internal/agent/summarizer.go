package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"lily/internal/store"
)

// summaryWindow is how many recent records the summary covers.
const summaryWindow = 10

// NoHistoryMessage is returned when there is nothing to summarize.
const NoHistoryMessage = "No execution history available yet."

// Summarizer asks the oracle for a short health report over recent attempts.
type Summarizer struct {
	oracle Oracle
}

func NewSummarizer(oracle Oracle) *Summarizer {
	return &Summarizer{oracle: oracle}
}

// Summarize reports on the last ten records (or fewer).
func (s *Summarizer) Summarize(ctx context.Context, records []store.AttemptRecord) (string, error) {
	if len(records) == 0 {
		return NoHistoryMessage, nil
	}
	if len(records) > summaryWindow {
		records = records[len(records)-summaryWindow:]
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not encode execution history: %w", err)
	}
	reply, err := s.oracle.Complete(ctx, summarizePrompt(string(data)))
	if err != nil {
		return "", fmt.Errorf("could not analyze execution history: %w", err)
	}
	return reply, nil
}
