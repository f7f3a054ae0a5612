package store

import (
	"fmt"
	"strings"
	"time"
)

// FormatContext renders records as the planning context block.
func FormatContext(records []AttemptRecord) string {
	if len(records) == 0 {
		return ""
	}
	lines := make([]string, 0, len(records)*4)
	for _, r := range records {
		status := r.Status
		if status == "" {
			status = StatusUnknown
		}
		summary := r.Summary
		if summary == "" {
			summary = "No summary."
		}
		lines = append(lines,
			fmt.Sprintf("Task: \"%s\" (Attempt %d)", r.UserQuery, r.Attempt),
			fmt.Sprintf("Command: `%s`", r.CommandExecuted),
			fmt.Sprintf("Result: %s - %s", status, summary),
			strings.Repeat("-", 10),
		)
	}
	return strings.Join(lines, "\n")
}

// Stats summarizes ledger history.
type Stats struct {
	Total         int
	Successes     int
	SuccessRate   float64 // percent
	LastTimestamp time.Time
}

// ComputeStats returns counts and success rate over records.
func ComputeStats(records []AttemptRecord) Stats {
	s := Stats{Total: len(records)}
	if s.Total == 0 {
		return s
	}
	for _, r := range records {
		if r.Status == StatusSuccess {
			s.Successes++
		}
	}
	s.SuccessRate = float64(s.Successes) / float64(s.Total) * 100
	s.LastTimestamp = records[len(records)-1].Timestamp
	return s
}
