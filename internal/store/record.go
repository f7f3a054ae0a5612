// Package store implements the attempt ledger: a bounded, append-only history
// of execution attempts that feeds context back into planning.
package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the judged outcome of one attempt.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusPartial Status = "PARTIAL"
	StatusFailed  Status = "FAILED"
	StatusUnknown Status = "UNKNOWN"
)

// DefaultMaxRecords is the rotation cap used when none is configured.
const DefaultMaxRecords = 100

// AttemptRecord is one ledger entry. It is immutable once appended.
// JSON field names match the command_history.json layout.
type AttemptRecord struct {
	RunID           string    `json:"run_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	UserQuery       string    `json:"user_query"`
	Attempt         int       `json:"attempt"`
	Strategy        string    `json:"strategy"`
	CommandExecuted string    `json:"command_executed"`
	Status          Status    `json:"status"`
	Summary         string    `json:"summary"`
	Issues          string    `json:"issues"`
	Output          string    `json:"output"`
}

// Ledger is the attempt history. Implementations are safe for concurrent use,
// although the engine only ever has a single writer.
type Ledger interface {
	// Append adds rec and evicts the oldest records beyond the cap.
	Append(rec AttemptRecord) error
	// Recent returns up to n most recent records, oldest first.
	Recent(n int) ([]AttemptRecord, error)
	// All returns the full retained history, oldest first.
	All() ([]AttemptRecord, error)
	Close() error
}

// Timestamp layouts accepted on load. Zoneless ISO-8601 (as written by
// Python's datetime.isoformat) is read as local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a stored timestamp. An empty string is the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON accepts both RFC 3339 and zoneless ISO-8601 timestamps so
// existing command_history.json files load.
func (r *AttemptRecord) UnmarshalJSON(data []byte) error {
	type plain AttemptRecord
	aux := struct {
		*plain
		Timestamp string `json:"timestamp"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := ParseTimestamp(aux.Timestamp)
	if err != nil {
		return err
	}
	r.Timestamp = t
	return nil
}
