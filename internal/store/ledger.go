package store

import (
	"fmt"

	"lily/internal/logging"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"
)

// Open constructs a ledger for the named backend.
func Open(backend, path string, maxRecords int) (Ledger, error) {
	if maxRecords < 1 {
		maxRecords = DefaultMaxRecords
	}
	logging.StoreDebug("Opening %s ledger at %q (cap %d)", backend, path, maxRecords)

	switch backend {
	case BackendSQLite, "":
		return NewSQLiteLedger(path, maxRecords)
	case BackendJSON:
		return NewFileLedger(path, maxRecords)
	case BackendMemory:
		return NewMemoryLedger(maxRecords), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", backend)
	}
}

// tail returns a copy of the last n records of recs.
func tail(recs []AttemptRecord, n int) []AttemptRecord {
	if n <= 0 {
		return []AttemptRecord{}
	}
	if n > len(recs) {
		n = len(recs)
	}
	out := make([]AttemptRecord, n)
	copy(out, recs[len(recs)-n:])
	return out
}
