package store

import "sync"

// MemoryLedger keeps records in process memory only.
type MemoryLedger struct {
	mu      sync.RWMutex
	records []AttemptRecord
	cap     int
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger(maxRecords int) *MemoryLedger {
	if maxRecords < 1 {
		maxRecords = DefaultMaxRecords
	}
	return &MemoryLedger{cap: maxRecords}
}

func (m *MemoryLedger) Append(rec AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	if over := len(m.records) - m.cap; over > 0 {
		m.records = append([]AttemptRecord(nil), m.records[over:]...)
	}
	return nil
}

func (m *MemoryLedger) Recent(n int) ([]AttemptRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return tail(m.records, n), nil
}

func (m *MemoryLedger) All() ([]AttemptRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return tail(m.records, len(m.records)), nil
}

func (m *MemoryLedger) Close() error { return nil }
