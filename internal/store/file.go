package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"lily/internal/logging"
)

// FileLedger stores the history as an indented JSON array, rewritten
// atomically on every append.
type FileLedger struct {
	mu      sync.RWMutex
	path    string
	cap     int
	records []AttemptRecord
}

// NewFileLedger loads path if it exists. A corrupt file is logged and
// replaced by an empty history on the next append.
func NewFileLedger(path string, maxRecords int) (*FileLedger, error) {
	if maxRecords < 1 {
		maxRecords = DefaultMaxRecords
	}
	f := &FileLedger{path: path, cap: maxRecords}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &f.records); err != nil {
		logging.StoreWarn("Command history file %s is corrupted, starting fresh: %v", path, err)
		f.records = nil
		return f, nil
	}
	if over := len(f.records) - f.cap; over > 0 {
		f.records = f.records[over:]
	}
	return f, nil
}

func (f *FileLedger) Append(rec AttemptRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := append(tail(f.records, len(f.records)), rec)
	if over := len(next) - f.cap; over > 0 {
		next = next[over:]
	}
	if err := writeJSONAtomic(f.path, next); err != nil {
		return err
	}
	f.records = next
	return nil
}

func (f *FileLedger) Recent(n int) ([]AttemptRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return tail(f.records, n), nil
}

func (f *FileLedger) All() ([]AttemptRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return tail(f.records, len(f.records)), nil
}

func (f *FileLedger) Close() error { return nil }

// writeJSONAtomic writes v to a temp file in the target directory, fsyncs it,
// and renames it over path.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	tmpName = ""
	return nil
}
