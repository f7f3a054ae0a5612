package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"lily/internal/logging"
)

// SQLiteLedger persists attempts in a single SQLite table, rotated on append.
type SQLiteLedger struct {
	db     *sql.DB
	mu     sync.Mutex
	dbPath string
	cap    int
}

// NewSQLiteLedger opens (or creates) the ledger database at path.
// ":memory:" yields a private in-memory database.
func NewSQLiteLedger(path string, maxRecords int) (*SQLiteLedger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: an in-memory database is per-connection, and the
	// ledger has a single writer anyway.
	db.SetMaxOpenConns(1)

	if maxRecords < 1 {
		maxRecords = DefaultMaxRecords
	}
	l := &SQLiteLedger{db: db, dbPath: path, cap: maxRecords}
	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *SQLiteLedger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL DEFAULT '',
		timestamp TEXT NOT NULL,
		user_query TEXT NOT NULL,
		attempt INTEGER NOT NULL,
		strategy TEXT NOT NULL DEFAULT '',
		command_executed TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		issues TEXT NOT NULL DEFAULT '',
		output TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_attempts_run ON attempts(run_id);
	`
	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Append inserts rec and trims the table to the cap in one transaction.
func (l *SQLiteLedger) Append(rec AttemptRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO attempts
		(run_id, timestamp, user_query, attempt, strategy, command_executed, status, summary, issues, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Timestamp.Format(time.RFC3339Nano), rec.UserQuery, rec.Attempt,
		rec.Strategy, rec.CommandExecuted, string(rec.Status), rec.Summary, rec.Issues, rec.Output)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM attempts WHERE id NOT IN
		(SELECT id FROM attempts ORDER BY id DESC LIMIT ?)`, l.cap)
	if err != nil {
		return fmt.Errorf("rotate attempts: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logging.StoreDebug("Rotated %d attempt(s) out of %s", n, l.dbPath)
	}

	return tx.Commit()
}

// Recent returns up to n of the newest records, oldest first.
func (l *SQLiteLedger) Recent(n int) ([]AttemptRecord, error) {
	if n <= 0 {
		return []AttemptRecord{}, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.Query(`SELECT run_id, timestamp, user_query, attempt, strategy,
		command_executed, status, summary, issues, output
		FROM attempts ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent attempts: %w", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

// All returns every retained record, oldest first.
func (l *SQLiteLedger) All() ([]AttemptRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.Query(`SELECT run_id, timestamp, user_query, attempt, strategy,
		command_executed, status, summary, issues, output
		FROM attempts ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return scanRecords(rows)
}

// Close closes the database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func scanRecords(rows *sql.Rows) ([]AttemptRecord, error) {
	defer rows.Close()

	recs := []AttemptRecord{}
	for rows.Next() {
		var (
			rec    AttemptRecord
			ts     string
			status string
		)
		if err := rows.Scan(&rec.RunID, &ts, &rec.UserQuery, &rec.Attempt, &rec.Strategy,
			&rec.CommandExecuted, &status, &rec.Summary, &rec.Issues, &rec.Output); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.Status = Status(status)
		if t, err := ParseTimestamp(ts); err == nil {
			rec.Timestamp = t
		} else {
			logging.StoreWarn("Unparsable timestamp %q: %v", ts, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
