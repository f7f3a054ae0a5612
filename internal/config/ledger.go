package config

// Ledger backends.
const (
	LedgerSQLite = "sqlite"
	LedgerJSON   = "json"
	LedgerMemory = "memory"
)

// LedgerConfig configures attempt ledger persistence.
type LedgerConfig struct {
	Backend    string `yaml:"backend"` // sqlite, json, memory
	Path       string `yaml:"path"`
	MaxRecords int    `yaml:"max_records"`
}
