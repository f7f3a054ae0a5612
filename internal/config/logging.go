package config

// LoggingConfig configures logging.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"` // Master toggle - false = no logging
	Level   string `yaml:"level"`   // debug, info, warn, error
	Format  string `yaml:"format"`  // json, console
	File    string `yaml:"file"`    // empty = stderr
}
