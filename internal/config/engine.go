package config

import "time"

// EngineConfig configures the task-execution retry engine.
type EngineConfig struct {
	// Attempt budget per task
	MaxAttempts int `yaml:"max_attempts"`

	// Number of ledger records and failure summaries fed to planning (negative disables)
	ContextWindow int `yaml:"context_window"`

	// Wait after launching a GUI process before the liveness check
	GUIGracePeriod string `yaml:"gui_grace_period"`

	// Hard wall-clock limit for CLI commands
	CLITimeout string `yaml:"cli_timeout"`

	// Cancellation monitor poll interval
	PollInterval string `yaml:"poll_interval"`

	// Output stored per attempt record (characters)
	OutputCap int `yaml:"output_cap"`

	// Output excerpt carried into the next planning round (characters)
	FailureOutputCap int `yaml:"failure_output_cap"`

	// Shell used to run synthesized commands
	Shell string `yaml:"shell"`
}

// GetGUIGracePeriod returns the GUI grace period as a duration.
func (c *Config) GetGUIGracePeriod() time.Duration {
	return parseDuration(c.Engine.GUIGracePeriod, 3*time.Second)
}

// GetCLITimeout returns the CLI hard timeout as a duration.
func (c *Config) GetCLITimeout() time.Duration {
	return parseDuration(c.Engine.CLITimeout, 30*time.Second)
}

// GetPollInterval returns the cancellation poll interval as a duration.
func (c *Config) GetPollInterval() time.Duration {
	return parseDuration(c.Engine.PollInterval, 100*time.Millisecond)
}
