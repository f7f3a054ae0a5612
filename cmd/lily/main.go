// Package main is the lily command line: it runs natural-language tasks
// through the retry engine and inspects the attempt ledger.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lily/internal/config"
	"lily/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	configPath  string
	verbose     bool
	maxAttempts int

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

// exitCode carries a process exit status out of a RunE.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

const (
	exitExhausted exitCode = 1
	exitCancelled exitCode = 130
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lily",
	Short: "Lily - natural-language task runner for your desktop",
	Long: `Lily turns a plain-language request into a shell command, checks it
for safety, runs it, judges the outcome and retries with a different
strategy until the task succeeds or the attempt budget runs out.

All judgment comes from the configured reasoning oracle (Gemini or any
OpenAI-compatible endpoint). Every attempt is recorded in a bounded ledger.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		opts := logging.Options{
			Enabled: cfg.Logging.Enabled,
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			File:    cfg.Logging.File,
		}
		if verbose {
			opts.Enabled = true
			opts.Level = "debug"
		}
		if err := logging.Initialize(opts); err != nil {
			return err
		}
		logging.Boot("lily %s starting: %s", version, cmd.CommandPath())
		return nil
	},
}

// loadConfig reads the config file and applies flag overrides on top of
// file and environment values.
func loadConfig() (*config.Config, error) {
	loaded, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if maxAttempts > 0 {
		loaded.Engine.MaxAttempts = maxAttempts
	}
	return loaded, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "lily.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().IntVar(&maxAttempts, "max-attempts", 0, "Override engine.max_attempts")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	os.Exit(execute())
}

func execute() int {
	err := rootCmd.Execute()
	// Post-run hooks are skipped when RunE fails, so flush here.
	logging.Sync()
	if err == nil {
		return 0
	}
	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}
