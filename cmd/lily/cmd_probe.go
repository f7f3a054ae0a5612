package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lily/internal/system"
)

// probeCmd prints the system context handed to planning
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Show the detected system context",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := system.NewProber().Probe(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), sc.String())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lily %s\n", version)
	},
}
