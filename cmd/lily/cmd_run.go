package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"lily/internal/agent"
	"lily/internal/articulation"
)

// runCmd executes a single task
var runCmd = &cobra.Command{
	Use:   "run [goal]",
	Short: "Run one task through the retry engine",
	Long: `Plans, safety-checks, executes and judges commands for the goal until it
succeeds or the attempt budget is spent. Ctrl+C cancels the task.

Exit status: 0 on success, 1 when every attempt failed, 130 when cancelled.

Example:
  lily run open the file manager`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func runTask(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := newSession(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer s.Close()

	monitor := agent.NewMonitor(s, nil, cfg.GetPollInterval())
	stop := forwardInterrupts(monitor, cancel)
	defer stop()

	goal := strings.Join(args, " ")
	outcome, err := monitor.Run(ctx, goal)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return finish(s.narrator, outcome)
}

// finish maps a task outcome onto the process exit status.
func finish(n articulation.Narrator, outcome agent.Outcome) error {
	switch outcome {
	case agent.OutcomeSucceeded:
		return nil
	case agent.OutcomeCancelled:
		n.Say(articulation.ToneWarning, "Task cancelled.")
		return exitCancelled
	default:
		return exitExhausted
	}
}
