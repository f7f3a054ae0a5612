// Package tactile launches synthesized shell commands on the host. It knows
// two lifecycles: short-lived CLI tools, which run to completion under a hard
// timeout, and GUI applications, which are detached and judged by liveness.
package tactile

import (
	"context"
	"strings"
	"time"
)

// GUIDetector decides whether a command opens a graphical application.
type GUIDetector interface {
	IsGUI(ctx context.Context, command string) bool
}

// ExecutionResult is the outcome of one launch.
type ExecutionResult struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode *int // nil when the process never reported one (timeout, launch error)
	IsGUI    bool
	TimedOut bool
	PID      int

	// LaunchError holds the error text when the process could not be run at all.
	LaunchError string

	Duration  time.Duration
	Truncated bool
}

// Succeeded reports a zero exit code.
func (r *ExecutionResult) Succeeded() bool {
	return r.ExitCode != nil && *r.ExitCode == 0
}

// Transcript renders the combined output in the form the analyzer expects.
func (r *ExecutionResult) Transcript() string {
	var b strings.Builder
	if strings.TrimSpace(r.Stdout) != "" {
		b.WriteString("STDOUT: ")
		b.WriteString(r.Stdout)
		b.WriteString("\n")
	}
	if strings.TrimSpace(r.Stderr) != "" {
		b.WriteString("STDERR: ")
		b.WriteString(r.Stderr)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "No output produced"
	}
	return b.String()
}

// NeedsSudo reports whether command mentions sudo anywhere. This is a loose
// text heuristic for attaching the terminal, not a privilege check.
func NeedsSudo(command string) bool {
	return strings.Contains(strings.ToLower(command), "sudo")
}

func intPtr(i int) *int { return &i }
