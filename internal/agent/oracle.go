// Package agent implements the task-execution retry engine: typed oracle
// operations (plan, safety, GUI classification, outcome analysis), the
// retry controller that drives them, and the cancellation monitor.
package agent

import (
	"context"
	"errors"
)

// Oracle is the text-in, text-out reasoning service.
// perception.LLMClient satisfies it.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrNoPlan means the oracle produced no usable command.
	ErrNoPlan = errors.New("no plan")
	// ErrBusy means a task is already running on this monitor.
	ErrBusy = errors.New("a task is already running")
)
