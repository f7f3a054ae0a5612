package agent

import (
	"context"
	"sync/atomic"
	"time"

	"lily/internal/logging"
)

// Interrupt is the shared cancellation flag. Setting it asks the running
// task to stop; the monitor polls it.
type Interrupt struct {
	flag atomic.Bool
}

func (i *Interrupt) Set()        { i.flag.Store(true) }
func (i *Interrupt) Reset()      { i.flag.Store(false) }
func (i *Interrupt) IsSet() bool { return i.flag.Load() }

// Outcome is how a monitored task ended.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeExhausted
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Runner runs one task to completion or cancellation. *Controller implements it.
type Runner interface {
	Run(ctx context.Context, goal string) Result
}

// Monitor runs one task at a time in a worker goroutine and cancels it when
// the interrupt flag is raised.
type Monitor struct {
	runner    Runner
	interrupt *Interrupt
	poll      time.Duration
	busy      atomic.Bool
}

// NewMonitor creates a monitor polling interrupt every poll interval.
func NewMonitor(runner Runner, interrupt *Interrupt, poll time.Duration) *Monitor {
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	if interrupt == nil {
		interrupt = &Interrupt{}
	}
	return &Monitor{runner: runner, interrupt: interrupt, poll: poll}
}

// Interrupt returns the flag this monitor polls.
func (m *Monitor) Interrupt() *Interrupt { return m.interrupt }

// Busy reports whether a task is running.
func (m *Monitor) Busy() bool { return m.busy.Load() }

// Run executes goal and blocks until the worker has exited. A concurrent
// second call returns ErrBusy. Parent cancellation yields OutcomeCancelled
// together with the context's error.
func (m *Monitor) Run(ctx context.Context, goal string) (Outcome, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return OutcomeCancelled, ErrBusy
	}
	defer m.busy.Store(false)

	// A stale interrupt from while we were idle must not kill the new task.
	m.interrupt.Reset()

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- m.runner.Run(workCtx, goal)
	}()

	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		select {
		case res := <-done:
			return outcomeOf(res), nil
		case <-ticker.C:
			if m.interrupt.IsSet() {
				logging.Agent("Interrupt received, stopping task")
				cancel()
				<-done
				m.interrupt.Reset()
				return OutcomeCancelled, nil
			}
		case <-ctx.Done():
			cancel()
			<-done
			return OutcomeCancelled, ctx.Err()
		}
	}
}

func outcomeOf(res Result) Outcome {
	switch {
	case res.Cancelled:
		return OutcomeCancelled
	case res.Succeeded:
		return OutcomeSucceeded
	default:
		return OutcomeExhausted
	}
}
