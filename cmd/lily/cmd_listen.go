package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"lily/internal/agent"
	"lily/internal/articulation"
	"lily/internal/config"
	"lily/internal/logging"
)

// listenCmd runs tasks read from stdin
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Read goals from stdin, one per line, and run each",
	Long: `Starts an interactive loop. Each line is run as a task; Ctrl+C cancels
the running task, or exits when idle. Type "exit" to quit.

Engine settings in the config file are reloaded on change and applied
before the next task.`,
	Args: cobra.NoArgs,
	RunE: listen,
}

func listen(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	s, err := newSession(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer s.Close()

	var reloaded atomic.Pointer[config.Config]
	watcher, err := config.NewWatcher(configPath, func(next *config.Config) {
		reloaded.Store(next)
	})
	if err != nil {
		logging.ConfigWarn("Config hot reload disabled: %v", err)
	} else if err := watcher.Start(ctx); err != nil {
		logging.ConfigWarn("Config hot reload disabled: %v", err)
	} else {
		defer watcher.Stop()
	}

	monitor := agent.NewMonitor(s, nil, cfg.GetPollInterval())
	stop := forwardInterrupts(monitor, cancel)
	defer stop()

	feed := newLineFeed(cmd.InOrStdin())
	defer feed.Close()

	fmt.Fprintln(out, "Lily is listening. Type a task and press Enter (Ctrl+C to quit).")
	for {
		line, ok := feed.Next(ctx)
		if !ok {
			return nil
		}
		goal := strings.TrimSpace(line)
		switch strings.ToLower(goal) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		// Reloads apply between tasks only.
		if next := reloaded.Swap(nil); next != nil {
			s.applyEngine(next)
		}

		outcome, err := monitor.Run(ctx, goal)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}
		if outcome == agent.OutcomeCancelled {
			s.narrator.Say(articulation.ToneWarning, "Task cancelled.")
		}
	}
}

// lineFeed reads stdin one line per request, so nothing reads the terminal
// while a task runs and a sudo prompt can have it.
type lineFeed struct {
	requests chan struct{}
	lines    chan string
}

func newLineFeed(r io.Reader) *lineFeed {
	f := &lineFeed{requests: make(chan struct{}), lines: make(chan string, 1)}
	go func() {
		defer close(f.lines)
		scanner := bufio.NewScanner(r)
		for range f.requests {
			if !scanner.Scan() {
				return
			}
			f.lines <- scanner.Text()
		}
	}()
	return f
}

// Next reads one line. It reports false at end of input or when ctx is done.
func (f *lineFeed) Next(ctx context.Context) (string, bool) {
	select {
	case f.requests <- struct{}{}:
	case <-ctx.Done():
		return "", false
	case line, ok := <-f.lines:
		return line, ok
	}
	select {
	case line, ok := <-f.lines:
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

// Close stops the reader once any pending read returns.
func (f *lineFeed) Close() { close(f.requests) }
