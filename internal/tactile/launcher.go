package tactile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"lily/internal/logging"
)

// Config controls how the launcher runs commands.
type Config struct {
	Shell          string
	GUIGracePeriod time.Duration
	CLITimeout     time.Duration
	MaxOutputBytes int64
	// WaitDelay bounds how long Wait waits for output pipes after exit or kill.
	WaitDelay time.Duration
	// Stdin is attached to sudo-wrapped commands so the password prompt works.
	Stdin io.Reader
	// Notify receives short user-facing progress messages. Optional.
	Notify func(msg string)
}

// DefaultConfig returns the standard launch settings.
func DefaultConfig() Config {
	return Config{
		Shell:          "/bin/sh",
		GUIGracePeriod: 3 * time.Second,
		CLITimeout:     30 * time.Second,
		MaxOutputBytes: 1 << 20,
		WaitDelay:      2 * time.Second,
		Stdin:          os.Stdin,
	}
}

// Launcher runs commands, branching on GUI classification.
type Launcher struct {
	config   Config
	detector GUIDetector
}

// NewLauncher creates a launcher. A nil detector treats every command as CLI.
func NewLauncher(config Config, detector GUIDetector) *Launcher {
	def := DefaultConfig()
	if config.Shell == "" {
		config.Shell = def.Shell
	}
	if config.GUIGracePeriod <= 0 {
		config.GUIGracePeriod = def.GUIGracePeriod
	}
	if config.CLITimeout <= 0 {
		config.CLITimeout = def.CLITimeout
	}
	if config.MaxOutputBytes <= 0 {
		config.MaxOutputBytes = def.MaxOutputBytes
	}
	if config.WaitDelay <= 0 {
		config.WaitDelay = def.WaitDelay
	}
	logging.TactileDebug("Creating Launcher: shell=%s grace=%s timeout=%s", config.Shell, config.GUIGracePeriod, config.CLITimeout)
	return &Launcher{config: config, detector: detector}
}

// Launch classifies and runs command. It never returns a Go error: failures
// to start are folded into the result's LaunchError and Stderr.
func (l *Launcher) Launch(ctx context.Context, command string, useSudo bool) *ExecutionResult {
	timer := logging.StartTimer(logging.CategoryTactile, "Launch")
	defer timer.Stop()

	result := &ExecutionResult{Command: command}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if l.detector != nil {
		result.IsGUI = l.detector.IsGUI(ctx, command)
	}

	full := command
	if useSudo {
		l.notify("Please enter your system password in the terminal.")
		full = wrapSudo(l.config.Shell, command)
	}

	logging.Tactile("Executing (gui=%v sudo=%v): %s", result.IsGUI, useSudo, command)
	if result.IsGUI {
		l.notify("Launching GUI application...")
		l.launchGUI(ctx, full, useSudo, result)
	} else {
		l.runCLI(ctx, full, useSudo, result)
	}
	return result
}

// launchGUI starts the command in its own session and checks it is still
// alive after the grace period. A live process is left running.
func (l *Launcher) launchGUI(ctx context.Context, full string, useSudo bool, result *ExecutionResult) {
	cmd := exec.Command(l.config.Shell, "-c", full)
	setupSession(cmd)
	cmd.WaitDelay = l.config.WaitDelay
	if useSudo {
		cmd.Stdin = l.config.Stdin
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: l.config.MaxOutputBytes}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: l.config.MaxOutputBytes}
	cmd.Stdout = stdoutLimited
	cmd.Stderr = stderrLimited

	if err := cmd.Start(); err != nil {
		l.launchFailed(result, err)
		return
	}
	result.PID = cmd.Process.Pid

	// Reaper: always collects the child, even after we stop watching it.
	done := make(chan struct{})
	var waitErr error
	go func() {
		waitErr = cmd.Wait()
		close(done)
	}()

	grace := time.NewTimer(l.config.GUIGracePeriod)
	defer grace.Stop()

	select {
	case <-grace.C:
		result.Stdout = fmt.Sprintf("GUI application launched successfully (PID: %d)", result.PID)
		result.ExitCode = intPtr(0)
		logging.Tactile("GUI application running after %s: pid=%d", l.config.GUIGracePeriod, result.PID)
	case <-done:
		result.Stdout = stdoutBuf.String()
		result.Stderr = stderrBuf.String()
		result.Truncated = stdoutLimited.truncated || stderrLimited.truncated
		result.ExitCode = intPtr(exitCodeOf(cmd, waitErr))
		if *result.ExitCode != 0 {
			logging.TactileWarn("GUI application exited early: pid=%d exit=%d", result.PID, *result.ExitCode)
		}
	case <-ctx.Done():
		// Detached GUI processes are allowed to outlive cancellation.
		result.LaunchError = ctx.Err().Error()
		logging.TactileDebug("GUI grace wait cancelled: pid=%d", result.PID)
	}
}

// runCLI runs the command to completion under the hard timeout, killing its
// whole process group when the timeout or ctx fires. Sudo-wrapped commands
// started from our foreground terminal get the terminal until they exit.
func (l *Launcher) runCLI(ctx context.Context, full string, useSudo bool, result *ExecutionResult) {
	execCtx, cancel := context.WithTimeout(ctx, l.config.CLITimeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, l.config.Shell, "-c", full)
	tty := -1
	if useSudo {
		cmd.Stdin = l.config.Stdin
		tty = foregroundTerminal(l.config.Stdin)
	}
	if tty >= 0 {
		// A background group reading the terminal is stopped by SIGTTIN.
		handTerminal(cmd, tty)
		defer func() {
			if err := reclaimTerminal(tty); err != nil {
				logging.TactileWarn("Could not reclaim terminal: %v", err)
			}
		}()
	} else {
		setupProcessGroup(cmd)
	}
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = l.config.WaitDelay

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: l.config.MaxOutputBytes}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: l.config.MaxOutputBytes}
	cmd.Stdout = stdoutLimited
	cmd.Stderr = stderrLimited

	if err := cmd.Start(); err != nil {
		l.launchFailed(result, err)
		return
	}
	result.PID = cmd.Process.Pid
	err := cmd.Wait()

	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()
	if stdoutLimited.truncated || stderrLimited.truncated {
		result.Truncated = true
		logging.TactileWarn("Command output truncated: %d bytes discarded", stdoutLimited.discarded+stderrLimited.discarded)
	}

	switch {
	case ctx.Err() != nil:
		result.LaunchError = ctx.Err().Error()
		logging.TactileDebug("Command cancelled: pid=%d", result.PID)
	case errors.Is(execCtx.Err(), context.DeadlineExceeded):
		result.TimedOut = true
		logging.TactileWarn("Command killed (timeout): pid=%d after %s", result.PID, l.config.CLITimeout)
	case err == nil:
		result.ExitCode = intPtr(0)
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = intPtr(exitErr.ExitCode())
			logging.TactileDebug("Command exited non-zero: %d", exitErr.ExitCode())
		} else {
			l.launchFailed(result, err)
		}
	}
}

func (l *Launcher) launchFailed(result *ExecutionResult, err error) {
	result.LaunchError = err.Error()
	msg := "Execution error: " + err.Error()
	if result.Stderr != "" {
		result.Stderr += "\n" + msg
	} else {
		result.Stderr = msg
	}
	logging.TactileError("Command failed to run: %v", err)
}

func (l *Launcher) notify(msg string) {
	if l.config.Notify != nil {
		l.config.Notify(msg)
	}
}

func exitCodeOf(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if waitErr != nil {
		return -1
	}
	return 0
}

// wrapSudo runs command under sudo reading the password from stdin.
func wrapSudo(shell, command string) string {
	return fmt.Sprintf("sudo -S %s -c %s", shell, shellQuote(command))
}

// shellQuote single-quotes s for POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// limitedWriter is an io.Writer that limits total bytes written.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
	discarded int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		lw.discarded += int64(n)
		return n, nil // Pretend we wrote it
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		lw.discarded += int64(n) - remaining
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err // Return original length to avoid "short write" errors
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
