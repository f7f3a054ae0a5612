//go:build windows

package tactile

import (
	"errors"
	"io"
	"os"
	"os/exec"
)

// Windows has no POSIX process groups or sessions; the launcher falls back
// to killing the direct child only.
func setupProcessGroup(cmd *exec.Cmd) {}

func setupSession(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func foregroundTerminal(io.Reader) int { return -1 }

func handTerminal(*exec.Cmd, int) {}

func reclaimTerminal(int) error { return nil }
