//go:build linux || darwin

package tactile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const ttyHelperEnv = "LILY_TACTILE_TTY_HELPER"

// runTTYHelper runs inside a fresh session whose controlling terminal is a
// pseudo-terminal, and reports what the sudo path read from it.
func runTTYHelper() {
	l := testLauncher(false, nil)
	res := &ExecutionResult{}
	l.runCLI(context.Background(), "read pw; echo got:$pw", true, res)

	fg, err := unix.IoctlGetInt(0, unix.TIOCGPGRP)
	fmt.Printf("timedOut=%v stdout=%q reclaimed=%v\n", res.TimedOut, res.Stdout, err == nil && fg == unix.Getpgrp())
}

func TestRunCLI_SudoReadsPasswordFromTerminal(t *testing.T) {
	if os.Getenv(ttyHelperEnv) == "1" {
		runTTYHelper()
		return
	}

	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pseudo-terminal available: %v", err)
	}
	defer ptmx.Close()

	cmd := exec.Command(os.Args[0], "-test.run=^TestRunCLI_SudoReadsPasswordFromTerminal$")
	cmd.Env = append(os.Environ(), ttyHelperEnv+"=1")
	cmd.Stdin, cmd.Stdout, cmd.Stderr = tty, tty, tty
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true, Ctty: 0}
	require.NoError(t, cmd.Start())
	tty.Close()

	var out bytes.Buffer
	copied := make(chan struct{})
	go func() {
		io.Copy(&out, ptmx)
		close(copied)
	}()

	// Typed ahead; the line discipline holds it until the child reads.
	_, err = ptmx.Write([]byte("hunter2\n"))
	require.NoError(t, err)

	waited := make(chan error, 1)
	go func() { waited <- cmd.Wait() }()
	select {
	case err := <-waited:
		assert.NoError(t, err)
	case <-time.After(20 * time.Second):
		cmd.Process.Kill()
		<-waited
		t.Error("helper did not finish")
	}

	select {
	case <-copied:
	case <-time.After(5 * time.Second):
		ptmx.Close()
		<-copied
	}

	got := out.String()
	assert.Contains(t, got, "timedOut=false")
	assert.Contains(t, got, `stdout="got:hunter2\n"`)
	assert.Contains(t, got, "reclaimed=true")
}
