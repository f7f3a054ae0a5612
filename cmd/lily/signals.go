package main

import (
	"os"
	"os/signal"
	"syscall"

	"lily/internal/agent"
	"lily/internal/logging"
)

// forwardInterrupts raises the monitor's interrupt flag on SIGINT while a
// task is running. SIGINT while idle, and SIGTERM at any time, call idle.
// The returned func stops forwarding.
func forwardInterrupts(m *agent.Monitor, idle func()) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == os.Interrupt && m.Busy() {
					logging.Agent("Interrupt received, cancelling current task")
					m.Interrupt().Set()
					continue
				}
				logging.Agent("Received %s, shutting down", sig)
				idle()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
