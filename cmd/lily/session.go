package main

import (
	"context"
	"fmt"
	"io"

	"lily/internal/agent"
	"lily/internal/articulation"
	"lily/internal/config"
	"lily/internal/logging"
	"lily/internal/perception"
	"lily/internal/store"
)

// newOracle builds the oracle transport from cfg. Tests replace it.
var newOracle = func(ctx context.Context, cfg *config.Config) (agent.Oracle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := perception.NewClientFromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle client: %w", err)
	}
	return client, nil
}

func openLedger(cfg *config.Config) (store.Ledger, error) {
	ledger, err := store.Open(cfg.Ledger.Backend, cfg.Ledger.Path, cfg.Ledger.MaxRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return ledger, nil
}

// session owns the long-lived pieces shared by every task: oracle, ledger
// and narrator. It builds a fresh controller per task so engine settings
// reloaded between tasks take effect.
type session struct {
	cfg      *config.Config
	oracle   agent.Oracle
	ledger   store.Ledger
	narrator articulation.Narrator
}

func newSession(ctx context.Context, cfg *config.Config, out io.Writer) (*session, error) {
	oracle, err := newOracle(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ledger, err := openLedger(cfg)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:      cfg,
		oracle:   oracle,
		ledger:   ledger,
		narrator: articulation.NewConsoleNarrator(out),
	}, nil
}

// Run implements agent.Runner.
func (s *session) Run(ctx context.Context, goal string) agent.Result {
	ctrl := agent.NewControllerFromConfig(s.cfg, s.oracle, s.ledger, s.narrator)
	return ctrl.Run(ctx, goal)
}

// applyEngine swaps in reloaded engine limits. Oracle and ledger settings
// need a restart.
func (s *session) applyEngine(next *config.Config) {
	engine := next.Engine
	if maxAttempts > 0 {
		engine.MaxAttempts = maxAttempts
	}
	s.cfg.Engine = engine
	logging.Config("Engine settings reloaded: max_attempts=%d cli_timeout=%s", engine.MaxAttempts, s.cfg.GetCLITimeout())
}

func (s *session) Close() error {
	if tc, ok := s.oracle.(*perception.TracingClient); ok {
		st := tc.Stats()
		logging.Perception("Oracle usage: model=%s calls=%d failures=%d total=%v", tc.Model(), st.Calls, st.Failures, st.TotalDuration)
	}
	return s.ledger.Close()
}
