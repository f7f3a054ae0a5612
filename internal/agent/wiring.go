package agent

import (
	"lily/internal/articulation"
	"lily/internal/config"
	"lily/internal/store"
	"lily/internal/system"
	"lily/internal/tactile"
)

// ControllerConfigFrom maps the engine section of cfg.
func ControllerConfigFrom(cfg *config.Config) ControllerConfig {
	return ControllerConfig{
		MaxAttempts:      cfg.Engine.MaxAttempts,
		ContextWindow:    cfg.Engine.ContextWindow,
		OutputCap:        cfg.Engine.OutputCap,
		FailureOutputCap: cfg.Engine.FailureOutputCap,
		CLITimeout:       cfg.GetCLITimeout(),
	}
}

// LauncherConfigFrom maps the engine section of cfg onto launcher settings.
func LauncherConfigFrom(cfg *config.Config, narrator articulation.Narrator) tactile.Config {
	lc := tactile.DefaultConfig()
	lc.Shell = cfg.Engine.Shell
	lc.GUIGracePeriod = cfg.GetGUIGracePeriod()
	lc.CLITimeout = cfg.GetCLITimeout()
	if narrator != nil {
		lc.Notify = func(msg string) { narrator.Say(articulation.ToneInfo, msg) }
	}
	return lc
}

// NewControllerFromConfig wires the production pipeline around one oracle.
func NewControllerFromConfig(cfg *config.Config, oracle Oracle, ledger store.Ledger, narrator articulation.Narrator) *Controller {
	return NewController(ControllerConfigFrom(cfg), Deps{
		Planner:  NewSynthesizer(oracle),
		Gate:     NewSafetyGate(oracle),
		Launcher: tactile.NewLauncher(LauncherConfigFrom(cfg, narrator), NewGUIClassifier(oracle)),
		Analyzer: NewAnalyzer(oracle),
		Prober:   system.NewProber(),
		Ledger:   ledger,
		Narrator: narrator,
	})
}
