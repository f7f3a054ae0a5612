package agent

import (
	"context"

	"lily/internal/logging"
)

// GUIClassifier asks the oracle whether a command opens a graphical app.
// It satisfies tactile.GUIDetector.
type GUIClassifier struct {
	oracle Oracle
}

func NewGUIClassifier(oracle Oracle) *GUIClassifier {
	return &GUIClassifier{oracle: oracle}
}

// IsGUI defaults to CLI on any failure, which keeps the hard timeout in force.
func (c *GUIClassifier) IsGUI(ctx context.Context, command string) bool {
	reply, err := c.oracle.Complete(ctx, guiPrompt(command))
	if err != nil {
		logging.AgentWarn("GUI classification failed, assuming CLI: %v", err)
		return false
	}
	return parseGUI(reply)
}

// parseGUI: CLI wins ties.
func parseGUI(reply string) bool {
	gui := false
	for _, t := range tokens(reply) {
		switch t {
		case "CLI":
			return false
		case "GUI":
			gui = true
		}
	}
	return gui
}
