package agent

import (
	"context"

	"lily/internal/logging"
)

// SafetyVerdict is the gate's decision plus the raw oracle text.
type SafetyVerdict struct {
	Safe bool
	Raw  string
}

// SafetyGate asks the oracle whether a command may run. It fails closed.
type SafetyGate struct {
	oracle Oracle
}

func NewSafetyGate(oracle Oracle) *SafetyGate {
	return &SafetyGate{oracle: oracle}
}

// Check returns Safe only for an explicit SAFE verdict.
func (g *SafetyGate) Check(ctx context.Context, command string) SafetyVerdict {
	reply, err := g.oracle.Complete(ctx, safetyPrompt(command))
	if err != nil {
		logging.AgentWarn("Safety oracle call failed, treating as unsafe: %v", err)
		return SafetyVerdict{Safe: false}
	}
	return SafetyVerdict{Safe: parseSafety(reply), Raw: reply}
}

// parseSafety works on whole words: "UNSAFE" and "NOT SAFE" are unsafe even
// though they contain "SAFE".
func parseSafety(reply string) bool {
	safe := false
	toks := tokens(reply)
	for i, t := range toks {
		switch t {
		case "UNSAFE":
			return false
		case "SAFE":
			if i > 0 && toks[i-1] == "NOT" {
				return false
			}
			safe = true
		}
	}
	return safe
}
