package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"lily/internal/logging"
	"lily/internal/system"
)

const defaultExplanation = "Attempting to solve the task"

// AttemptPlan is one proposed command. Command is never empty.
type AttemptPlan struct {
	Explanation string
	Command     string
}

// PlanRequest carries everything the planner sees for one attempt.
type PlanRequest struct {
	Goal     string
	System   system.SystemContext
	History  string   // formatted recent ledger context
	Failures []string // failure summaries from earlier attempts of this run
}

// Synthesizer turns a goal into a single shell command.
type Synthesizer struct {
	oracle Oracle
}

func NewSynthesizer(oracle Oracle) *Synthesizer {
	return &Synthesizer{oracle: oracle}
}

var planLabels = newFieldLabels("Explanation", "Command")

// Synthesize asks the oracle for a plan. Every failure, including transport
// errors, is reported as ErrNoPlan.
func (s *Synthesizer) Synthesize(ctx context.Context, req PlanRequest) (AttemptPlan, error) {
	reply, err := s.oracle.Complete(ctx, synthesizePrompt(req))
	if err != nil {
		logging.AgentWarn("Planning oracle call failed: %v", err)
		return AttemptPlan{}, fmt.Errorf("%w: %v", ErrNoPlan, err)
	}
	plan, ok := parsePlan(reply)
	if !ok {
		logging.AgentDebug("Planning reply had no command: %q", truncate(reply, 200))
		return AttemptPlan{}, ErrNoPlan
	}
	return plan, nil
}

func parsePlan(reply string) (AttemptPlan, bool) {
	fields := sections(reply, planLabels)

	raw, ok := fields["Command"]
	if !ok {
		return AttemptPlan{}, false
	}
	command := cleanCommand(raw)
	if command == "" {
		return AttemptPlan{}, false
	}

	explanation := stripMarkdown(fields["Explanation"])
	if explanation == "" {
		explanation = defaultExplanation
	}
	return AttemptPlan{Explanation: explanation, Command: command}, true
}

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:[A-Za-z0-9_-]*[ \t]*\n)?(.*?)```")
	fenceMarker = regexp.MustCompile("```(?:[A-Za-z0-9_-]*[ \t]*\n)?")
)

// cleanCommand strips code fences and backticks and collapses whitespace.
// When the value holds a fenced block, only the block is kept; otherwise
// only the first non-empty line, so trailing prose never reaches the shell.
func cleanCommand(raw string) string {
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	} else {
		raw = firstLine(fenceMarker.ReplaceAllString(raw, ""))
	}
	raw = fenceMarker.ReplaceAllString(raw, "")
	raw = strings.ReplaceAll(raw, "`", "")
	raw = strings.Join(strings.Fields(raw), " ")
	return strings.TrimSpace(stripBold(raw))
}

func stripBold(s string) string {
	s = strings.TrimPrefix(s, "**")
	return strings.TrimSuffix(s, "**")
}
