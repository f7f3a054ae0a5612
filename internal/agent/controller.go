package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lily/internal/articulation"
	"lily/internal/logging"
	"lily/internal/store"
	"lily/internal/system"
	"lily/internal/tactile"
)

// Record text for attempts that never reached analysis.
const (
	planningFailedStrategy = "Planning Failed"
	planningFailedCommand  = "N/A"
	planningFailedSummary  = "AI could not generate a command."
	exceptionSummary       = "An exception occurred during execution."
	notAnalyzed            = "Not analyzed."
	noOutput               = "No output."
	exhaustedMessage       = "I tried multiple approaches but couldn't fully accomplish the task."
)

// Collaborators of the controller, one per pipeline stage.
type (
	Planner interface {
		Synthesize(ctx context.Context, req PlanRequest) (AttemptPlan, error)
	}
	Gate interface {
		Check(ctx context.Context, command string) SafetyVerdict
	}
	Launcher interface {
		Launch(ctx context.Context, command string, useSudo bool) *tactile.ExecutionResult
	}
	OutcomeAnalyzer interface {
		Analyze(ctx context.Context, req AnalysisRequest) AnalysisVerdict
	}
	Prober interface {
		Probe(ctx context.Context) system.SystemContext
	}
)

// Deps wires the controller. Ledger is owned by the caller; the controller
// assumes it is the only writer while a run is active.
type Deps struct {
	Planner  Planner
	Gate     Gate
	Launcher Launcher
	Analyzer OutcomeAnalyzer
	Prober   Prober
	Ledger   store.Ledger
	Narrator articulation.Narrator
}

// ControllerConfig bounds a run.
type ControllerConfig struct {
	MaxAttempts      int
	ContextWindow    int // ledger records and failure summaries fed back into planning; negative disables
	OutputCap        int // runes of transcript kept per record
	FailureOutputCap int // runes of transcript carried into the next plan
	CLITimeout       time.Duration
}

// DefaultControllerConfig returns the standard limits.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		MaxAttempts:      3,
		ContextWindow:    5,
		OutputCap:        1000,
		FailureOutputCap: 200,
		CLITimeout:       30 * time.Second,
	}
}

// Result is the outcome of one run.
type Result struct {
	RunID     string
	Succeeded bool
	Attempts  int // records appended during the run
	Cancelled bool
}

// Controller runs the plan, gate, launch, analyze loop for one goal at a time.
type Controller struct {
	config ControllerConfig
	deps   Deps
	now    func() time.Time
}

// NewController creates a controller. Zero config fields take defaults.
// A negative ContextWindow turns planning context off.
func NewController(config ControllerConfig, deps Deps) *Controller {
	def := DefaultControllerConfig()
	if config.MaxAttempts < 1 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.ContextWindow == 0 {
		config.ContextWindow = def.ContextWindow
	}
	if config.OutputCap <= 0 {
		config.OutputCap = def.OutputCap
	}
	if config.FailureOutputCap <= 0 {
		config.FailureOutputCap = def.FailureOutputCap
	}
	if config.CLITimeout <= 0 {
		config.CLITimeout = def.CLITimeout
	}
	if deps.Narrator == nil {
		deps.Narrator = articulation.Discard{}
	}
	return &Controller{config: config, deps: deps, now: time.Now}
}

// runState is the per-run working set, discarded when the run ends.
type runState struct {
	id       string
	goal     string
	system   system.SystemContext
	failures []string
	audit    *logging.AuditLogger
}

// RunTask runs goal and reports success within the attempt budget.
func (c *Controller) RunTask(ctx context.Context, goal string) bool {
	return c.Run(ctx, goal).Succeeded
}

// Run executes up to MaxAttempts attempts for goal. Every completed attempt
// appends exactly one ledger record. A cancelled ctx ends the run without
// recording the in-flight attempt.
func (c *Controller) Run(ctx context.Context, goal string) Result {
	st := &runState{id: uuid.NewString(), goal: goal}
	st.audit = logging.AuditWithRun(st.id)
	log := logging.Get(logging.CategoryAgent).With("run_id", st.id)

	start := time.Now()
	result := Result{RunID: st.id}
	st.audit.RunStart(goal)
	log.Info("Task started: %q (max %d attempts)", goal, c.config.MaxAttempts)

	st.system = c.probe(ctx)

	for n := 1; n <= c.config.MaxAttempts; n++ {
		if ctx.Err() != nil {
			return c.cancelled(st, result, n)
		}
		c.deps.Narrator.Note(fmt.Sprintf("Attempt %d of %d", n, c.config.MaxAttempts))

		attemptStart := time.Now()
		rec := c.attempt(ctx, st, n)
		if ctx.Err() != nil {
			return c.cancelled(st, result, n)
		}

		rec.Timestamp = c.now()
		if err := c.deps.Ledger.Append(rec); err != nil {
			log.Error("Failed to record attempt %d: %v", n, err)
		}
		result.Attempts = n
		st.audit.AttemptComplete(n, rec.CommandExecuted, string(rec.Status), time.Since(attemptStart))

		if rec.Status == store.StatusSuccess {
			c.deps.Narrator.Say(articulation.ToneSuccess, "Perfect! Task accomplished successfully.")
			result.Succeeded = true
			st.audit.RunEnd(true, n, time.Since(start))
			log.Info("Task succeeded on attempt %d", n)
			return result
		}
		if n < c.config.MaxAttempts {
			c.deps.Narrator.Note("Analyzing the result and trying a different approach...")
		}
	}

	c.deps.Narrator.Say(articulation.ToneError, exhaustedMessage)
	st.audit.RunEnd(false, result.Attempts, time.Since(start))
	log.Warn("Task exhausted after %d attempts", result.Attempts)
	return result
}

func (c *Controller) cancelled(st *runState, result Result, n int) Result {
	result.Cancelled = true
	st.audit.RunCancelled(n)
	logging.Agent("Task cancelled during attempt %d", n)
	return result
}

// attempt runs one plan, gate, launch, analyze cycle and returns its record.
// Panics from any stage are converted into a FAILED record.
func (c *Controller) attempt(ctx context.Context, st *runState, n int) (rec store.AttemptRecord) {
	rec = store.AttemptRecord{
		RunID:           st.id,
		UserQuery:       st.goal,
		Attempt:         n,
		Strategy:        "No explanation generated.",
		CommandExecuted: "No command generated.",
		Output:          noOutput,
	}

	defer func() {
		if r := recover(); r != nil {
			logging.AgentError("Attempt %d panicked: %v", n, r)
			c.deps.Narrator.Note(fmt.Sprintf("An unexpected error occurred: %v", r))
			st.failures = append(st.failures, fmt.Sprintf("Attempt %d: An unexpected error occurred: %v", n, r))
			rec.Status = store.StatusFailed
			rec.Summary = exceptionSummary
			rec.Issues = fmt.Sprint(r)
			rec.Output = noOutput
		}
	}()

	// PLANNING
	plan, err := c.deps.Planner.Synthesize(ctx, PlanRequest{
		Goal:     st.goal,
		System:   st.system,
		History:  c.historyContext(),
		Failures: c.recentFailures(st.failures),
	})
	if err != nil {
		c.deps.Narrator.Say(articulation.ToneWarning, "I couldn't devise a command for this task.")
		rec.Strategy = planningFailedStrategy
		rec.CommandExecuted = planningFailedCommand
		rec.Status = store.StatusFailed
		rec.Summary = planningFailedSummary
		rec.Issues = notAnalyzed
		return rec
	}
	rec.Strategy = plan.Explanation
	rec.CommandExecuted = plan.Command

	// SAFETY_CHECK
	verdict := c.deps.Gate.Check(ctx, plan.Command)
	st.audit.SafetyCheck(n, plan.Command, verdict.Safe)
	if !verdict.Safe {
		c.deps.Narrator.Say(articulation.ToneWarning, "The suggested command might be unsafe. I'll try a different approach.")
		reason := "Unsafe command blocked: " + plan.Command
		st.failures = append(st.failures, fmt.Sprintf("Attempt %d: %s", n, reason))
		rec.Status = store.StatusFailed
		rec.Summary = reason
		rec.Issues = notAnalyzed
		return rec
	}
	c.deps.Narrator.Note("Strategy: " + plan.Explanation)
	st.audit.AttemptStart(n, plan.Command)

	// EXECUTING
	c.deps.Narrator.Note("Executing: " + plan.Command)
	res := c.deps.Launcher.Launch(ctx, plan.Command, tactile.NeedsSudo(plan.Command))
	if ctx.Err() != nil {
		return rec
	}

	// ANALYZING
	analysis, transcript := c.judge(ctx, res)

	rec.Status = analysis.Status
	rec.Summary = analysis.Summary
	rec.Issues = analysis.Issues
	if transcript != "" {
		rec.Output = truncate(transcript, c.config.OutputCap)
	}

	if analysis.Status != store.StatusSuccess {
		st.failures = append(st.failures, fmt.Sprintf("Attempt %d: Command: `%s`, Status: %s, Issues: %s, Output: %s",
			n, plan.Command, analysis.Status, analysis.Issues, truncate(transcript, c.config.FailureOutputCap)))
	}
	return rec
}

// judge turns an execution result into a verdict. Timeouts and launch
// errors are decided locally; everything else goes to the analyzer.
func (c *Controller) judge(ctx context.Context, res *tactile.ExecutionResult) (AnalysisVerdict, string) {
	if res.TimedOut {
		msg := fmt.Sprintf("Command timed out after %s", formatSeconds(c.config.CLITimeout))
		c.deps.Narrator.Say(articulation.ToneError, msg)
		return AnalysisVerdict{
			Status:         store.StatusFailed,
			Summary:        msg,
			Details:        msg,
			Issues:         "Timeout",
			Recommendation: "Try a simpler approach",
		}, msg
	}
	if res.LaunchError != "" {
		msg := "Execution error: " + res.LaunchError
		c.deps.Narrator.Say(articulation.ToneError, msg)
		return AnalysisVerdict{
			Status:         store.StatusFailed,
			Summary:        msg,
			Details:        msg,
			Issues:         res.LaunchError,
			Recommendation: "Try alternative command",
		}, msg
	}

	transcript := res.Transcript()
	v := c.deps.Analyzer.Analyze(ctx, AnalysisRequest{
		Command:    res.Command,
		Transcript: transcript,
		ExitCode:   res.ExitCode,
		IsGUI:      res.IsGUI,
	})
	c.narrateOutcome(res, v)
	return v, transcript
}

func (c *Controller) narrateOutcome(res *tactile.ExecutionResult, v AnalysisVerdict) {
	n := c.deps.Narrator
	n.Note("Command analysis: " + v.Summary)

	switch v.Status {
	case store.StatusSuccess:
		if res.IsGUI {
			n.Say(articulation.ToneSuccess, "Application is running! You can use it now.")
		} else {
			n.Say(articulation.ToneSuccess, "Task completed successfully!")
		}
		if v.Details != "" && !strings.Contains(strings.ToLower(v.Details), "no details") {
			n.Note("Details: " + truncate(v.Details, 100))
		}
	case store.StatusPartial:
		n.Say(articulation.ToneWarning, "Task partially completed with some issues.")
		n.Note("What happened: " + truncate(v.Details, 100))
		if hasIssues(v.Issues) {
			n.Note("Issues found: " + truncate(v.Issues, 100))
		}
	default:
		n.Say(articulation.ToneError, "Command execution encountered problems.")
		n.Note("Problem: " + truncate(v.Details, 100))
		if hasIssues(v.Issues) {
			n.Note("Specific issues: " + truncate(v.Issues, 100))
		}
	}

	// A successful GUI launch has nothing worth showing.
	if res.IsGUI && v.Status == store.StatusSuccess {
		return
	}
	if strings.TrimSpace(res.Stdout) != "" {
		n.Note("Output:\n" + truncate(res.Stdout, 500))
	}
	if strings.TrimSpace(res.Stderr) != "" {
		n.Note("Errors/Warnings:\n" + truncate(res.Stderr, 300))
	}
}

// probe gathers system facts. A panicking prober yields unknown facts.
func (c *Controller) probe(ctx context.Context) (sc system.SystemContext) {
	defer func() {
		if r := recover(); r != nil {
			logging.AgentError("System probe panicked: %v", r)
			sc = system.UnknownContext()
		}
	}()
	return c.deps.Prober.Probe(ctx)
}

// recentFailures returns the last ContextWindow failure summaries.
func (c *Controller) recentFailures(failures []string) []string {
	if c.config.ContextWindow < 1 {
		return nil
	}
	if len(failures) > c.config.ContextWindow {
		failures = failures[len(failures)-c.config.ContextWindow:]
	}
	return append([]string(nil), failures...)
}

// historyContext renders the recent ledger window; read errors yield no history.
func (c *Controller) historyContext() string {
	if c.config.ContextWindow < 1 {
		return ""
	}
	recs, err := c.deps.Ledger.Recent(c.config.ContextWindow)
	if err != nil {
		logging.AgentWarn("Could not read ledger context: %v", err)
		return ""
	}
	return store.FormatContext(recs)
}

func hasIssues(issues string) bool {
	return issues != "" && !strings.Contains(strings.ToLower(issues), "none")
}

func formatSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%d seconds", int(d/time.Second))
	}
	return d.String()
}
