package agent

import (
	"context"
	"strings"

	"lily/internal/logging"
	"lily/internal/store"
)

// Fallback text for analysis fields the oracle did not provide.
const (
	fallbackSummary        = "Command executed"
	fallbackDetails        = "No details available"
	fallbackIssues         = "None detected"
	fallbackRecommendation = "Continue"
)

// AnalysisRequest is what the analyzer judges.
type AnalysisRequest struct {
	Command    string
	Transcript string
	ExitCode   *int
	IsGUI      bool
}

// AnalysisVerdict is the parsed judgment. Status UNKNOWN means the reply
// could not be parsed; the oracle never chooses it.
type AnalysisVerdict struct {
	Status         store.Status
	Summary        string
	Details        string
	Issues         string
	Recommendation string
}

// Analyzer asks the oracle to judge an execution.
type Analyzer struct {
	oracle Oracle
}

func NewAnalyzer(oracle Oracle) *Analyzer {
	return &Analyzer{oracle: oracle}
}

var analysisLabels = newFieldLabels("STATUS", "SUMMARY", "DETAILS", "ISSUES", "RECOMMENDATION")

// Analyze never fails; transport errors and garbage replies degrade to UNKNOWN.
func (a *Analyzer) Analyze(ctx context.Context, req AnalysisRequest) AnalysisVerdict {
	reply, err := a.oracle.Complete(ctx, analyzePrompt(req))
	if err != nil {
		logging.AgentWarn("Analysis oracle call failed: %v", err)
		reply = ""
	}
	return parseAnalysis(reply)
}

func parseAnalysis(reply string) AnalysisVerdict {
	f := sections(reply, analysisLabels)
	v := AnalysisVerdict{
		Status:         normalizeStatus(firstLine(f["STATUS"])),
		Summary:        orDefault(firstLine(f["SUMMARY"]), fallbackSummary),
		Details:        orDefault(f["DETAILS"], fallbackDetails),
		Issues:         orDefault(f["ISSUES"], fallbackIssues),
		Recommendation: orDefault(f["RECOMMENDATION"], fallbackRecommendation),
	}
	return v
}

func normalizeStatus(raw string) store.Status {
	toks := tokens(stripMarkdown(raw))
	if len(toks) == 0 {
		return store.StatusUnknown
	}
	switch toks[0] {
	case "SUCCESS", "SUCCESSFUL", "SUCCEEDED":
		return store.StatusSuccess
	case "PARTIAL", "PARTIALLY":
		return store.StatusPartial
	case "FAILED", "FAILURE", "FAIL", "ERROR":
		return store.StatusFailed
	default:
		return store.StatusUnknown
	}
}

func orDefault(s, def string) string {
	s = stripMarkdown(s)
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
