package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lily/internal/store"
)

func TestSynthesizer_BuildsPromptFromRequest(t *testing.T) {
	oracle := newScriptedOracle().on(markerSynthesize, "Explanation: look\nCommand: ls")
	s := NewSynthesizer(oracle)

	plan, err := s.Synthesize(context.Background(), PlanRequest{
		Goal:     "list my files",
		System:   testSystem(),
		History:  "Task: \"old\" (Attempt 1)",
		Failures: []string{"Attempt 1: Unsafe command blocked: rm -rf ~"},
	})
	require.NoError(t, err)
	assert.Equal(t, AttemptPlan{Explanation: "look", Command: "ls"}, plan)

	prompt := oracle.calls(markerSynthesize)[0]
	assert.Contains(t, prompt, `USER REQUEST: "list my files"`)
	assert.Contains(t, prompt, "- Desktop Environment: GNOME")
	assert.Contains(t, prompt, `Task: "old" (Attempt 1)`)
	assert.Contains(t, prompt, "Attempt 1: Unsafe command blocked: rm -rf ~")
}

func TestSynthesizer_FirstAttemptPlaceholders(t *testing.T) {
	oracle := newScriptedOracle().on(markerSynthesize, "Command: ls")
	_, err := NewSynthesizer(oracle).Synthesize(context.Background(), PlanRequest{Goal: "g"})
	require.NoError(t, err)

	prompt := oracle.calls(markerSynthesize)[0]
	assert.Contains(t, prompt, "No recent commands")
	assert.Contains(t, prompt, "None - this is the first attempt")
}

func TestSynthesizer_NoPlan(t *testing.T) {
	ctx := context.Background()

	_, err := NewSynthesizer(newScriptedOracle().on(markerSynthesize, "Sorry, I can't.")).Synthesize(ctx, PlanRequest{Goal: "g"})
	assert.ErrorIs(t, err, ErrNoPlan)

	_, err = NewSynthesizer(newScriptedOracle().fail(markerSynthesize, errors.New("quota"))).Synthesize(ctx, PlanRequest{Goal: "g"})
	assert.ErrorIs(t, err, ErrNoPlan)
	assert.Contains(t, err.Error(), "quota")
}

func TestSafetyGate(t *testing.T) {
	ctx := context.Background()

	v := NewSafetyGate(newScriptedOracle().on(markerSafety, "SAFE")).Check(ctx, "ls")
	assert.True(t, v.Safe)
	assert.Equal(t, "SAFE", v.Raw)

	v = NewSafetyGate(newScriptedOracle().on(markerSafety, "UNSAFE")).Check(ctx, "rm -rf /")
	assert.False(t, v.Safe)

	v = NewSafetyGate(newScriptedOracle().fail(markerSafety, errors.New("timeout"))).Check(ctx, "ls")
	assert.False(t, v.Safe, "transport failure must fail closed")
}

func TestGUIClassifier(t *testing.T) {
	ctx := context.Background()
	assert.True(t, NewGUIClassifier(newScriptedOracle().on(markerGUI, "GUI")).IsGUI(ctx, "firefox"))
	assert.False(t, NewGUIClassifier(newScriptedOracle().on(markerGUI, "CLI")).IsGUI(ctx, "ls"))
	assert.False(t, NewGUIClassifier(newScriptedOracle().fail(markerGUI, errors.New("down"))).IsGUI(ctx, "firefox"))
}

func TestAnalyzer(t *testing.T) {
	oracle := newScriptedOracle().on(markerAnalyze, "STATUS: SUCCESS\nSUMMARY: ran")
	v := NewAnalyzer(oracle).Analyze(context.Background(), AnalysisRequest{
		Command:    "nautilus",
		Transcript: "No output produced",
		ExitCode:   exit(0),
		IsGUI:      true,
	})
	assert.Equal(t, store.StatusSuccess, v.Status)
	assert.Equal(t, "ran", v.Summary)

	prompt := oracle.calls(markerAnalyze)[0]
	assert.Contains(t, prompt, `COMMAND EXECUTED: "nautilus"`)
	assert.Contains(t, prompt, "EXIT CODE: 0")
	assert.Contains(t, prompt, "IS GUI APPLICATION: True")
}

func TestAnalyzer_UnknownExitCodeAndFailure(t *testing.T) {
	oracle := newScriptedOracle().fail(markerAnalyze, errors.New("down"))
	v := NewAnalyzer(oracle).Analyze(context.Background(), AnalysisRequest{Command: "x"})

	assert.Equal(t, store.StatusUnknown, v.Status)
	assert.Equal(t, fallbackSummary, v.Summary)
	assert.Contains(t, oracle.calls(markerAnalyze)[0], "EXIT CODE: Unknown")
}

func TestSummarizer(t *testing.T) {
	ctx := context.Background()

	msg, err := NewSummarizer(newScriptedOracle()).Summarize(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, NoHistoryMessage, msg)

	var recs []store.AttemptRecord
	for i := 1; i <= 12; i++ {
		recs = append(recs, store.AttemptRecord{UserQuery: fmt.Sprintf("goal-%02d", i), Attempt: 1, Status: store.StatusSuccess})
	}
	oracle := newScriptedOracle().on(markerSummarize, "12 commands, all fine.")
	msg, err = NewSummarizer(oracle).Summarize(ctx, recs)
	require.NoError(t, err)
	assert.Equal(t, "12 commands, all fine.", msg)

	prompt := oracle.calls(markerSummarize)[0]
	assert.NotContains(t, prompt, "goal-02")
	assert.Contains(t, prompt, "goal-03")
	assert.Contains(t, prompt, "goal-12")
	assert.Equal(t, 10, strings.Count(prompt, `"user_query"`))

	_, err = NewSummarizer(newScriptedOracle().fail(markerSummarize, errors.New("down"))).Summarize(ctx, recs)
	assert.ErrorContains(t, err, "could not analyze execution history")
}
