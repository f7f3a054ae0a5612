package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	UseLogger(zap.New(core))
	t.Cleanup(func() { UseLogger(nil) })
	return logs
}

func TestAllCategoriesLog(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	categories := []Category{
		CategoryBoot, CategoryConfig, CategoryAgent, CategoryPerception,
		CategoryTactile, CategoryStore, CategorySystem,
	}
	for _, cat := range categories {
		Get(cat).Info("hello from %s", cat)
	}

	entries := logs.All()
	require.Len(t, entries, len(categories))
	for i, cat := range categories {
		assert.Equal(t, string(cat), entries[i].LoggerName)
		assert.Equal(t, "hello from "+string(cat), entries[i].Message)
	}
}

func TestConvenienceFunctionsRouteToCategory(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Boot("b")
	ConfigWarn("c")
	AgentDebug("a")
	PerceptionError("p")
	TactileDebug("t")
	StoreWarn("s")
	SystemDebug("y")

	names := make([]string, 0)
	for _, e := range logs.All() {
		names = append(names, e.LoggerName)
	}
	assert.Equal(t, []string{"boot", "config", "agent", "perception", "tactile", "store", "system"}, names)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[3].Level)
}

func TestLevelFiltering(t *testing.T) {
	logs := observe(t, zapcore.WarnLevel)

	Get(CategoryAgent).Debug("hidden")
	Get(CategoryAgent).Info("hidden")
	Get(CategoryAgent).Warn("shown")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestWithAddsFields(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Get(CategoryAgent).With("run_id", "abc").Info("attempt %d", 2)

	entry := logs.All()[0]
	assert.Equal(t, "attempt 2", entry.Message)
	assert.Equal(t, "abc", entry.ContextMap()["run_id"])
}

func TestDisabledIsNop(t *testing.T) {
	require.NoError(t, Initialize(Options{Enabled: false}))
	t.Cleanup(func() { UseLogger(nil) })

	// Must not panic and must not create files.
	Get(CategoryBoot).Error("nothing")
	Sync()
}

func TestInitializeWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lily.log")
	require.NoError(t, Initialize(Options{Enabled: true, Level: "debug", Format: "json", File: path}))
	t.Cleanup(func() { UseLogger(nil) })

	Get(CategoryTactile).Info("launched pid=%d", 42)
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "launched pid=42")
	assert.Contains(t, string(data), `"logger":"tactile"`)
}

func TestInitializeBadLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lily.log")
	require.NoError(t, Initialize(Options{Enabled: true, Level: "chatty", File: path}))
	t.Cleanup(func() { UseLogger(nil) })

	Get(CategoryAgent).Debug("dropped")
	Get(CategoryAgent).Info("kept")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestConcurrentGet(t *testing.T) {
	observe(t, zapcore.InfoLevel)

	var wg sync.WaitGroup
	got := make([]*Logger, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Get(CategoryStore)
		}(i)
	}
	wg.Wait()
	for _, l := range got {
		assert.Same(t, got[0], l)
	}
}

func TestTimerLogging(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	timer := StartTimer(CategoryTactile, "launch")
	time.Sleep(5 * time.Millisecond)
	elapsed := timer.Stop()
	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)

	slow := StartTimer(CategoryPerception, "oracle")
	time.Sleep(2 * time.Millisecond)
	slow.StopWithThreshold(time.Nanosecond)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.True(t, strings.HasPrefix(entries[0].Message, "launch completed in"))
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestAuditEvents(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	a := AuditWithRun("run-1")
	a.SafetyCheck(1, "rm -rf /", false)
	a.AttemptComplete(2, "ls", "SUCCESS", 10*time.Millisecond)

	entries := logs.FilterLoggerName("audit").All()
	require.Len(t, entries, 2)

	block := entries[0].ContextMap()
	assert.Equal(t, "safety_block", block["event"])
	assert.Equal(t, "run-1", block["run_id"])
	assert.Equal(t, false, block["success"])

	done := entries[1].ContextMap()
	assert.Equal(t, "attempt_complete", done["event"])
	assert.Equal(t, true, done["success"])
	assert.Equal(t, "SUCCESS", entries[1].Message)
}
