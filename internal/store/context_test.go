package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatContext(t *testing.T) {
	assert.Equal(t, "", FormatContext(nil))

	got := FormatContext([]AttemptRecord{
		{UserQuery: "open firefox", Attempt: 1, CommandExecuted: "firefox", Status: StatusSuccess, Summary: "Launched"},
		{UserQuery: "disk usage", Attempt: 2, CommandExecuted: "df -h"},
	})

	want := "Task: \"open firefox\" (Attempt 1)\n" +
		"Command: `firefox`\n" +
		"Result: SUCCESS - Launched\n" +
		"----------\n" +
		"Task: \"disk usage\" (Attempt 2)\n" +
		"Command: `df -h`\n" +
		"Result: UNKNOWN - No summary.\n" +
		"----------"
	assert.Equal(t, want, got)
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil))

	last := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := ComputeStats([]AttemptRecord{
		{Status: StatusSuccess},
		{Status: StatusFailed},
		{Status: StatusPartial},
		{Status: StatusSuccess, Timestamp: last},
	})

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Successes)
	assert.InDelta(t, 50.0, s.SuccessRate, 0.001)
	assert.Equal(t, last, s.LastTimestamp)
}
