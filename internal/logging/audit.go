package logging

import (
	"time"

	"go.uber.org/zap"
)

// AuditEventType categorizes audit events for post-hoc analysis.
type AuditEventType string

const (
	AuditRunStart        AuditEventType = "run_start"
	AuditRunEnd          AuditEventType = "run_end"
	AuditAttemptStart    AuditEventType = "attempt_start"
	AuditAttemptComplete AuditEventType = "attempt_complete"
	AuditSafetyAllow     AuditEventType = "safety_allow"
	AuditSafetyBlock     AuditEventType = "safety_block"
	AuditOracleCall      AuditEventType = "oracle_call"
	AuditOracleError     AuditEventType = "oracle_error"
	AuditRunCancelled    AuditEventType = "run_cancelled"
)

// AuditEvent is a single structured audit entry.
type AuditEvent struct {
	EventType  AuditEventType
	RunID      string
	Attempt    int
	Target     string // command or model
	Success    bool
	DurationMs int64
	Error      string
	Message    string
}

// AuditLogger writes audit events to the audit category, scoped to a run.
type AuditLogger struct {
	runID string
}

// Audit returns an unscoped audit logger.
func Audit() *AuditLogger {
	return &AuditLogger{}
}

// AuditWithRun creates an audit logger scoped to one controller run.
func AuditWithRun(runID string) *AuditLogger {
	return &AuditLogger{runID: runID}
}

// Log writes an audit event
func (a *AuditLogger) Log(event AuditEvent) {
	if event.RunID == "" {
		event.RunID = a.runID
	}
	fields := []zap.Field{
		zap.String("event", string(event.EventType)),
		zap.Bool("success", event.Success),
	}
	if event.RunID != "" {
		fields = append(fields, zap.String("run_id", event.RunID))
	}
	if event.Attempt > 0 {
		fields = append(fields, zap.Int("attempt", event.Attempt))
	}
	if event.Target != "" {
		fields = append(fields, zap.String("target", event.Target))
	}
	if event.DurationMs > 0 {
		fields = append(fields, zap.Int64("duration_ms", event.DurationMs))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	msg := event.Message
	if msg == "" {
		msg = string(event.EventType)
	}
	Zap().Named(string(CategoryAudit)).Info(msg, fields...)
}

// RunStart logs the beginning of a controller run.
func (a *AuditLogger) RunStart(goal string) {
	a.Log(AuditEvent{EventType: AuditRunStart, Target: goal, Success: true})
}

// RunEnd logs the final outcome of a run.
func (a *AuditLogger) RunEnd(succeeded bool, attempts int, elapsed time.Duration) {
	a.Log(AuditEvent{
		EventType:  AuditRunEnd,
		Attempt:    attempts,
		Success:    succeeded,
		DurationMs: elapsed.Milliseconds(),
	})
}

// RunCancelled logs an interrupted run.
func (a *AuditLogger) RunCancelled(attempt int) {
	a.Log(AuditEvent{EventType: AuditRunCancelled, Attempt: attempt})
}

// AttemptStart logs that a synthesized command is about to run.
func (a *AuditLogger) AttemptStart(attempt int, command string) {
	a.Log(AuditEvent{EventType: AuditAttemptStart, Attempt: attempt, Target: command, Success: true})
}

// AttemptComplete logs the judged outcome of one attempt.
func (a *AuditLogger) AttemptComplete(attempt int, command, status string, elapsed time.Duration) {
	a.Log(AuditEvent{
		EventType:  AuditAttemptComplete,
		Attempt:    attempt,
		Target:     command,
		Success:    status == "SUCCESS",
		DurationMs: elapsed.Milliseconds(),
		Message:    status,
	})
}

// SafetyCheck logs a safety gate verdict.
func (a *AuditLogger) SafetyCheck(attempt int, command string, safe bool) {
	evt := AuditSafetyAllow
	if !safe {
		evt = AuditSafetyBlock
	}
	a.Log(AuditEvent{EventType: evt, Attempt: attempt, Target: command, Success: safe})
}

// OracleCall logs one completed oracle round trip.
func (a *AuditLogger) OracleCall(model string, elapsed time.Duration, err error) {
	evt := AuditEvent{
		EventType:  AuditOracleCall,
		Target:     model,
		Success:    err == nil,
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		evt.EventType = AuditOracleError
		evt.Error = err.Error()
	}
	a.Log(evt)
}
