package logging

import (
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	AuditToolCall     AuditEventType = "tool_call"
	AuditToolComplete AuditEventType = "tool_complete"
	AuditToolError    AuditEventType = "tool_error"
)

// AuditEvent is one structured entry in the audit trail.
type AuditEvent struct {
	Type       AuditEventType
	Tool       string
	CallID     string
	DurationMs int64
	Message    string
}

// Audit writes an event to the audit category.
// A no-op unless debug mode is on and the audit category is enabled.
func Audit(ev AuditEvent) {
	l := Get(CategoryAudit)
	fields := []interface{}{
		"event", string(ev.Type),
		"tool", ev.Tool,
		"call_id", ev.CallID,
		"at", time.Now().UnixMilli(),
	}
	if ev.DurationMs > 0 {
		fields = append(fields, "duration_ms", ev.DurationMs)
	}
	if ev.Message == "" {
		ev.Message = string(ev.Type)
	}
	if ev.Type == AuditToolError {
		l.sugar.Warnw(ev.Message, fields...)
		return
	}
	l.sugar.Infow(ev.Message, fields...)
}
