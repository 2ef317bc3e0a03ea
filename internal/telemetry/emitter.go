// Package telemetry defines the session lifecycle events exported as OpenTelemetry log records.
package telemetry

import (
	"context"
	"time"
)

// Event types emitted by the session engine.
const (
	EventSessionIssued         = "session.issued"
	EventSessionRotated        = "session.rotated"
	EventSessionRotationFailed = "session.rotation_failed"
)

// Event is one session lifecycle event. Tokens are never part of an event.
type Event struct {
	Type       string
	UserID     int64
	SessionID  int64
	Reason     string
	OccurredAt time.Time
}

// EventEmitter emits events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event Event) error
}
