package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"soundvault/internal/telemetry"
)

const eventScope = "soundvault/session-events"

// NewEventEmitter returns an EventEmitter that writes events as OTel log records through provider.
// A nil provider yields a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return NewEventEmitterWithLogger(provider.Logger(eventScope))
}

// RecordEmitter is the part of otellog.Logger the emitter needs.
type RecordEmitter interface {
	Emit(ctx context.Context, record otellog.Record)
}

// NewEventEmitterWithLogger returns an EventEmitter writing to logger.
func NewEventEmitterWithLogger(logger RecordEmitter) telemetry.EventEmitter {
	if logger == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, telemetry.Event) error { return nil }

type otelEmitter struct {
	logger RecordEmitter
}

func (e *otelEmitter) Emit(ctx context.Context, event telemetry.Event) error {
	var rec otellog.Record
	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	rec.SetObservedTimestamp(time.Now().UTC())
	rec.SetEventName(event.Type)
	rec.SetBody(otellog.StringValue(event.Type))
	if event.Reason != "" {
		rec.SetSeverity(otellog.SeverityWarn)
		rec.SetSeverityText("WARN")
	} else {
		rec.SetSeverity(otellog.SeverityInfo)
		rec.SetSeverityText("INFO")
	}
	rec.AddAttributes(otellog.String("event_type", event.Type))
	if event.UserID != 0 {
		rec.AddAttributes(otellog.Int64("user_id", event.UserID))
	}
	if event.SessionID != 0 {
		rec.AddAttributes(otellog.Int64("session_id", event.SessionID))
	}
	if event.Reason != "" {
		rec.AddAttributes(otellog.String("reason", event.Reason))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
