// Package service implements the refresh session lifecycle: issuing a session after login
// and rotating its refresh token in exchange for a new access token.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"soundvault/internal/db/uow"
	"soundvault/internal/security"
	"soundvault/internal/session/domain"
	"soundvault/internal/telemetry"
)

// Sentinel errors for the session service; handlers map ErrUnauthorized to 401 and ErrInternal to 500.
var (
	// ErrUnauthorized is returned for an unknown, rotated or expired refresh token and for a
	// session whose user no longer exists. Callers cannot tell the cases apart.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInternal wraps storage and signing failures. The cause is kept for server-side logs only.
	ErrInternal = errors.New("internal error")
)

// DefaultSessionTTL is the sliding refresh session lifetime.
const DefaultSessionTTL = 15 * time.Minute

const meterName = "soundvault/session"

// Rotation failure reasons recorded on sessions.rotation_failures.
const (
	reasonUnknownToken = "unknown_token"
	reasonExpired      = "expired"
	reasonUserMissing  = "user_missing"
	reasonInternal     = "internal"
)

// Service issues and rotates refresh sessions. It keeps no state between calls;
// each operation runs in its own unit of work.
type Service struct {
	uow    uow.Runner
	tokens *security.TokenCodec
	ttl    time.Duration

	now             func() time.Time
	newRefreshToken func() string
	events          telemetry.EventEmitter

	issued           metric.Int64Counter
	rotated          metric.Int64Counter
	rotationFailures metric.Int64Counter
}

// NewService returns a session service. ttl <= 0 uses DefaultSessionTTL; a nil meter disables metrics.
func NewService(runner uow.Runner, tokens *security.TokenCodec, ttl time.Duration, meter metric.Meter) (*Service, error) {
	if runner == nil || tokens == nil {
		return nil, errors.New("session service: unit of work and token codec are required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(meterName)
	}
	issued, err := meter.Int64Counter("sessions.issued",
		metric.WithDescription("Refresh sessions created after login"))
	if err != nil {
		return nil, err
	}
	rotated, err := meter.Int64Counter("sessions.rotated",
		metric.WithDescription("Successful refresh token rotations"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("sessions.rotation_failures",
		metric.WithDescription("Rejected or failed refresh token rotations by reason"))
	if err != nil {
		return nil, err
	}
	return &Service{
		uow:              runner,
		tokens:           tokens,
		ttl:              ttl,
		now:              func() time.Time { return time.Now().UTC() },
		newRefreshToken:  security.NewRefreshToken,
		issued:           issued,
		rotated:          rotated,
		rotationFailures: failures,
	}, nil
}

// SetEventEmitter sets the emitter for session lifecycle events. Nil disables events.
func (s *Service) SetEventEmitter(e telemetry.EventEmitter) {
	s.events = e
}

// IssueSession creates a new refresh session for the user and returns it with a signed access token.
// Existing sessions of the user are left untouched. Nothing is persisted unless both tokens are produced.
func (s *Service) IssueSession(ctx context.Context, userID int64, isSuperuser bool) (*domain.TokenPair, error) {
	var (
		pair      *domain.TokenPair
		sessionID int64
	)
	err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		sess := &domain.Session{
			UserID:       userID,
			RefreshToken: s.newRefreshToken(),
			ExpiresAt:    s.now().Add(s.ttl),
		}
		if err := repos.Sessions.Insert(ctx, sess); err != nil {
			return fmt.Errorf("%w: insert session: %w", ErrInternal, err)
		}
		access, err := s.tokens.Issue(userID, isSuperuser)
		if err != nil {
			return fmt.Errorf("%w: sign access token: %w", ErrInternal, err)
		}
		pair = &domain.TokenPair{AccessToken: access, RefreshToken: sess.RefreshToken}
		sessionID = sess.ID
		return nil
	})
	if err != nil {
		return nil, asInternal(err)
	}
	s.issued.Add(ctx, 1)
	telemetry.EmitAsync(s.events, ctx, telemetry.Event{
		Type:      telemetry.EventSessionIssued,
		UserID:    userID,
		SessionID: sessionID,
	})
	return pair, nil
}

// RotateSession exchanges an active refresh token for a new one and a fresh access token.
// The session row is updated in place and its expiry slides to now plus the session TTL.
// The access token carries the user's current superuser flag.
func (s *Service) RotateSession(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	var (
		pair      *domain.TokenPair
		reason    string
		userID    int64
		sessionID int64
	)
	err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if refreshToken == "" {
			reason = reasonUnknownToken
			return ErrUnauthorized
		}
		sess, err := repos.Sessions.FindByRefreshToken(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("%w: find session: %w", ErrInternal, err)
		}
		if sess == nil {
			reason = reasonUnknownToken
			return ErrUnauthorized
		}
		userID, sessionID = sess.UserID, sess.ID
		now := s.now()
		if sess.Expired(now) {
			reason = reasonExpired
			return ErrUnauthorized
		}
		user, err := repos.Users.GetByID(ctx, sess.UserID)
		if err != nil {
			return fmt.Errorf("%w: load user: %w", ErrInternal, err)
		}
		if user == nil {
			reason = reasonUserMissing
			return ErrUnauthorized
		}

		next := s.newRefreshToken()
		if err := repos.Sessions.UpdateRefreshToken(ctx, sess.ID, next, now.Add(s.ttl)); err != nil {
			return fmt.Errorf("%w: update session: %w", ErrInternal, err)
		}
		access, err := s.tokens.Issue(user.ID, user.IsSuperuser)
		if err != nil {
			return fmt.Errorf("%w: sign access token: %w", ErrInternal, err)
		}
		pair = &domain.TokenPair{AccessToken: access, RefreshToken: next}
		return nil
	})
	if err != nil {
		out := ErrUnauthorized
		if !errors.Is(err, ErrUnauthorized) {
			reason = reasonInternal
			out = asInternal(err)
		}
		s.rotationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
		telemetry.EmitAsync(s.events, ctx, telemetry.Event{
			Type:      telemetry.EventSessionRotationFailed,
			UserID:    userID,
			SessionID: sessionID,
			Reason:    reason,
		})
		return nil, out
	}
	s.rotated.Add(ctx, 1)
	telemetry.EmitAsync(s.events, ctx, telemetry.Event{
		Type:      telemetry.EventSessionRotated,
		UserID:    userID,
		SessionID: sessionID,
	})
	return pair, nil
}

// asInternal makes sure err matches ErrInternal, covering failures raised by the unit of work itself.
func asInternal(err error) error {
	if errors.Is(err, ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
