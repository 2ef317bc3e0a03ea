package domain

import "time"

// Session is a persisted refresh session. Exactly one refresh token is live per row;
// rotation replaces it in place and slides ExpiresAt forward.
type Session struct {
	ID           int64
	UserID       int64
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the session is past its expiry at now. A session expiring exactly at now is still active.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// TokenPair is the result of issuing or rotating a session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
