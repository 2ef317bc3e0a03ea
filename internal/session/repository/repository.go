package repository

import (
	"context"
	"time"

	"soundvault/internal/session/domain"
)

// Repository defines persistence for refresh sessions.
type Repository interface {
	// Insert persists s and assigns s.ID and s.CreatedAt.
	Insert(ctx context.Context, s *domain.Session) error
	// FindByRefreshToken returns the session holding token, or nil if none does.
	FindByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	// UpdateRefreshToken replaces the refresh token and expiry of the session with the given id.
	UpdateRefreshToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
}
