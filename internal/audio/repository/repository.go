package repository

import (
	"context"

	"soundvault/internal/audio/domain"
)

// Repository defines persistence for audio file metadata.
type Repository interface {
	// Create persists f and assigns f.ID and f.CreatedAt.
	Create(ctx context.Context, f *domain.AudioFile) error
	// GetByOriginalName returns the user's file named name, or nil if none.
	GetByOriginalName(ctx context.Context, userID int64, name string) (*domain.AudioFile, error)
	// ListByUser returns the user's files ordered by id.
	ListByUser(ctx context.Context, userID int64) ([]*domain.AudioFile, error)
}
