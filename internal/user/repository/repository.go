package repository

import (
	"context"

	"soundvault/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByYandexID(ctx context.Context, yandexID string) (*domain.User, error)
	// Create persists u and assigns u.ID, u.CreatedAt and u.UpdatedAt.
	Create(ctx context.Context, u *domain.User) error
	// Update overwrites the mutable profile fields of the user with u.ID.
	Update(ctx context.Context, u *domain.User) error
	// Delete removes the user; sessions and audio rows cascade.
	Delete(ctx context.Context, id int64) error
}
