package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"soundvault/internal/session/domain"
)

// ErrSessionNotFound is returned by UpdateRefreshToken when no row matches the id.
var ErrSessionNotFound = errors.New("session not found")

// PostgresRepository stores sessions in refresh_sessions. It runs on whatever
// executor it was built with, normally the transaction of the current unit of work.
type PostgresRepository struct {
	db sqlx.ExtContext
}

// NewPostgresRepository returns a session repository bound to db.
func NewPostgresRepository(db sqlx.ExtContext) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type sessionRow struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
	CreatedAt    time.Time `db:"created_at"`
}

const insertSession = `
INSERT INTO refresh_sessions (refresh_token, user_id, expires_at)
VALUES ($1, $2, $3)
RETURNING id, created_at`

// Insert persists s. A duplicate refresh token surfaces as the driver's unique violation.
func (r *PostgresRepository) Insert(ctx context.Context, s *domain.Session) error {
	row := r.db.QueryRowxContext(ctx, insertSession, s.RefreshToken, s.UserID, s.ExpiresAt)
	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		return err
	}
	return nil
}

const selectSessionByToken = `
SELECT id, user_id, refresh_token, expires_at, created_at
FROM refresh_sessions
WHERE refresh_token = $1`

// FindByRefreshToken returns the session for token, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) FindByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	var row sessionRow
	if err := sqlx.GetContext(ctx, r.db, &row, selectSessionByToken, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

const updateSessionToken = `
UPDATE refresh_sessions
SET refresh_token = $2, expires_at = $3
WHERE id = $1`

// UpdateRefreshToken overwrites the token and expiry of the session with id.
// Returns ErrSessionNotFound if the row no longer exists.
func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, updateSessionToken, id, token, expiresAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func rowToDomain(row *sessionRow) *domain.Session {
	if row == nil {
		return nil
	}
	return &domain.Session{
		ID:           row.ID,
		UserID:       row.UserID,
		RefreshToken: row.RefreshToken,
		ExpiresAt:    row.ExpiresAt.UTC(),
		CreatedAt:    row.CreatedAt.UTC(),
	}
}
