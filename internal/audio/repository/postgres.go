package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"soundvault/internal/audio/domain"
	"soundvault/internal/db"
)

// ErrDuplicateFile is returned by Create when the user already has a file with the same original name.
var ErrDuplicateFile = errors.New("audio file already exists")

// PostgresRepository stores audio file metadata in audio_files.
type PostgresRepository struct {
	db sqlx.ExtContext
}

// NewPostgresRepository returns an audio repository bound to db.
func NewPostgresRepository(db sqlx.ExtContext) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type audioRow struct {
	ID               int64     `db:"id"`
	UserID           int64     `db:"user_id"`
	FilenameOriginal string    `db:"filename_original"`
	FilenameUnique   string    `db:"filename_unique"`
	Filepath         string    `db:"filepath"`
	CreatedAt        time.Time `db:"created_at"`
}

const audioColumns = `id, user_id, filename_original, filename_unique, filepath, created_at`

const insertAudio = `
INSERT INTO audio_files (user_id, filename_original, filename_unique, filepath)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`

// Create persists f. Returns ErrDuplicateFile on a unique violation.
func (r *PostgresRepository) Create(ctx context.Context, f *domain.AudioFile) error {
	row := r.db.QueryRowxContext(ctx, insertAudio, f.UserID, f.FilenameOriginal, f.FilenameUnique, f.Filepath)
	if err := row.Scan(&f.ID, &f.CreatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateFile
		}
		return err
	}
	return nil
}

// GetByOriginalName returns the file or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByOriginalName(ctx context.Context, userID int64, name string) (*domain.AudioFile, error) {
	var row audioRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT `+audioColumns+` FROM audio_files WHERE user_id = $1 AND filename_original = $2`, userID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

// ListByUser returns all files of the user. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.AudioFile, error) {
	var rows []audioRow
	if err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT `+audioColumns+` FROM audio_files WHERE user_id = $1 ORDER BY id`, userID); err != nil {
		return nil, err
	}
	out := make([]*domain.AudioFile, len(rows))
	for i := range rows {
		out[i] = rowToDomain(&rows[i])
	}
	return out, nil
}

func rowToDomain(row *audioRow) *domain.AudioFile {
	if row == nil {
		return nil
	}
	return &domain.AudioFile{
		ID:               row.ID,
		UserID:           row.UserID,
		FilenameOriginal: row.FilenameOriginal,
		FilenameUnique:   row.FilenameUnique,
		Filepath:         row.Filepath,
		CreatedAt:        row.CreatedAt.UTC(),
	}
}
