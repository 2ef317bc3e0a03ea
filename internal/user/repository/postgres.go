package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"soundvault/internal/db"
	"soundvault/internal/user/domain"
)

var (
	// ErrUserNotFound is returned by Update and Delete when no row matches the id.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when a unique column (yandex id, username, phone) is already taken.
	ErrDuplicateUser = errors.New("user already exists")
)

// PostgresRepository stores users in the users table, bound to the executor of the current unit of work.
type PostgresRepository struct {
	db sqlx.ExtContext
}

// NewPostgresRepository returns a user repository bound to db.
func NewPostgresRepository(db sqlx.ExtContext) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type userRow struct {
	ID          int64     `db:"id"`
	YandexID    string    `db:"yandex_id"`
	Username    string    `db:"username"`
	PhoneNumber string    `db:"phone_number"`
	IsSuperuser bool      `db:"is_superuser"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

const userColumns = `id, yandex_id, username, phone_number, is_superuser, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByYandexID returns the user linked to the given Yandex account, or nil if not found.
func (r *PostgresRepository) GetByYandexID(ctx context.Context, yandexID string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE yandex_id = $1`, yandexID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

const insertUser = `
INSERT INTO users (yandex_id, username, phone_number, is_superuser)
VALUES (:yandex_id, :username, :phone_number, :is_superuser)
RETURNING id, created_at, updated_at`

// Create persists the user. Returns ErrDuplicateUser on a unique violation.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	rows, err := sqlx.NamedQueryContext(ctx, r.db, insertUser, domainToRow(u))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			if db.IsUniqueViolation(err) {
				return ErrDuplicateUser
			}
			return err
		}
		return sql.ErrNoRows
	}
	return rows.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

const updateUser = `
UPDATE users
SET username = :username, phone_number = :phone_number, is_superuser = :is_superuser, updated_at = now()
WHERE id = :id`

// Update writes username, phone number and superuser flag. Returns ErrUserNotFound if the row is gone.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	res, err := sqlx.NamedExecContext(ctx, r.db, updateUser, domainToRow(u))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return err
	}
	return expectOneRow(res)
}

// Delete removes the user with id. Returns ErrUserNotFound if no row matched.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func domainToRow(u *domain.User) *userRow {
	return &userRow{
		ID:          u.ID,
		YandexID:    u.YandexID,
		Username:    u.Username,
		PhoneNumber: u.PhoneNumber,
		IsSuperuser: u.IsSuperuser,
	}
}

func rowToDomain(row *userRow) *domain.User {
	if row == nil {
		return nil
	}
	return &domain.User{
		ID:          row.ID,
		YandexID:    row.YandexID,
		Username:    row.Username,
		PhoneNumber: row.PhoneNumber,
		IsSuperuser: row.IsSuperuser,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}
