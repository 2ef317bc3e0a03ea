package db

import (
	"context"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// ErrEmptyDSN is returned by Open when no connection string is configured.
var ErrEmptyDSN = errors.New("db: DATABASE_URL is not set")

const pingTimeout = 5 * time.Second

// Open opens a Postgres connection pool through the pgx stdlib driver and verifies it with a ping.
// Caller must call Close when done.
func Open(dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
