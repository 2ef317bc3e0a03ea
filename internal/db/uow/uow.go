// Package uow provides the unit of work: every service operation acquires one transaction,
// runs against repositories bound to it, and commits only if the operation succeeds.
package uow

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	audiorepo "soundvault/internal/audio/repository"
	sessionrepo "soundvault/internal/session/repository"
	userrepo "soundvault/internal/user/repository"
)

// Repositories are the stores bound to a single transaction.
type Repositories struct {
	Users      userrepo.Repository
	Sessions   sessionrepo.Repository
	AudioFiles audiorepo.Repository
}

// Runner runs fn inside a transaction. The transaction is committed when fn returns nil
// and rolled back on an error, a panic, or a cancelled context.
type Runner interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// UnitOfWork is the Postgres Runner.
type UnitOfWork struct {
	db *sqlx.DB
}

// New returns a Runner that opens transactions on db.
func New(db *sqlx.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Do begins a transaction, runs fn and commits. The transaction is always released.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) (err error) {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, bind(tx)); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func bind(tx *sqlx.Tx) Repositories {
	return Repositories{
		Users:      userrepo.NewPostgresRepository(tx),
		Sessions:   sessionrepo.NewPostgresRepository(tx),
		AudioFiles: audiorepo.NewPostgresRepository(tx),
	}
}

var (
	_ Runner = (*UnitOfWork)(nil)
	_ Runner = (*MemoryUnitOfWork)(nil)
)
