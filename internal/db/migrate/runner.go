// Package migrate runs database migrations from embedded SQL files using golang-migrate.
package migrate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"soundvault/internal/db"
)

// Direction is the migration direction accepted by Run.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ErrNoChange is returned when Up/Down has nothing to do (already at target version).
var ErrNoChange = migrate.ErrNoChange

// ParseDirection validates a direction given on the command line.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down:
		return d, nil
	default:
		return "", fmt.Errorf("direction must be up or down, got %q", s)
	}
}

// Run applies migrations in the given direction against dsn and returns the resulting schema version.
// Already being at the target is not an error. logger may be nil.
func Run(dsn string, direction Direction, logger *zap.Logger) (uint, error) {
	if dsn == "" {
		return 0, db.ErrEmptyDSN
	}
	if _, err := ParseDirection(string(direction)); err != nil {
		return 0, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sourceDriver, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, postgresURL(dsn))
	if err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	m.Log = zapLogger{l: logger.Named("migrate")}

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("migrate version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("migrate: schema version %d is dirty", version)
	}
	return version, nil
}

// postgresURL maps pgx-style schemes onto the one the golang-migrate postgres driver registers.
func postgresURL(dsn string) string {
	for _, prefix := range []string{"pgx://", "pgx5://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "postgres://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// zapLogger adapts zap to migrate.Logger.
type zapLogger struct {
	l *zap.Logger
}

func (z zapLogger) Printf(format string, v ...any) {
	z.l.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (z zapLogger) Verbose() bool { return false }
