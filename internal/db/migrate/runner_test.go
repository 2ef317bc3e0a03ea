package migrate

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"soundvault/internal/db"
)

func TestRun_EmptyDSN(t *testing.T) {
	_, err := Run("", Up, nil)
	if !errors.Is(err, db.ErrEmptyDSN) {
		t.Fatalf("Run with empty DSN: err = %v, want ErrEmptyDSN", err)
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	for _, dir := range []Direction{"", "invalid", "UP", "Down"} {
		t.Run(string(dir), func(t *testing.T) {
			if _, err := Run("postgres://localhost/test", dir, nil); err == nil {
				t.Errorf("Run with direction %q should return error", dir)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "down"} {
		d, err := ParseDirection(s)
		if err != nil || string(d) != s {
			t.Errorf("ParseDirection(%q) = %q, %v", s, d, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("ParseDirection(sideways) should fail")
	}
}

func TestRun_InvalidDSN(t *testing.T) {
	if _, err := Run("not-a-valid-dsn", Up, nil); err == nil {
		t.Error("Run with invalid DSN should return error")
	}
}

func TestPostgresURL(t *testing.T) {
	tests := map[string]string{
		"pgx://u:p@localhost:5432/app":  "postgres://u:p@localhost:5432/app",
		"pgx5://u:p@localhost:5432/app": "postgres://u:p@localhost:5432/app",
		"postgres://localhost/app":      "postgres://localhost/app",
	}
	for in, want := range tests {
		if got := postgresURL(in); got != want {
			t.Errorf("postgresURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := zapLogger{l: zap.New(core)}
	l.Printf("1/u init (%s)\n", "12ms")
	if l.Verbose() {
		t.Error("Verbose should be false")
	}
	entries := logs.All()
	if len(entries) != 1 || entries[0].Message != "1/u init (12ms)" {
		t.Errorf("entries = %+v", entries)
	}
}
