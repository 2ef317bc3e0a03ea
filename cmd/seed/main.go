// seed creates a development superuser so the administration routes can be exercised locally.
// Idempotent: an existing user with the same Yandex id is left as is.
// With -issue it also opens a session and prints the token pair.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"soundvault/internal/config"
	"soundvault/internal/db"
	"soundvault/internal/db/uow"
	"soundvault/internal/logging"
	"soundvault/internal/security"
	sessionservice "soundvault/internal/session/service"
	"soundvault/internal/user/domain"
)

const (
	devYandexID = "dev-superuser"
	devUsername = "admin"
	devPhone    = "+70000000000"
)

func main() {
	yandexID := flag.String("yandex-id", devYandexID, "Yandex id of the seeded superuser")
	username := flag.String("username", devUsername, "username of the seeded superuser")
	phone := flag.String("phone", devPhone, "phone number of the seeded superuser")
	issue := flag.Bool("issue", false, "open a session for the user and print the tokens")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Env == "production" {
		logger.Fatal("refusing to seed a superuser with APP_ENV=production")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := uow.New(conn)
	u, created, err := ensureSuperuser(ctx, store, domain.User{
		YandexID:    *yandexID,
		Username:    *username,
		PhoneNumber: *phone,
		IsSuperuser: true,
	})
	if err != nil {
		logger.Fatal("seed superuser", zap.Error(err))
	}
	if created {
		logger.Info("superuser created", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	} else {
		logger.Info("seed already applied; superuser exists", zap.Int64("user_id", u.ID))
	}

	if !*issue {
		return
	}
	codec, err := security.NewTokenCodec([]byte(cfg.JWTSecretKey), cfg.AccessTTL())
	if err != nil {
		logger.Fatal("token codec", zap.Error(err))
	}
	sessions, err := sessionservice.NewService(store, codec, cfg.SessionTTL(), nil)
	if err != nil {
		logger.Fatal("session service", zap.Error(err))
	}
	pair, err := sessions.IssueSession(ctx, u.ID, u.IsSuperuser)
	if err != nil {
		logger.Fatal("issue session", zap.Error(err))
	}
	fmt.Printf("ACCESS_TOKEN=%s\nREFRESH_TOKEN=%s\n", pair.AccessToken, pair.RefreshToken)
}

// ensureSuperuser returns the user with want.YandexID, creating it when missing.
func ensureSuperuser(ctx context.Context, runner uow.Runner, want domain.User) (*domain.User, bool, error) {
	if err := want.Validate(); err != nil {
		return nil, false, err
	}
	var (
		out     *domain.User
		created bool
	)
	err := runner.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		existing, err := repos.Users.GetByYandexID(ctx, want.YandexID)
		if err != nil {
			return err
		}
		if existing != nil {
			out = existing
			return nil
		}
		u := want
		if err := repos.Users.Create(ctx, &u); err != nil {
			return err
		}
		out, created = &u, true
		return nil
	})
	return out, created, err
}
