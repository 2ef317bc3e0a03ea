package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	audiohandler "soundvault/internal/audio/handler"
	audioservice "soundvault/internal/audio/service"
	"soundvault/internal/audio/storage"
	"soundvault/internal/config"
	"soundvault/internal/db"
	"soundvault/internal/db/uow"
	healthhandler "soundvault/internal/health/handler"
	"soundvault/internal/identity/provider"
	"soundvault/internal/identity/state"
	"soundvault/internal/logging"
	policyengine "soundvault/internal/policy/engine"
	"soundvault/internal/security"
	"soundvault/internal/server"
	sessionhandler "soundvault/internal/session/handler"
	sessionservice "soundvault/internal/session/service"
	"soundvault/internal/telemetry"
	telemetryotel "soundvault/internal/telemetry/otel"
	userhandler "soundvault/internal/user/handler"
	userservice "soundvault/internal/user/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
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
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Config{
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
	}, logger)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer conn.Close()
	store := uow.New(conn)

	codec, err := security.NewTokenCodec([]byte(cfg.JWTSecretKey), cfg.AccessTTL())
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}
	sessions, err := sessionservice.NewService(store, codec, cfg.SessionTTL(), providers.Meter("soundvault/session"))
	if err != nil {
		return fmt.Errorf("session service: %w", err)
	}
	sessions.SetEventEmitter(telemetryotel.NewEventEmitter(providers.LoggerProvider))

	authz, err := policyengine.NewOPAAuthorizer(ctx, "")
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	yandex := provider.NewYandex(provider.YandexConfig{
		ClientID:     cfg.YandexClientID,
		ClientSecret: cfg.YandexClientSecret,
		AuthorizeURL: cfg.YandexAuthorizeURL,
		TokenURL:     cfg.YandexTokenURL,
		UserInfoURL:  cfg.YandexUserInfoURL,
		RedirectURL:  cfg.YandexRedirectURI(),
	}, nil)

	var states state.Store = state.NopStore{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		states = state.NewRedisStore(rdb, state.DefaultTTL)
		logger.Info("oauth state store enabled", zap.String("addr", opts.Addr))
	}

	audioDir, err := cfg.AudioStorageDir()
	if err != nil {
		return fmt.Errorf("audio storage path: %w", err)
	}
	blobs, err := storage.NewLocal(audioDir)
	if err != nil {
		return fmt.Errorf("audio storage: %w", err)
	}

	users := userservice.NewService(store, yandex, authz)
	audio := audioservice.NewService(store, blobs)

	router := server.NewRouter(server.Deps{
		Logger:   logger,
		Tracer:   providers.Tracer(),
		Tokens:   codec,
		Health:   healthhandler.NewHandler(conn, authz),
		Sessions: sessionhandler.NewHandler(sessions, logger),
		Users:    userhandler.NewHandler(users, sessions, yandex, states, logger),
		Audio:    audiohandler.NewHandler(audio, logger),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr), zap.String("audio_dir", audioDir))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	// Let in-flight session events reach the log exporter before providers shut down.
	time.Sleep(telemetry.ShutdownDrainDuration)
	logger.Info("HTTP server stopped")
	return nil
}
