// migrate runs DB migrations from embedded SQL; use with go run ./cmd/migrate -direction up|down.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"soundvault/internal/config"
	"soundvault/internal/db/migrate"
	"soundvault/internal/logging"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	dir, err := migrate.ParseDirection(*direction)
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(2)
	}

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

	version, err := migrate.Run(cfg.DatabaseURL, dir, logger)
	if err != nil {
		logger.Error("migrate failed", zap.String("direction", string(dir)), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("migrations applied", zap.String("direction", string(dir)), zap.Uint("version", version))
}
