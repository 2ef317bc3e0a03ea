// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN used by the server, migrate and seed commands.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecretKey is the HMAC secret used to sign access tokens (HS256). Required.
	JWTSecretKey string `mapstructure:"JWT_SECRET_KEY"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// SessionTTLRaw is the refresh session lifetime, renewed on every rotation (e.g. "15m").
	SessionTTLRaw string `mapstructure:"SESSION_TTL"`

	YandexClientID     string `mapstructure:"YANDEX_CLIENT_ID"`
	YandexClientSecret string `mapstructure:"YANDEX_CLIENT_SECRET"`
	YandexTokenURL     string `mapstructure:"YANDEX_OAUTH_TOKEN_URL"`
	YandexAuthorizeURL string `mapstructure:"YANDEX_OAUTH_AUTHORIZE_URL"`
	YandexUserInfoURL  string `mapstructure:"YANDEX_API_USERINFO_URL"`
	// APIBaseURL is the public base URL of this service; the OAuth redirect URI is derived from it.
	APIBaseURL string `mapstructure:"API_BASE_URL"`

	// AudioStoragePath is the directory uploaded audio files are written to. Relative paths are resolved against the working directory.
	AudioStoragePath string `mapstructure:"AUDIO_STORAGE_PATH"`

	// RedisURL enables the OAuth login state store when set (e.g. redis://localhost:6379/0).
	RedisURL string `mapstructure:"REDIS_URL"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; telemetry is a no-op when empty.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("SESSION_TTL", "15m")
	v.SetDefault("YANDEX_CLIENT_ID", "")
	v.SetDefault("YANDEX_CLIENT_SECRET", "")
	v.SetDefault("YANDEX_OAUTH_TOKEN_URL", "https://oauth.yandex.ru/token")
	v.SetDefault("YANDEX_OAUTH_AUTHORIZE_URL", "https://oauth.yandex.ru/authorize")
	v.SetDefault("YANDEX_API_USERINFO_URL", "https://login.yandex.ru/info")
	v.SetDefault("API_BASE_URL", "http://localhost:8000")
	v.SetDefault("AUDIO_STORAGE_PATH", "./files/audio")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "soundvault")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if strings.TrimSpace(cfg.JWTSecretKey) == "" {
		return nil, errors.New("config: JWT_SECRET_KEY must be set")
	}
	if cfg.Env == "production" && len(cfg.JWTSecretKey) < 32 {
		return nil, errors.New("config: JWT_SECRET_KEY must be at least 32 bytes when APP_ENV=production")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// SessionTTL parses SessionTTLRaw as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTLRaw)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// YandexRedirectURI is the callback URL registered with the Yandex OAuth application.
func (c *Config) YandexRedirectURI() string {
	return strings.TrimRight(c.APIBaseURL, "/") + "/api/users/yandex/callback"
}

// AudioStorageDir returns AudioStoragePath as an absolute path.
func (c *Config) AudioStorageDir() (string, error) {
	return filepath.Abs(c.AudioStoragePath)
}
