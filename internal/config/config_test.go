package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "test-secret-key-that-is-long-enough!!"

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET_KEY", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8000")
	}
	if cfg.JWTAccessTTL != "15m" {
		t.Errorf("JWTAccessTTL = %q, want %q", cfg.JWTAccessTTL, "15m")
	}
	if cfg.SessionTTLRaw != "15m" {
		t.Errorf("SessionTTLRaw = %q, want %q", cfg.SessionTTLRaw, "15m")
	}
	if cfg.YandexTokenURL != "https://oauth.yandex.ru/token" {
		t.Errorf("YandexTokenURL = %q, want default", cfg.YandexTokenURL)
	}
	if cfg.YandexAuthorizeURL != "https://oauth.yandex.ru/authorize" {
		t.Errorf("YandexAuthorizeURL = %q, want default", cfg.YandexAuthorizeURL)
	}
	if cfg.YandexUserInfoURL != "https://login.yandex.ru/info" {
		t.Errorf("YandexUserInfoURL = %q, want default", cfg.YandexUserInfoURL)
	}
	if cfg.AudioStoragePath != "./files/audio" {
		t.Errorf("AudioStoragePath = %q, want %q", cfg.AudioStoragePath, "./files/audio")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty", cfg.RedisURL)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET_KEY", testSecret)
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("YANDEX_CLIENT_ID", "client-1")
	os.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.YandexClientID != "client-1" {
		t.Errorf("YandexClientID = %q, want %q", cfg.YandexClientID, "client-1")
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
}

func TestLoad_SecretRequired(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should return error when JWT_SECRET_KEY is unset")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
}

func TestLoad_ShortSecretInProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET_KEY", "short")
	os.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject a short secret in production")
	}

	os.Setenv("APP_ENV", "development")
	if _, err := Load(); err != nil {
		t.Fatalf("Load in development: %v", err)
	}
}

func TestTTLs(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"valid", "30m", 30 * time.Minute},
		{"invalid", "invalid", 15 * time.Minute},
		{"zero", "0", 15 * time.Minute},
		{"negative", "-5m", 15 * time.Minute},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("JWT_SECRET_KEY", testSecret)
			os.Setenv("JWT_ACCESS_TTL", tc.value)
			os.Setenv("SESSION_TTL", tc.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := cfg.AccessTTL(); got != tc.want {
				t.Errorf("AccessTTL = %v, want %v", got, tc.want)
			}
			if got := cfg.SessionTTL(); got != tc.want {
				t.Errorf("SessionTTL = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestYandexRedirectURI(t *testing.T) {
	cfg := &Config{APIBaseURL: "https://api.example.com/"}
	want := "https://api.example.com/api/users/yandex/callback"
	if got := cfg.YandexRedirectURI(); got != want {
		t.Errorf("YandexRedirectURI = %q, want %q", got, want)
	}
}

func TestAudioStorageDir(t *testing.T) {
	cfg := &Config{AudioStoragePath: "./files/audio"}
	dir, err := cfg.AudioStorageDir()
	if err != nil {
		t.Fatalf("AudioStorageDir: %v", err)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("AudioStorageDir = %q, want absolute path", dir)
	}
}
