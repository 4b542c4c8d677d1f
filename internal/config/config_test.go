package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "CLIENT_ORIGIN", "ALLOWED_ORIGINS",
		"ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET",
		"ACCESS_TOKEN_TTL_MINUTES", "REFRESH_TOKEN_TTL_HOURS", "BCRYPT_COST",
		"DATABASE_URL", "DB_DRIVER", "REDIS_URL", "REDIS_PASSWORD",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.IsProduction() {
		t.Error("default environment should be development")
	}
	if cfg.AccessTokenTTL() != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 15m", cfg.AccessTokenTTL())
	}
	if cfg.RefreshTokenTTL() != 0 {
		t.Errorf("RefreshTokenTTL = %v, want 0", cfg.RefreshTokenTTL())
	}
	if cfg.Auth.AccessTokenSecret == "" || cfg.Auth.RefreshTokenSecret == "" {
		t.Error("development secrets should be filled in")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for production without secrets")
	}

	t.Setenv("ACCESS_TOKEN_SECRET", "a-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "r-secret")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
}

func TestLoad_RejectsSharedSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESS_TOKEN_SECRET", "same")
	t.Setenv("REFRESH_TOKEN_SECRET", "same")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error when secrets are identical")
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLIENT_ORIGIN", "https://blog.example.com")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, ,https://blog.example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"https://blog.example.com", "https://a.example.com"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("port: \"8081\"\nauth:\n  access_token_ttl_minutes: 5\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.AccessTokenTTL() != 5*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 5m", cfg.AccessTokenTTL())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
