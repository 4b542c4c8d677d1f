package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port           string   `yaml:"port" env:"PORT" env-default:"3000"`
	Environment    string   `yaml:"environment" env:"ENVIRONMENT" env-default:"development"`
	ClientOrigin   string   `yaml:"client_origin" env:"CLIENT_ORIGIN" env-default:"http://localhost:5173"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:","`

	Auth  Auth  `yaml:"auth"`
	DB    DB    `yaml:"db"`
	Redis Redis `yaml:"redis"`
}

// Auth holds token and password settings. A zero RefreshTokenTTLHours means
// refresh tokens carry no exp claim.
type Auth struct {
	AccessTokenSecret     string `yaml:"access_token_secret" env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret    string `yaml:"refresh_token_secret" env:"REFRESH_TOKEN_SECRET"`
	AccessTokenTTLMinutes int    `yaml:"access_token_ttl_minutes" env:"ACCESS_TOKEN_TTL_MINUTES" env-default:"15"`
	RefreshTokenTTLHours  int    `yaml:"refresh_token_ttl_hours" env:"REFRESH_TOKEN_TTL_HOURS" env-default:"0"`
	BcryptCost            int    `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

type DB struct {
	URL                string `yaml:"url" env:"DATABASE_URL"`
	Driver             string `yaml:"driver" env:"DB_DRIVER" env-default:"pgx"`
	MaxOpenConns       int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns       int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"25"`
	ConnMaxLifetimeMin int    `yaml:"conn_max_lifetime_minutes" env:"DB_CONN_MAX_LIFETIME_MINUTES" env-default:"5"`
}

type Redis struct {
	URL                    string `yaml:"url" env:"REDIS_URL"`
	Password               string `yaml:"password" env:"REDIS_PASSWORD"`
	ProfileCacheTTLMinutes int    `yaml:"profile_cache_ttl_minutes" env:"PROFILE_CACHE_TTL_MINUTES" env-default:"60"`
}

// Development-only fallbacks, rejected by Validate in production.
const (
	devAccessSecret  = "dev-access-secret-change-me"
	devRefreshSecret = "dev-refresh-secret-change-me"
)

// Load reads the optional YAML file at path (skipped when empty) and then the
// environment, which always wins.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.Auth.AccessTokenSecret == "" && !cfg.IsProduction() {
		cfg.Auth.AccessTokenSecret = devAccessSecret
	}
	if cfg.Auth.RefreshTokenSecret == "" && !cfg.IsProduction() {
		cfg.Auth.RefreshTokenSecret = devRefreshSecret
	}

	cfg.AllowedOrigins = buildAllowedOrigins(cfg.ClientOrigin, cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("ENVIRONMENT must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Environment)
	}
	if c.Auth.AccessTokenSecret == "" || c.Auth.RefreshTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if c.Auth.AccessTokenSecret == c.Auth.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.IsProduction() && (c.Auth.AccessTokenSecret == devAccessSecret || c.Auth.RefreshTokenSecret == devRefreshSecret) {
		return errors.New("development token secrets cannot be used in production")
	}
	if c.Auth.AccessTokenTTLMinutes <= 0 {
		return errors.New("ACCESS_TOKEN_TTL_MINUTES must be positive")
	}
	if c.Auth.RefreshTokenTTLHours < 0 {
		return errors.New("REFRESH_TOKEN_TTL_HOURS cannot be negative")
	}
	if c.DB.Driver != "pgx" && c.DB.Driver != "postgres" {
		return fmt.Errorf("DB_DRIVER must be pgx or postgres, got %q", c.DB.Driver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.Auth.AccessTokenTTLMinutes) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTokenTTLHours) * time.Hour
}

func (c *Config) ProfileCacheTTL() time.Duration {
	return time.Duration(c.Redis.ProfileCacheTTLMinutes) * time.Minute
}

// client origin first, then extras, without duplicates or blanks
func buildAllowedOrigins(clientOrigin string, extras []string) []string {
	seen := make(map[string]bool)
	origins := make([]string, 0, len(extras)+1)
	for _, origin := range append([]string{clientOrigin}, extras...) {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		origins = append(origins, trimmed)
	}
	return origins
}
