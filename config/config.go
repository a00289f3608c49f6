package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	HasherSHA256 = "sha256"
	HasherBcrypt = "bcrypt"

	defaultSecretKey = "your-secret-key-here"
)

// Config holds all runtime settings of the API server.
type Config struct {
	Port    string
	GinMode string

	Store        string
	MongoURI     string
	DatabaseName string

	SecretKey      string
	AccessTokenTTL time.Duration
	PasswordSalt   string
	PasswordHasher string

	CORSOrigins    []string
	TrustedProxies []string
	AuthRateLimit  float64
	AuthRateBurst  int

	LogLevel slog.Level
}

// Load reads an optional .env file and then the process environment.
func Load(logger *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		if logger != nil {
			logger.Debug("no .env file found, using process environment")
		}
	}

	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "release"),
		Store:          strings.ToLower(getEnv("STORE", StoreMongo)),
		MongoURI:       os.Getenv("MONGODB_URI"),
		DatabaseName:   getEnv("DATABASE_NAME", "averix"),
		SecretKey:      getEnv("SECRET_KEY", defaultSecretKey),
		PasswordSalt:   getEnv("PASSWORD_SALT", "averix_salt_2025"),
		PasswordHasher: strings.ToLower(getEnv("PASSWORD_HASHER", HasherSHA256)),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),
	}

	var err error
	if cfg.AccessTokenTTL, err = time.ParseDuration(getEnv("ACCESS_TOKEN_TTL", "15m")); err != nil {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL: %w", err)
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL: must be positive, got %s", cfg.AccessTokenTTL)
	}
	if cfg.AuthRateLimit, err = strconv.ParseFloat(getEnv("AUTH_RATE_LIMIT", "5"), 64); err != nil {
		return nil, fmt.Errorf("AUTH_RATE_LIMIT: %w", err)
	}
	if cfg.AuthRateBurst, err = strconv.Atoi(getEnv("AUTH_RATE_BURST", "10")); err != nil {
		return nil, fmt.Errorf("AUTH_RATE_BURST: %w", err)
	}
	if cfg.AuthRateLimit > 0 && cfg.AuthRateBurst < 1 {
		return nil, fmt.Errorf("AUTH_RATE_BURST: must be at least 1 when AUTH_RATE_LIMIT is set, got %d", cfg.AuthRateBurst)
	}
	if err = cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	switch cfg.Store {
	case StoreMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI: required when STORE=%s", StoreMongo)
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("STORE: unknown backend %q", cfg.Store)
	}

	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("GIN_MODE: unknown mode %q", cfg.GinMode)
	}

	switch cfg.PasswordHasher {
	case HasherSHA256, HasherBcrypt:
	default:
		return nil, fmt.Errorf("PASSWORD_HASHER: unknown hasher %q", cfg.PasswordHasher)
	}

	return cfg, nil
}

// UsesDefaultSecret reports whether tokens are signed with the built-in development key.
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == defaultSecretKey
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
