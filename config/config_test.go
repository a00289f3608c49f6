package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMemoryStore(t *testing.T) {
	t.Helper()
	t.Setenv("STORE", StoreMemory)
	t.Setenv("MONGODB_URI", "")
}

func TestFromEnv_Defaults(t *testing.T) {
	setMemoryStore(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "averix", cfg.DatabaseName)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "averix_salt_2025", cfg.PasswordSalt)
	assert.Equal(t, HasherSHA256, cfg.PasswordHasher)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, 5.0, cfg.AuthRateLimit)
	assert.Equal(t, 10, cfg.AuthRateBurst)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.UsesDefaultSecret())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORE", "Mongo")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("PASSWORD_HASHER", "bcrypt")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, StoreMongo, cfg.Store)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, HasherBcrypt, cfg.PasswordHasher)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.TrustedProxies)
	assert.False(t, cfg.UsesDefaultSecret())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad ttl", "ACCESS_TOKEN_TTL", "soon", "ACCESS_TOKEN_TTL"},
		{"negative ttl", "ACCESS_TOKEN_TTL", "-1m", "ACCESS_TOKEN_TTL"},
		{"bad rate", "AUTH_RATE_LIMIT", "fast", "AUTH_RATE_LIMIT"},
		{"bad burst", "AUTH_RATE_BURST", "1.5", "AUTH_RATE_BURST"},
		{"zero burst", "AUTH_RATE_BURST", "0", "AUTH_RATE_BURST"},
		{"negative burst", "AUTH_RATE_BURST", "-3", "AUTH_RATE_BURST"},
		{"bad level", "LOG_LEVEL", "loud", "LOG_LEVEL"},
		{"bad store", "STORE", "redis", "STORE"},
		{"bad hasher", "PASSWORD_HASHER", "md5", "PASSWORD_HASHER"},
		{"bad gin mode", "GIN_MODE", "verbose", "GIN_MODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setMemoryStore(t)
			t.Setenv(tt.key, tt.val)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFromEnv_DisabledLimiterAllowsZeroBurst(t *testing.T) {
	setMemoryStore(t)
	t.Setenv("AUTH_RATE_LIMIT", "0")
	t.Setenv("AUTH_RATE_BURST", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Zero(t, cfg.AuthRateLimit)
}

func TestFromEnv_MongoRequiresURI(t *testing.T) {
	t.Setenv("STORE", StoreMongo)
	t.Setenv("MONGODB_URI", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI")
}
