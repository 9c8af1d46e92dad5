package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())

	assert.Equal(t, []byte("test-secret"), cfg.Auth.SecretKey)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, "jwt", cfg.Auth.TokenProvider)
	assert.Equal(t, "plain", cfg.Auth.PasswordScheme)
	assert.Equal(t, 1000*time.Minute, cfg.Auth.LoginTokenDuration)
	assert.Equal(t, 1200*time.Minute, cfg.Auth.RegisterTokenDuration)
	assert.False(t, cfg.Auth.RequireEmailVerification)

	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Contains(t, cfg.Database.ConnectionString(), "dbname=trip_db")
}

func TestLoad_MissingSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UnsupportedAlgorithm(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ALGORITHM", "RS256")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_PasetoKeyLength(t *testing.T) {
	t.Setenv("TOKEN_PROVIDER", "paseto")
	t.Setenv("SECRET_KEY", "too-short-for-paseto")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "paseto", cfg.Auth.TokenProvider)
}

func TestLoad_UnsupportedPasswordScheme(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("PASSWORD_SCHEME", "md5")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DurationsInSeconds(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("SERVER_READ_TIMEOUT", "30")
	t.Setenv("LOGIN_TOKEN_DURATION", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.Auth.LoginTokenDuration)
}

func TestLoad_TrustedOrigins(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("TRUSTED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://app.example.com",
		"https://staging.example.com",
	}, cfg.Server.TrustedOrigins)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Redis.DB)
}
