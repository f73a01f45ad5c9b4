package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("TOKEN_MAX_AGE", "")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("REQUIRE_EMAIL_VERIFICATION", "")
	t.Setenv("FRONTEND_URL", "https://twii.example/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "require", cfg.DBSSLMode)
	assert.Equal(t, "auth_token", cfg.CookieName)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, "https://twii.example", cfg.FrontendURL)
	assert.False(t, cfg.RequireEmailVerification)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOKEN_MAX_AGE", "3600")
	t.Setenv("APP_ENV", "production")
	t.Setenv("REQUIRE_EMAIL_VERIFICATION", "true")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_SECURE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.TokenTTL())
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.RequireEmailVerification)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.True(t, cfg.SMTPSecure)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "-3")
	assert.Equal(t, 10, getEnvInt("SOME_INT", 10))

	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 10, getEnvInt("SOME_INT", 10))
}
