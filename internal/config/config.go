package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultServerPort   = "8080"
	defaultTokenMaxAge  = 7 * 24 * 60 * 60 // seconds
	defaultSMTPPort     = 587
	defaultCookieName   = "auth_token"
	defaultMailFromName = "Twii"
	defaultSSLMode      = "require"
)

// Config is loaded once at startup and passed to the components that need it.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string
	Env        string
	LogLevel   string

	JWTSecret   string
	TokenMaxAge int // seconds; used for both the JWT expiry and the cookie max-age
	CookieName  string

	FrontendURL string

	// RequireEmailVerification rejects logins from accounts that have not verified their email.
	RequireEmailVerification bool

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPSecure   bool
	MailFromName string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	// RedisURL is optional. When empty, image cleanup runs inline.
	RedisURL string
}

// ErrMissingJWTSecret is returned by Validate when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found or error loading it, relying on environment variables")
	}

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", defaultSSLMode),

		ServerPort: getEnv("SERVER_PORT", defaultServerPort),
		Env:        getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenMaxAge: getEnvInt("TOKEN_MAX_AGE", defaultTokenMaxAge),
		CookieName:  defaultCookieName,

		FrontendURL: strings.TrimSuffix(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		RequireEmailVerification: getEnvBool("REQUIRE_EMAIL_VERIFICATION", false),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", defaultSMTPPort),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		SMTPSecure:   getEnvBool("SMTP_SECURE", false),
		MailFromName: getEnv("MAIL_FROM_NAME", defaultMailFromName),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		RedisURL: os.Getenv("REDIS_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings without which the server cannot run safely.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// TokenTTL is the lifetime of an issued access token.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenMaxAge) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
