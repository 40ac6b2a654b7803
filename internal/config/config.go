package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// Remote suggestion store. Empty disables the remote backend entirely;
	// the engine then runs on the local fallback store alone.
	DatabaseURL string

	// Local fallback store (bbolt file).
	FallbackDBPath string

	// Optional Redis storage for the rate limiter.
	RedisURL string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Review policy
	ReviewAllowReopen           bool // allow approving a rejected suggestion and vice versa
	ReviewAllowResolvedComments bool // allow comments on approved/rejected suggestions

	// SMTP for suggestion notifications
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "tls", "starttls" or "none"

	// NotificationEmail receives suggestion-created notifications.
	// Comma-separated; defaults to SMTPFrom.
	NotificationEmail string

	EmailNotifyOnSuggestion bool

	// Site branding used in notification emails.
	SiteTitle string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	cfg := &Config{
		Env:            getEnv("ENV", "development"),
		ServerAddr:     getEnv("SERVER_ADDR", ":3000"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:3000"),
		TLSEnabled:     getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:    getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:     getEnv("TLS_KEY_FILE", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		FallbackDBPath: getEnv("FALLBACK_DB_PATH", "./data/contentops.db"),
		RedisURL:       getEnv("REDIS_URL", ""),
		CORSOrigins:    getEnv("CORS_ORIGINS", ""),

		ReviewAllowReopen:           getEnvBool("REVIEW_ALLOW_REOPEN", false),
		ReviewAllowResolvedComments: getEnvBool("REVIEW_ALLOW_RESOLVED_COMMENTS", true),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", ""),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		EmailNotifyOnSuggestion: getEnvBool("EMAIL_NOTIFY_ON_SUGGESTION", true),

		SiteTitle: getEnv("SITE_TITLE", "ContentOps"),
	}

	cfg.NotificationEmail = getEnv("NOTIFICATION_EMAIL", cfg.SMTPFrom)
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is configured well enough to send.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// HasRemoteStore returns true if the remote suggestion backend is configured.
func (c *Config) HasRemoteStore() bool {
	return c.DatabaseURL != ""
}
