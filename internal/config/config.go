// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"-"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Marketplace backend
	APIBaseURL  string `mapstructure:"API_BASE_URL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`
	LoginPath   string `mapstructure:"LOGIN_PATH"`

	// Workspace session cookie
	SessionCookieName     string        `mapstructure:"SESSION_COOKIE_NAME"`
	SessionCookieSecure   bool          `mapstructure:"SESSION_COOKIE_SECURE"`
	SessionCookieSameSite string        `mapstructure:"SESSION_COOKIE_SAME_SITE"`
	SessionTTL            time.Duration `mapstructure:"-"`

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseAPIKey                string `mapstructure:"FIREBASE_API_KEY"`

	// Google OAuth
	GoogleClientID           string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret       string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI        string `mapstructure:"GOOGLE_REDIRECT_URI"`
	OAuthStateCookieName     string `mapstructure:"OAUTH_STATE_COOKIE_NAME"`
	OAuthCookieMaxAgeMinutes int    `mapstructure:"OAUTH_COOKIE_MAX_AGE_MINUTES"`

	// Preference database
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBSource          string        `mapstructure:"DB_SOURCE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"`

	// Redis (auth snapshots). Empty address keeps snapshots in process memory.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Elasticsearch Configuration. Empty URL disables the listing mirror.
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`

	// Cron Jobs
	ListingSyncJobSchedule string `mapstructure:"LISTING_SYNC_JOB_SCHEDULE"`

	// Sign-in throttling
	AuthRateLimitPerMinute int `mapstructure:"AUTH_RATE_LIMIT_PER_MINUTE"`
	AuthRateLimitBurst     int `mapstructure:"AUTH_RATE_LIMIT_BURST"`

	// Warnings collects non-fatal configuration problems found by Load.
	Warnings []string `mapstructure:"-"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("API_BASE_URL", "http://localhost:5000")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("LOGIN_PATH", "/login")

	v.SetDefault("SESSION_COOKIE_NAME", "pm_sid")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_COOKIE_SAME_SITE", "Lax")
	v.SetDefault("SESSION_TTL_HOURS", 720)

	// Firebase
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_API_KEY", "")

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/auth/google/callback")
	v.SetDefault("OAUTH_STATE_COOKIE_NAME", "pm_oauth_state")
	v.SetDefault("OAUTH_COOKIE_MAX_AGE_MINUTES", 10)

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_SOURCE", "pawmart_prefs.db")
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ELASTICSEARCH_URL", "")
	v.SetDefault("LISTING_SYNC_JOB_SCHEDULE", "@every 15m")

	v.SetDefault("AUTH_RATE_LIMIT_PER_MINUTE", 10)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 5)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Duration keys hold unitless integers; the suffix names the unit.
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.SessionTTL = time.Duration(v.GetInt("SESSION_TTL_HOURS")) * time.Hour
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL must not be empty")
	}

	cfg.Warnings = cfg.identityWarnings()
	return &cfg, nil
}

// identityWarnings reports missing identity-provider settings. The server still
// starts without them; the affected sign-in flows answer 503 instead.
func (c *Config) identityWarnings() []string {
	var warnings []string
	if strings.TrimSpace(c.FirebaseServiceAccountKeyPath) == "" {
		warnings = append(warnings, "FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set; session verification is disabled")
	} else if _, err := os.Stat(c.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
		warnings = append(warnings, fmt.Sprintf("Firebase service account key file %q not found; session verification is disabled", c.FirebaseServiceAccountKeyPath))
	}
	if strings.TrimSpace(c.FirebaseAPIKey) == "" {
		warnings = append(warnings, "FIREBASE_API_KEY is not set; email/password sign-in is disabled")
	}
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		warnings = append(warnings, "GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET are not set; Google sign-in is disabled")
	}
	return warnings
}

// FirebaseAdminConfigured reports whether the Admin SDK can be initialised.
func (c *Config) FirebaseAdminConfigured() bool {
	if strings.TrimSpace(c.FirebaseServiceAccountKeyPath) == "" {
		return false
	}
	_, err := os.Stat(c.FirebaseServiceAccountKeyPath)
	return err == nil
}

// GoogleOAuthConfigured reports whether the OAuth sign-in flow is available.
func (c *Config) GoogleOAuthConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
