// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL    string `env:"DATABASE_URL,required"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`

	// Cache (Redis), used for sessions and rate limiting
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. Writes cover PDF rendering.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting (per user, token bucket)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPM     int  `env:"RATE_LIMIT_RPM" envDefault:"120"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Sign-in attempts per client IP
	SignInRateLimitRPM   int `env:"SIGNIN_RATE_LIMIT_RPM" envDefault:"10"`
	SignInRateLimitBurst int `env:"SIGNIN_RATE_LIMIT_BURST" envDefault:"5"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 20MB, records carry base64 images)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"20971520"`

	// Sessions
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"sheet_session"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	SessionCookieDomain string        `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	SessionSameSite     string        `env:"SESSION_SAMESITE" envDefault:"lax"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// External authentication provider (HS256 signed identity tokens)
	AuthProviderSecret string `env:"AUTH_PROVIDER_SECRET,required"`
	AuthProviderIssuer string `env:"AUTH_PROVIDER_ISSUER" envDefault:""`

	// PDF rendering (headless Chrome)
	ChromeRemoteURL string        `env:"CHROME_REMOTE_URL" envDefault:""`
	ChromeNoSandbox bool          `env:"CHROME_NO_SANDBOX" envDefault:"false"`
	RenderTimeout   time.Duration `env:"RENDER_TIMEOUT" envDefault:"30s"`

	// Document branding
	BrandSite string `env:"BRAND_SITE" envDefault:"www.premiumcars.nl"`
	BrandMail string `env:"BRAND_EMAIL" envDefault:"info@premiumcars.nl"`
	LogoPath  string `env:"LOGO_PATH" envDefault:""`

	// Export archive (S3 compatible). Disabled when ExportBucket is empty.
	ExportBucket        string        `env:"EXPORT_BUCKET" envDefault:""`
	ExportEndpoint      string        `env:"EXPORT_ENDPOINT" envDefault:""`
	ExportRegion        string        `env:"EXPORT_REGION" envDefault:"us-east-1"`
	ExportAccessKeyID   string        `env:"EXPORT_ACCESS_KEY_ID" envDefault:""`
	ExportSecretKey     string        `env:"EXPORT_SECRET_ACCESS_KEY" envDefault:""`
	ExportUsePathStyle  bool          `env:"EXPORT_USE_PATH_STYLE" envDefault:"true"`
	ExportURLExpiry     time.Duration `env:"EXPORT_URL_EXPIRY" envDefault:"15m"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ArchiveEnabled reports whether an export bucket is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.ExportBucket != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// CookieSameSite maps SESSION_SAMESITE to an http.SameSite mode.
func (c *Config) CookieSameSite() http.SameSite {
	switch strings.ToLower(c.SessionSameSite) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

// Load reads an optional .env file, parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	// A missing .env is fine; the environment wins over the file.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// MigrateConfig is the subset of configuration needed to run migrations.
type MigrateConfig struct {
	DatabaseURL    string `env:"DATABASE_URL,required"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadMigrate reads the migration settings.
func LoadMigrate() (*MigrateConfig, error) {
	_ = godotenv.Load()

	cfg := &MigrateConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
