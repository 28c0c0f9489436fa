package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Billing   BillingConfig
	Content   ContentConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
	StaticDir               string
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

type RedisConfig struct {
	URL string
}

type RateLimitConfig struct {
	// CheckoutRPM caps /create-checkout-session calls per client per minute.
	// Zero disables enforcement.
	CheckoutRPM int
}

type BillingConfig struct {
	StripeSecretKey     string
	StripePriceID       string
	StripeWebhookSecret string
	// Domain is the public site origin used to build the Stripe
	// success/cancel redirect URLs, e.g. https://cvlift.example.com
	Domain string
}

type ContentConfig struct {
	// FilePath is the deliverable served once gating succeeds.
	FilePath     string
	DownloadName string
}

// Load loads configuration from environment variables with sensible defaults.
// A .env file in the working directory is read first when present, matching
// local development setups.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("PORT", 4242),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
			StaticDir:               getEnv("STATIC_DIR", "./web/static"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		RateLimit: RateLimitConfig{
			CheckoutRPM: getEnvInt("CHECKOUT_RATE_LIMIT_RPM", 10),
		},
		Billing: BillingConfig{
			StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			StripePriceID:       getEnv("STRIPE_PRICE_ID", ""),
			StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Domain:              strings.TrimRight(getEnv("DOMAIN", "http://localhost:4242"), "/"),
		},
		Content: ContentConfig{
			FilePath:     getEnv("DELIVERABLE_PATH", "./assets/optimized-cv.pdf"),
			DownloadName: getEnv("DELIVERABLE_DOWNLOAD_NAME", "Optimized-CV.pdf"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.RateLimit.CheckoutRPM < 0 {
		return fmt.Errorf("checkout rate limit must not be negative")
	}
	return nil
}

// Validate checks that the configuration required to talk to Stripe is set.
// It is called at startup, not from Load, so tests can build partial configs.
func (b BillingConfig) Validate() error {
	if b.StripeSecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if b.StripePriceID == "" {
		return fmt.Errorf("STRIPE_PRICE_ID is required")
	}
	if b.Domain == "" {
		return fmt.Errorf("DOMAIN is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
