package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	S3        S3Config
	Pricing   PricingConfig
	Payment   PaymentConfig
	Checkout  CheckoutConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	ConnectAttempts int
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds the API key guarding the order administration routes.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for the pricing rule file.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "pricing/")
}

// PricingConfig holds pricing rule configuration.
type PricingConfig struct {
	// RulesPath points to a YAML quantity-rule file. Empty means built-in defaults.
	RulesPath string
}

// PaymentConfig holds payment gateway configuration.
type PaymentConfig struct {
	BaseURL         string
	AccessToken     string
	SiteTokens      map[string]string
	SuccessURL      string
	FailureURL      string
	PendingURL      string
	NotificationURL string
	Timeout         time.Duration
}

// CheckoutConfig holds checkout engine settings.
type CheckoutConfig struct {
	Currency               string
	ReservationWindow      time.Duration
	CourseFetchConcurrency int
}

// RateLimitConfig holds per-client rate limiting for the checkout endpoint.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "checkout"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			ConnectAttempts: getEnvAsInt("DB_CONNECT_ATTEMPTS", 5),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "pricing/"),
		},
		Pricing: PricingConfig{
			RulesPath: getEnv("PRICING_RULES_PATH", ""),
		},
		Payment: PaymentConfig{
			BaseURL:     getEnv("PAYMENT_BASE_URL", "https://api.mercadopago.com"),
			AccessToken: getEnv("PAYMENT_ACCESS_TOKEN", ""),
			SiteTokens: map[string]string{
				"almagro":       getEnv("PAYMENT_TOKEN_ALMAGRO", ""),
				"ciudad-jardin": getEnv("PAYMENT_TOKEN_CIUDAD_JARDIN", ""),
			},
			SuccessURL:      getEnv("PAYMENT_SUCCESS_URL", ""),
			FailureURL:      getEnv("PAYMENT_FAILURE_URL", ""),
			PendingURL:      getEnv("PAYMENT_PENDING_URL", ""),
			NotificationURL: getEnv("PAYMENT_NOTIFICATION_URL", ""),
			Timeout:         getEnvAsDuration("PAYMENT_TIMEOUT", 10*time.Second),
		},
		Checkout: CheckoutConfig{
			Currency:               getEnv("CHECKOUT_CURRENCY", "ARS"),
			ReservationWindow:      time.Duration(getEnvAsInt("CHECKOUT_RESERVATION_HOURS", 48)) * time.Hour,
			CourseFetchConcurrency: getEnvAsInt("CHECKOUT_COURSE_FETCH_CONCURRENCY", 4),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Database.ConnectAttempts < 1 {
		return fmt.Errorf("database connect attempts must be at least 1")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
		if c.Pricing.RulesPath == "" {
			return fmt.Errorf("pricing rules path is required when S3 is enabled")
		}
	}

	if _, err := url.ParseRequestURI(c.Payment.BaseURL); err != nil {
		return fmt.Errorf("invalid payment base URL: %s", c.Payment.BaseURL)
	}

	if c.Payment.AccessToken == "" {
		return fmt.Errorf("payment access token is required")
	}

	if c.Payment.Timeout <= 0 {
		return fmt.Errorf("payment timeout must be positive")
	}

	if len(c.Checkout.Currency) != 3 {
		return fmt.Errorf("invalid checkout currency: %s", c.Checkout.Currency)
	}

	if c.Checkout.ReservationWindow <= 0 {
		return fmt.Errorf("reservation window must be positive")
	}

	if c.Checkout.CourseFetchConcurrency < 1 {
		return fmt.Errorf("course fetch concurrency must be at least 1")
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("invalid rate limit: rps=%v burst=%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration parses values such as "10s" or "1m30s".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
