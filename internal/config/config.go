package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the full application configuration, populated from
// environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	CrossRef CrossRefConfig
	Algolia  AlgoliaConfig
	DOI      DOIConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	Origin      string // public origin, e.g. https://www.researchequals.com
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// =====================================================
// STRIPE CONFIGURATION
// =====================================================

type StripeConfig struct {
	SecretKey     string // API secret key (sk_...)
	WebhookSecret string // Webhook endpoint signing secret (whsec_...)
	APIURL        string // Stripe API base URL
}

// =====================================================
// CROSSREF CONFIGURATION
// =====================================================

type CrossRefConfig struct {
	LoginID       string // Deposit account login
	LoginPassword string // Deposit account password
	DepositURL    string // Metadata deposit endpoint
	DepositorName string // Shown in the deposit head
	DepositorMail string // Contact address for deposit reports
}

// =====================================================
// ALGOLIA CONFIGURATION
// =====================================================

type AlgoliaConfig struct {
	AppID       string // Application ID
	AdminKey    string // Admin API key (write access)
	IndexPrefix string // Index name prefix, e.g. "dev" or "production"
}

type DOIConfig struct {
	Prefix string // Registered DOI prefix, e.g. 10.53962
}

// Load reads config from environment variables. All credentials the
// publication pipeline depends on are required: a missing value fails
// startup instead of failing on the first webhook.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "ResearchEquals API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Origin:      os.Getenv("APP_ORIGIN"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "researchequals"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			Expiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 72)) * time.Hour,
		},
		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			APIURL:        getEnv("STRIPE_API_URL", "https://api.stripe.com"),
		},
		CrossRef: CrossRefConfig{
			LoginID:       os.Getenv("CROSSREF_LOGIN_ID"),
			LoginPassword: os.Getenv("CROSSREF_LOGIN_PASSWD"),
			DepositURL:    os.Getenv("CROSSREF_URL"),
			DepositorName: getEnv("CROSSREF_DEPOSITOR_NAME", "ResearchEquals"),
			DepositorMail: getEnv("CROSSREF_DEPOSITOR_MAIL", "info@libscie.org"),
		},
		Algolia: AlgoliaConfig{
			AppID:       os.Getenv("ALGOLIA_APP_ID"),
			AdminKey:    os.Getenv("ALGOLIA_API_ADMIN_KEY"),
			IndexPrefix: os.Getenv("ALGOLIA_PREFIX"),
		},
		DOI: DOIConfig{
			Prefix: os.Getenv("DOI_PREFIX"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that every externally required value is present.
func (c *Config) Validate() error {
	required := map[string]string{
		"APP_ORIGIN":            c.App.Origin,
		"STRIPE_SECRET_KEY":     c.Stripe.SecretKey,
		"STRIPE_WEBHOOK_SECRET": c.Stripe.WebhookSecret,
		"CROSSREF_LOGIN_ID":     c.CrossRef.LoginID,
		"CROSSREF_LOGIN_PASSWD": c.CrossRef.LoginPassword,
		"CROSSREF_URL":          c.CrossRef.DepositURL,
		"ALGOLIA_APP_ID":        c.Algolia.AppID,
		"ALGOLIA_API_ADMIN_KEY": c.Algolia.AdminKey,
		"ALGOLIA_PREFIX":        c.Algolia.IndexPrefix,
		"DOI_PREFIX":            c.DOI.Prefix,
	}

	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s must be set", name)
		}
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
