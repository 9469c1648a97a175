package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported DB_TYPE values.
const (
	DatabaseMemory   = "memory"
	DatabaseMongoDB  = "mongodb"
	DatabasePostgres = "postgresql"
)

type Config struct {
	// Server
	Port        string
	Environment string

	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Clinic   ClinicConfig
	WhatsApp WhatsAppConfig
	Security SecurityConfig

	// CatalogFile is an optional YAML doctor catalog.
	CatalogFile string
}

type DatabaseConfig struct {
	Type     string // "memory", "mongodb" or "postgresql"
	URI      string
	Name     string
	Host     string
	Port     string
	Username string
	Password string

	// Connection pool settings
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
}

type RedisConfig struct {
	Addr     string // empty disables the catalog cache
	Password string
	DB       int
	CacheTTL time.Duration
}

type SessionConfig struct {
	Timeout       time.Duration
	SweepInterval time.Duration
}

type ClinicConfig struct {
	Name            string
	Phone           string
	Address         string
	BillingPhone    string
	InsurancePhone  string
	Email           string
	PlaceholderDate string
}

type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	AppSecret     string
	APIURL        string
	APIVersion    string
}

type SecurityConfig struct {
	RateLimitPerMin int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

var cfg *Config

// Load reads .env (when present) and the environment into the global
// configuration.
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	c, err := FromEnv()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Get returns the loaded configuration
func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not loaded. Call Load() first")
	}
	return cfg
}

// FromEnv builds and validates a configuration from the environment without
// touching the global one.
func FromEnv() (*Config, error) {
	c := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		Database: DatabaseConfig{
			Type:     strings.ToLower(getEnv("DB_TYPE", DatabaseMemory)),
			URI:      getEnv("DATABASE_URL", ""),
			Name:     getEnv("DB_NAME", "clinic_chatbot"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", ""),
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),

			MaxConnections: getEnvAsInt("DB_MAX_CONNECTIONS", 100),
			MinConnections: getEnvAsInt("DB_MIN_CONNECTIONS", 10),
			MaxIdleTime:    getEnvAsDuration("DB_MAX_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", "10m"),
		},

		Session: SessionConfig{
			Timeout:       getEnvAsDuration("SESSION_TIMEOUT", "180s"),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", "1m"),
		},

		Clinic: ClinicConfig{
			Name:            getEnv("CLINIC_NAME", "Baptist Health Hospital Doral"),
			Phone:           getEnv("CLINIC_PHONE", "786-595-3900"),
			Address:         getEnv("CLINIC_ADDRESS", "9500 NW 58 Street, Doral, FL 33178"),
			BillingPhone:    getEnv("BILLING_PHONE", "786-596-6507"),
			InsurancePhone:  getEnv("INSURANCE_PHONE", "786-662-7667"),
			Email:           getEnv("CLINIC_EMAIL", "insurance@BaptistHealth.net"),
			PlaceholderDate: getEnv("PLACEHOLDER_DATE", "2024-02-15"),
		},

		WhatsApp: WhatsAppConfig{
			AccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			VerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
			AppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),
			APIURL:        getEnv("WHATSAPP_API_URL", "https://graph.facebook.com"),
			APIVersion:    getEnv("WHATSAPP_API_VERSION", "v18.0"),
		},

		Security: SecurityConfig{
			RateLimitPerMin: getEnvAsInt("RATE_LIMIT_PER_MIN", 60),
			RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			TrustedProxies:  getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},

		CatalogFile: getEnv("CATALOG_FILE", ""),
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return c, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch c.Database.Type {
	case DatabaseMemory:
	case DatabaseMongoDB, DatabasePostgres:
		if c.Database.URI == "" && c.Database.Host == "" {
			return fmt.Errorf("database URI or host must be provided for %s", c.Database.Type)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Session.Timeout <= 0 {
		return fmt.Errorf("session timeout must be positive")
	}
	if c.Security.RateLimitPerMin <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

// BuildDatabaseURI constructs the database URI if not provided
func (c *Config) BuildDatabaseURI() string {
	if c.Database.URI != "" {
		return c.Database.URI
	}

	port := c.Database.Port
	switch c.Database.Type {
	case DatabaseMongoDB:
		if port == "" {
			port = "27017"
		}
		if c.Database.Username != "" && c.Database.Password != "" {
			return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s",
				c.Database.Username,
				c.Database.Password,
				c.Database.Host,
				port,
				c.Database.Name,
			)
		}
		return fmt.Sprintf("mongodb://%s:%s/%s",
			c.Database.Host,
			port,
			c.Database.Name,
		)
	case DatabasePostgres:
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host,
			port,
			c.Database.Name,
		)
	default:
		return ""
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
