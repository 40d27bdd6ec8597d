package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Persistence
	StoreBackend string
	DataFile     string
	DatabaseURL  string
	SQLitePath   string

	// Budget engine
	TemplateFile   string
	IncomeDebounce time.Duration

	// Auth0 (optional; the API is open when unset)
	Auth0Domain   string
	Auth0Audience string

	// S3 backups
	S3 S3Config

	// AI analysis
	Gemini GeminiConfig

	// AMQP event fan-out (optional)
	AMQP AMQPConfig
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether backups are configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// GeminiConfig holds the analysis client configuration
type GeminiConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Language  string
	RateLimit int // requests per minute per client
}

// Enabled reports whether analysis is configured
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

// AMQPConfig holds the event publisher configuration
type AMQPConfig struct {
	URL      string
	Exchange string
}

// Enabled reports whether AMQP publishing is configured
func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

// AuthEnabled reports whether requests must carry an Auth0 token
func (c *Config) AuthEnabled() bool {
	return c.Auth0Domain != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		CORSOrigins:    strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:            getEnv("ENV", "development"),
		StoreBackend:   getEnv("STORE_BACKEND", StoreBackendFile),
		DataFile:       getEnv("DATA_FILE", "data/arthaku_master_data.json"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "data/arthaku.db"),
		TemplateFile:   getEnv("BUDGET_TEMPLATE_FILE", ""),
		IncomeDebounce: getEnvDuration("INCOME_DEBOUNCE", 500*time.Millisecond),
		Auth0Domain:    getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:  getEnv("AUTH0_AUDIENCE", ""),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
		Gemini: GeminiConfig{
			APIKey:    getEnv("GEMINI_API_KEY", ""),
			Model:     getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
			BaseURL:   getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Language:  getEnv("ANALYSIS_LANGUAGE", "Bahasa Indonesia"),
			RateLimit: getEnvInt("ANALYSIS_RATE_LIMIT", 6),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "arthaku.events"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreBackendFile:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required for the file store")
		}
	case StoreBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreBackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.Auth0Domain != "" && c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required when AUTH0_DOMAIN is set")
	}
	if c.IncomeDebounce <= 0 {
		return fmt.Errorf("INCOME_DEBOUNCE must be positive")
	}
	if c.Gemini.RateLimit <= 0 {
		return fmt.Errorf("ANALYSIS_RATE_LIMIT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
