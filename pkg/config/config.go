package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the application.
// Environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Market data provider
	Provider ProviderConfig

	// Pipeline
	Pipeline PipelineConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// DatabaseConfig holds PostgreSQL configuration. URL empty means the
// run-history store is disabled and runs are export-only.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration for the bar cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProviderConfig holds market data provider configuration.
type ProviderConfig struct {
	LookbackDays   int
	RequestTimeout time.Duration
	RatePerSecond  float64
	RateBurst      int
	MaxRetries     int
	UserAgent      string
	ProfileBaseURL string
	CacheTTL       time.Duration
	BreakerEnabled bool
}

// PipelineConfig holds scoring run configuration.
type PipelineConfig struct {
	Workers      int
	ModelDir     string
	OutputDir    string
	UniverseFile string
}

// SchedulerConfig holds cron configuration for scheduled runs.
type SchedulerConfig struct {
	Enabled bool
	// Spec is a 6-field cron expression (with seconds).
	Spec string
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Provider: ProviderConfig{
			LookbackDays:   getEnvAsInt("PROVIDER_LOOKBACK_DAYS", 400),
			RequestTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", "15s"),
			RatePerSecond:  getEnvAsFloat("PROVIDER_RATE_PER_SECOND", 4),
			RateBurst:      getEnvAsInt("PROVIDER_RATE_BURST", 2),
			MaxRetries:     getEnvAsInt("PROVIDER_MAX_RETRIES", 3),
			UserAgent:      getEnv("PROVIDER_USER_AGENT", defaultUserAgent),
			ProfileBaseURL: getEnv("PROVIDER_PROFILE_BASE_URL", "https://finance.yahoo.com"),
			CacheTTL:       getEnvAsDuration("PROVIDER_CACHE_TTL", "24h"),
			BreakerEnabled: getEnvAsBool("PROVIDER_BREAKER_ENABLED", true),
		},

		Pipeline: PipelineConfig{
			Workers:      getEnvAsInt("PIPELINE_WORKERS", 4),
			ModelDir:     getEnv("MODEL_DIR", "config/models"),
			OutputDir:    getEnv("OUTPUT_DIR", "out"),
			UniverseFile: getEnv("UNIVERSE_FILE", "config/universe.yaml"),
		},

		Scheduler: SchedulerConfig{
			Enabled: getEnvAsBool("SCHEDULER_ENABLED", false),
			Spec:    getEnv("SCHEDULER_SPEC", "0 30 6 * * MON-FRI"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9091"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// validate checks required values. The database URL is optional; runs
// without it skip persistence entirely.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be >= 1")
	}

	if c.Provider.LookbackDays < 1 {
		return fmt.Errorf("PROVIDER_LOOKBACK_DAYS must be >= 1")
	}

	return nil
}

// loadEnvFile tries to load .env from a few likely locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
