package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Engine  EngineConfig
	OTEL    OTELConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string
	IdempotencyTTL time.Duration
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// JWTConfig holds token verification configuration. Token issuance lives in
// the external auth service.
type JWTConfig struct {
	Secret string
}

// EngineConfig holds the tunable constants of the periodization engine.
// Gym equipment increments and 1RM formulas vary, so none of these are
// hardcoded.
type EngineConfig struct {
	// RoundingIncrement is the smallest practical plate increment resolved
	// weights are rounded to.
	RoundingIncrement float64
	// EpleyDivisor is the rep divisor of the Epley-style 1RM formula
	// weight * (1 + reps/divisor). 30 is the classic Epley constant.
	EpleyDivisor float64
	// MaxStaleness is the window after which an existing 1RM estimate decays
	// toward newly derived values instead of being kept monotonically.
	MaxStaleness time.Duration
	// AggregateTTL bounds the per-day aggregate memo lifetime. Correctness
	// comes from explicit invalidation; the TTL is a backstop.
	AggregateTTL time.Duration
}

// OTELConfig holds OpenTelemetry export configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	InstanceID     string
	Token          string
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "periodize"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Engine: EngineConfig{
			RoundingIncrement: getEnvAsFloat("ENGINE_ROUNDING_INCREMENT", 2.5),
			EpleyDivisor:      getEnvAsFloat("ENGINE_EPLEY_DIVISOR", 30),
			MaxStaleness:      getEnvAsDuration("ENGINE_MAX_STALENESS", 90*24*time.Hour),
			AggregateTTL:      getEnvAsDuration("ENGINE_AGGREGATE_TTL", 30*24*time.Hour),
		},
		OTEL: OTELConfig{
			Enabled:        getEnv("OTEL_ENABLED", "false") == "true",
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "periodize"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "local"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Engine.RoundingIncrement <= 0 {
		return fmt.Errorf("ENGINE_ROUNDING_INCREMENT must be positive")
	}
	if c.Engine.EpleyDivisor <= 0 {
		return fmt.Errorf("ENGINE_EPLEY_DIVISOR must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as float64 or returns a default value
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

// getEnvAsDuration retrieves an environment variable as time.Duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
