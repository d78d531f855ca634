// Package config centralises configuration parsing for the exercise tracker.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config captures runtime configuration values for the tracker.
type Config struct {
	HTTPAddress        string
	StoreDriver        string
	MongoURI           string
	MongoDatabase      string
	PostgresURL        string
	StoreTimeout       time.Duration
	KafkaBrokers       []string
	PublishTimeout     time.Duration
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	JWTSecret          string
	JWTIssuer          string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
}

// Load reads a .env file when present, then environment variables, applying defaults for local dev.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads environment variables into Config.
func FromEnv() Config {
	cfg := Config{
		HTTPAddress:        getEnv("HTTP_ADDRESS", ":"+getEnv("PORT", "3000")),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:           getEnv("MONGO_URI", ""),
		MongoDatabase:      getEnv("MONGO_DATABASE", "exercise-db"),
		PostgresURL:        getEnv("POSTGRES_URL", ""),
		StoreTimeout:       getDurationEnv("STORE_TIMEOUT", 10*time.Second),
		KafkaBrokers:       splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		PublishTimeout:     getDurationEnv("PUBLISH_TIMEOUT", 2*time.Second),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitRPS:       getFloatEnv("RATE_LIMIT_RPS", 0),
		RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 20),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "exercise-tracker"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		ShutdownTimeout:    getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	return cfg
}

// Validate reports settings the process cannot start without.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}
	case DriverPostgres:
		if c.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required for the postgres store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
