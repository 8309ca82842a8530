// Package config loads process configuration from the environment.
//
// A .env file, when present, is loaded first with godotenv; real environment
// variables always win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	SQLitePath     string `mapstructure:"SQLITE_PATH"`
	DBMaxConns     int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32  `mapstructure:"DB_MIN_CONNS"`

	// IdempotencyBackend defaults to StorageBackend.
	IdempotencyBackend string `mapstructure:"IDEMPOTENCY_BACKEND"`
	RedisURL           string `mapstructure:"REDIS_URL"`

	KafkaBrokers     string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopicPrefix string `mapstructure:"KAFKA_TOPIC_PREFIX"`

	ServiceName       string  `mapstructure:"SERVICE_NAME"`
	OTelEnabled       bool    `mapstructure:"OTEL_ENABLED"`
	OTelEndpoint      string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelSamplingRatio float64 `mapstructure:"OTEL_SAMPLING_RATIO"`

	SeedDemoData   bool          `mapstructure:"SEED_DEMO_DATA"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
}

var defaults = map[string]any{
	"PORT":                        "8080",
	"ENV":                         "development",
	"LOG_LEVEL":                   "info",
	"STORAGE_BACKEND":             BackendMemory,
	"SQLITE_PATH":                 "data/scheduling.db",
	"DB_MAX_CONNS":                10,
	"DB_MIN_CONNS":                1,
	"KAFKA_TOPIC_PREFIX":          "scheduling.",
	"SERVICE_NAME":                "scheduling-api",
	"OTEL_ENABLED":                false,
	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317",
	"OTEL_SAMPLING_RATIO":         1.0,
	"SEED_DEMO_DATA":              true,
	"REQUEST_TIMEOUT":             "30s",
	"CORS_ORIGINS":                "http://localhost:3000",
}

var envKeys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"STORAGE_BACKEND", "DATABASE_URL", "SQLITE_PATH", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"IDEMPOTENCY_BACKEND", "REDIS_URL",
	"KAFKA_BROKERS", "KAFKA_TOPIC_PREFIX",
	"SERVICE_NAME", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SAMPLING_RATIO",
	"SEED_DEMO_DATA", "REQUEST_TIMEOUT", "CORS_ORIGINS",
}

// Load reads envFiles (missing files are ignored), then the environment,
// and validates the result.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.IdempotencyBackend = strings.ToLower(strings.TrimSpace(c.IdempotencyBackend))
	if c.IdempotencyBackend == "" {
		c.IdempotencyBackend = c.StorageBackend
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORAGE_BACKEND is %q", BackendSQLite)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND is %q", BackendPostgres)
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q, %q, or %q, got %q", BackendMemory, BackendSQLite, BackendPostgres, c.StorageBackend)
	}

	switch c.IdempotencyBackend {
	case c.StorageBackend:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when IDEMPOTENCY_BACKEND is %q", BackendRedis)
		}
	default:
		return fmt.Errorf("IDEMPOTENCY_BACKEND must be %q or match STORAGE_BACKEND (%q), got %q", BackendRedis, c.StorageBackend, c.IdempotencyBackend)
	}

	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS, got %d", c.DBMinConns)
	}
	if c.OTelSamplingRatio < 0 || c.OTelSamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be within [0,1], got %v", c.OTelSamplingRatio)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}
