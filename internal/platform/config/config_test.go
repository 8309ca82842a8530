package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// clearEnv unsets every key Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if cfg.Port != "8080" || cfg.StorageBackend != BackendMemory || cfg.IdempotencyBackend != BackendMemory {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.RequestTimeout != 30*time.Second || !cfg.SeedDemoData || cfg.DBMaxConns != 10 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://localhost:3000"}) {
		t.Fatalf("CORSOrigins=%v", cfg.CORSOrigins)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected development by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db")
	t.Setenv("IDEMPOTENCY_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if cfg.StorageBackend != BackendPostgres || cfg.IdempotencyBackend != BackendRedis {
		t.Fatalf("backends=%q/%q", cfg.StorageBackend, cfg.IdempotencyBackend)
	}
	if cfg.RequestTimeout != 5*time.Second || !cfg.OTelEnabled || cfg.OTelSamplingRatio != 0.25 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Fatalf("CORSOrigins=%v", cfg.CORSOrigins)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PORT=9999\nSTORAGE_BACKEND=sqlite\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() err=%v", err)
	}
	t.Setenv("PORT", "7000")
	_ = os.Unsetenv("PORT")
	t.Setenv("STORAGE_BACKEND", "memory")

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if cfg.Port != "9999" {
		t.Fatalf("Port=%q, want value from .env", cfg.Port)
	}
	if cfg.StorageBackend != BackendMemory {
		t.Fatalf("StorageBackend=%q, real env must win over .env", cfg.StorageBackend)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{StorageBackend: BackendMemory, IdempotencyBackend: BackendMemory, DBMaxConns: 10, DBMinConns: 1, OTelSamplingRatio: 1}
	}
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "unknown storage", mutate: func(c *Config) { c.StorageBackend = "mongo" }, wantErr: true},
		{name: "postgres without url", mutate: func(c *Config) { c.StorageBackend, c.IdempotencyBackend = BackendPostgres, BackendPostgres }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.StorageBackend, c.IdempotencyBackend = BackendSQLite, BackendSQLite }, wantErr: true},
		{name: "redis without url", mutate: func(c *Config) { c.IdempotencyBackend = BackendRedis }, wantErr: true},
		{name: "redis with url", mutate: func(c *Config) { c.IdempotencyBackend, c.RedisURL = BackendRedis, "redis://x" }},
		{name: "mismatched idempotency", mutate: func(c *Config) { c.IdempotencyBackend = BackendPostgres }, wantErr: true},
		{name: "min above max", mutate: func(c *Config) { c.DBMinConns = 11 }, wantErr: true},
		{name: "ratio out of range", mutate: func(c *Config) { c.OTelSamplingRatio = 1.5 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.RequestTimeout = -time.Second }, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err=%v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}
