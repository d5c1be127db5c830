package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"basegraph.app/scout/core/db"
)

type Config struct {
	OTel      OTelConfig
	GitHub    GitHubConfig
	Retrieval RetrievalConfig
	Redis     RedisConfig
	Env       string
	Port      string
	DB        db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64 // fraction of root traces kept; out of (0,1] means all
}

type GitHubConfig struct {
	Token    string
	Endpoint string
	Timeout  time.Duration
}

type RetrievalConfig struct {
	CacheBackend    string // "memory" or "redis"
	MaxDepth        int
	CacheCapacity   int
	CacheTTL        time.Duration
	AdmissionWindow time.Duration
	AdmissionLimit  int
}

type RedisConfig struct {
	URL string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.cli for the scout command
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("SCOUT_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:  getEnv("SCOUT_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "scout"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),
		},
		GitHub: GitHubConfig{
			Token:    getEnv("GITHUB_TOKEN", ""),
			Endpoint: getEnv("GITHUB_GRAPHQL_URL", "https://api.github.com/graphql"),
			Timeout:  getEnvSeconds("GITHUB_TIMEOUT", 15*time.Second),
		},
		Retrieval: RetrievalConfig{
			CacheBackend:    getEnv("CACHE_BACKEND", CacheBackendMemory),
			MaxDepth:        getEnvInt("TREE_MAX_DEPTH", 3),
			CacheCapacity:   getEnvInt("CACHE_CAPACITY", 100),
			CacheTTL:        getEnvSeconds("CACHE_TTL_SECONDS", 300*time.Second),
			AdmissionWindow: getEnvSeconds("ADMISSION_WINDOW_SECONDS", 60*time.Second),
			AdmissionLimit:  getEnvInt("ADMISSION_LIMIT", 30),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
	}

	if cfg.GitHub.Token == "" {
		return Config{}, fmt.Errorf("GITHUB_TOKEN is required")
	}

	switch cfg.Retrieval.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if !cfg.Redis.Enabled() {
			return Config{}, fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
		}
	default:
		return Config{}, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.Retrieval.CacheBackend)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil && i > 0 {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
