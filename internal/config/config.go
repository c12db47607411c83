package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Fetching template sources
	FetchConcurrency int
	FetchTimeout     time.Duration
	FetchRetries     int
	FetchCacheSize   int
	FetchCacheTTL    time.Duration
	ManifestName     string

	// SourceRoot allows local directory sources below this path. Empty
	// disables local sources in the service.
	SourceRoot string

	// S3 sources
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool

	// Saved customization contexts
	ContextDB string

	// Job state
	JobTTL time.Duration
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("TEMPLATIZER_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		FetchConcurrency: envInt("FETCH_CONCURRENCY", 6),
		FetchTimeout:     envDuration("FETCH_TIMEOUT", 30*time.Second),
		FetchRetries:     envInt("FETCH_RETRIES", 3),
		FetchCacheSize:   envInt("FETCH_CACHE_SIZE", 256),
		FetchCacheTTL:    envDuration("FETCH_CACHE_TTL", 5*time.Minute),
		ManifestName:     envOr("MANIFEST_NAME", "manifest.yaml"),

		SourceRoot: os.Getenv("SOURCE_ROOT"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOr("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3UseSSL:    envBool("S3_USE_SSL", true),

		ContextDB: envOr("CONTEXT_DB", "templatizer.db"),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 6
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.FetchRetries <= 0 {
		cfg.FetchRetries = 3
	}
	if cfg.FetchCacheSize <= 0 {
		cfg.FetchCacheSize = 256
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks settings shared by every entrypoint.
func (c Config) Validate() error {
	if strings.Contains(c.ManifestName, "/") || strings.TrimSpace(c.ManifestName) == "" {
		return fmt.Errorf("MANIFEST_NAME must be a plain file name, got %q", c.ManifestName)
	}
	if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
	}
	return nil
}

// ValidateServer adds the checks only the HTTP service needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("TEMPLATIZER_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
