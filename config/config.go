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

// ErrMissingAPIKey is wrapped by the ConfigurationError returned when
// DEXTOOLS_API_KEY is unset.
var ErrMissingAPIKey = errors.New("api key not set")

// ConfigurationError is fatal and reported before any network call.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

type Config struct {
	App struct {
		Environment string
		LogLevel    string
		LogDir      string
	}

	API struct {
		Key            string
		CatalogFile    string
		RequestTimeout time.Duration
		UserAgent      string
	}

	Retry struct {
		MaxAttemptsPerCandidate int
		BaseDelay               time.Duration
		MaxDelay                time.Duration
		Jitter                  time.Duration
		DiagnosticAttempts      int
		Revisits                int
	}

	RateLimit struct {
		PerMinute int
		Burst     int
	}

	Metrics struct {
		Addr string
	}

	Report struct {
		OpenAIKey     string
		OpenAIBaseURL string
		Model         string
		OutputDir     string
		Timeout       time.Duration
	}
}

// DefaultUserAgent looks like a desktop browser; the edge proxy in front of
// the API blocks obvious script clients more often.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// LoadDotEnv loads a .env file from the working directory when one exists.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load reads the configuration from the environment. A missing API key is a
// *ConfigurationError.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.App.Environment = getEnvOrDefault("APP_ENV", "production")
	cfg.App.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.App.LogDir = getEnvOrDefault("LOG_DIR", "logs")

	cfg.API.Key = strings.TrimSpace(os.Getenv("DEXTOOLS_API_KEY"))
	cfg.API.CatalogFile = os.Getenv("DEXSCOUT_CATALOG_FILE")
	cfg.API.RequestTimeout = time.Duration(getEnvAsIntOrDefault("DEXSCOUT_REQUEST_TIMEOUT_SECS", 10)) * time.Second
	cfg.API.UserAgent = getEnvOrDefault("DEXSCOUT_USER_AGENT", DefaultUserAgent)

	cfg.Retry.MaxAttemptsPerCandidate = getEnvAsIntOrDefault("DEXSCOUT_MAX_ATTEMPTS", 3)
	cfg.Retry.BaseDelay = time.Duration(getEnvAsIntOrDefault("DEXSCOUT_BACKOFF_BASE_MS", 1000)) * time.Millisecond
	cfg.Retry.MaxDelay = time.Duration(getEnvAsIntOrDefault("DEXSCOUT_BACKOFF_MAX_MS", 30000)) * time.Millisecond
	cfg.Retry.Jitter = time.Duration(getEnvAsIntOrDefault("DEXSCOUT_JITTER_MS", 250)) * time.Millisecond
	cfg.Retry.DiagnosticAttempts = getEnvAsIntOrDefault("DEXSCOUT_DIAGNOSTIC_ATTEMPTS", 3)
	cfg.Retry.Revisits = getEnvAsIntOrDefault("DEXSCOUT_REVISITS", 0)

	cfg.RateLimit.PerMinute = getEnvAsIntOrDefault("DEXSCOUT_RATE_PER_MINUTE", 30)
	cfg.RateLimit.Burst = getEnvAsIntOrDefault("DEXSCOUT_RATE_BURST", 1)

	cfg.Metrics.Addr = os.Getenv("METRICS_ADDR")

	cfg.Report.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Report.OpenAIBaseURL = getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	cfg.Report.Model = getEnvOrDefault("OPENAI_MODEL", "gpt-4o")
	cfg.Report.OutputDir = getEnvOrDefault("REPORT_DIR", "outputs")
	cfg.Report.Timeout = time.Duration(getEnvAsIntOrDefault("OPENAI_TIMEOUT_SECS", 60)) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return &ConfigurationError{Key: "DEXTOOLS_API_KEY", Err: ErrMissingAPIKey}
	}
	if c.Retry.MaxAttemptsPerCandidate < 1 {
		return &ConfigurationError{Key: "DEXSCOUT_MAX_ATTEMPTS", Err: fmt.Errorf("must be >= 1, got %d", c.Retry.MaxAttemptsPerCandidate)}
	}
	if c.RateLimit.PerMinute < 1 {
		return &ConfigurationError{Key: "DEXSCOUT_RATE_PER_MINUTE", Err: fmt.Errorf("must be >= 1, got %d", c.RateLimit.PerMinute)}
	}
	if c.RateLimit.Burst < 1 {
		c.RateLimit.Burst = 1
	}
	if c.Retry.DiagnosticAttempts < 1 {
		c.Retry.DiagnosticAttempts = 1
	}
	if c.Retry.Revisits < 0 {
		c.Retry.Revisits = 0
	}
	return nil
}

// MaskedKey renders the key for logs without exposing it.
func (c *Config) MaskedKey() string {
	k := c.API.Key
	if len(k) <= 10 {
		return "****"
	}
	return k[:5] + "..." + k[len(k)-5:]
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
