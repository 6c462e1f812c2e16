// Package config provides configuration management with hot-reload support.
// It uses fsnotify to watch for file changes and atomic pointer swaps for zero-downtime updates.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	evaldash "github.com/blueberrycongee/evaldash"
	"github.com/blueberrycongee/evaldash/caches"
	"github.com/blueberrycongee/evaldash/internal/observability"
	"github.com/blueberrycongee/evaldash/internal/resilience"
)

// Environment variables read on top of the file.
const (
	EnvAPIURL   = "EVALDASH_API_URL"
	EnvLogLevel = "EVALDASH_LOG_LEVEL"
	EnvFile     = "ENV_FILE"
)

// Config represents the complete client configuration.
type Config struct {
	API            APIConfig            `yaml:"api"`
	Retry          RetryConfig          `yaml:"retry"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	Cache          CacheConfig          `yaml:"cache"`
	Logging        LoggingConfig        `yaml:"logging"`
	Metrics        MetricsConfig        `yaml:"metrics"`
	Tracing        TracingConfig        `yaml:"tracing"`
}

// APIConfig describes the evaluation backend.
type APIConfig struct {
	BaseURL          string            `yaml:"base_url"`
	Timeout          time.Duration     `yaml:"timeout"`
	Headers          map[string]string `yaml:"headers"`
	Language         string            `yaml:"language"` // en, id
	MaxResponseBytes int64             `yaml:"max_response_bytes"`
	MaxConcurrency   int               `yaml:"max_concurrency"`
}

// RetryConfig controls retries of timeout and network failures.
type RetryConfig struct {
	Count      int           `yaml:"count"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
	Jitter     float64       `yaml:"jitter"`
}

// RateLimitConfig defines client-side rate limiting parameters.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// CircuitBreakerConfig defines circuit breaker parameters.
type CircuitBreakerConfig struct {
	Enabled             bool          `yaml:"enabled"`
	FailureThreshold    int           `yaml:"failure_threshold"`
	SuccessThreshold    int           `yaml:"success_threshold"`
	OpenTimeout         time.Duration `yaml:"open_timeout"`
	HalfOpenMaxRequests int           `yaml:"half_open_max_requests"`
}

// CacheConfig enables the response cache and selects its backend.
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	TTL           time.Duration `yaml:"ttl"`
	caches.Config `yaml:",inline"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level     string `yaml:"level"`  // debug, info, warn, error
	Format    string `yaml:"format"` // json, text
	AddSource bool   `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// TracingConfig contains OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`     // OTLP endpoint (e.g., "localhost:4317")
	Protocol    string  `yaml:"protocol"`     // grpc, http
	ServiceName string  `yaml:"service_name"` // Service name for traces
	SampleRate  float64 `yaml:"sample_rate"`  // Sampling rate (0.0 to 1.0)
	Insecure    bool    `yaml:"insecure"`     // Use insecure connection (no TLS)
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cb := resilience.DefaultCircuitBreakerConfig()
	return &Config{
		API: APIConfig{
			BaseURL:  evaldash.DefaultBaseURL,
			Timeout:  evaldash.DefaultTimeout,
			Language: "en",
		},
		Retry: RetryConfig{
			Count:      0,
			Backoff:    500 * time.Millisecond,
			MaxBackoff: 5 * time.Second,
			Jitter:     0.2,
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 10,
			BurstSize:         5,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:             false,
			FailureThreshold:    cb.FailureThreshold,
			SuccessThreshold:    cb.SuccessThreshold,
			OpenTimeout:         cb.OpenTimeout,
			HalfOpenMaxRequests: cb.HalfOpenMaxRequests,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     5 * time.Minute,
			Config:  caches.DefaultConfig(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			ServiceName: "evaldash",
			SampleRate:  1.0,
			Insecure:    true,
		},
	}
}

// LoadEnvFiles loads ENV_FILE when set, otherwise .env.local and .env.
// Missing files are ignored; variables already set are never overwritten.
func LoadEnvFiles() error {
	if envFile := os.Getenv(EnvFile); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// Load returns the configuration of path, or the defaults when path is
// empty, with environment overrides applied and validated.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}
	cfg := DefaultConfig()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile reads and parses a YAML configuration file.
// Environment variables in the format ${VAR_NAME} are expanded.
func LoadFromFile(path string) (*Config, error) {
	cfg, _, err := loadFile(path)
	return cfg, err
}

func loadFile(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return cfg, data, nil
}

// Parse decodes YAML over the defaults, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api.base_url must be an absolute http(s) url, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.MaxResponseBytes < 0 {
		return fmt.Errorf("api.max_response_bytes cannot be negative")
	}
	if c.API.MaxConcurrency < 0 {
		return fmt.Errorf("api.max_concurrency cannot be negative")
	}
	if _, err := language.Parse(c.API.Language); err != nil {
		return fmt.Errorf("api.language %q: %w", c.API.Language, err)
	}

	if c.Retry.Count < 0 {
		return fmt.Errorf("retry.count cannot be negative")
	}
	if c.Retry.Backoff < 0 || c.Retry.MaxBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter > 1 {
		return fmt.Errorf("retry.jitter must be between 0 and 1, got %v", c.Retry.Jitter)
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limit.requests_per_second must be positive when enabled")
	}
	if c.CircuitBreaker.FailureThreshold < 0 || c.CircuitBreaker.SuccessThreshold < 0 || c.CircuitBreaker.OpenTimeout < 0 {
		return fmt.Errorf("circuit_breaker values cannot be negative")
	}

	if c.Cache.Enabled {
		switch c.Cache.Type {
		case "", caches.TypeLocal, caches.TypeRedis, caches.TypeDual:
		default:
			return fmt.Errorf("cache.type %q is not one of local, redis, dual", c.Cache.Type)
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q is not one of json, text", c.Logging.Format)
	}

	if c.Tracing.Enabled {
		switch c.Tracing.Protocol {
		case "grpc", "http":
		default:
			return fmt.Errorf("tracing.protocol %q is not one of grpc, http", c.Tracing.Protocol)
		}
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %v", c.Tracing.SampleRate)
	}

	return nil
}

// LoggerConfig converts the logging section.
func (c *Config) LoggerConfig() observability.LoggerConfig {
	return observability.LoggerConfig{
		Level:      observability.ParseLevel(c.Logging.Level),
		AddSource:  c.Logging.AddSource,
		JSONFormat: c.Logging.Format == "json",
	}
}

// TracingConfig converts the tracing section.
func (c *Config) TracingConfig() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		Endpoint:    c.Tracing.Endpoint,
		Protocol:    c.Tracing.Protocol,
		ServiceName: c.Tracing.ServiceName,
		SampleRate:  c.Tracing.SampleRate,
		Insecure:    c.Tracing.Insecure,
	}
}

// ClientOptions translates the configuration into client options. When the
// cache is enabled its backend is created here and owned by the client.
func (c *Config) ClientOptions(logger *slog.Logger) ([]evaldash.Option, error) {
	lang, err := language.Parse(c.API.Language)
	if err != nil {
		return nil, fmt.Errorf("parse language: %w", err)
	}

	opts := []evaldash.Option{
		evaldash.WithBaseURL(c.API.BaseURL),
		evaldash.WithTimeout(c.API.Timeout),
		evaldash.WithLanguage(lang),
		evaldash.WithLogger(logger),
		evaldash.WithRetry(c.Retry.Count, c.Retry.Backoff),
		evaldash.WithRetryMaxBackoff(c.Retry.MaxBackoff),
		evaldash.WithRetryJitter(c.Retry.Jitter),
	}
	for k, v := range c.API.Headers {
		opts = append(opts, evaldash.WithHeader(k, v))
	}
	if c.API.MaxResponseBytes > 0 {
		opts = append(opts, evaldash.WithMaxResponseBytes(c.API.MaxResponseBytes))
	}
	if c.API.MaxConcurrency > 0 {
		opts = append(opts, evaldash.WithMaxConcurrency(c.API.MaxConcurrency))
	}
	if c.RateLimit.Enabled {
		opts = append(opts, evaldash.WithRateLimit(c.RateLimit.RequestsPerSecond, c.RateLimit.BurstSize))
	}
	if c.CircuitBreaker.Enabled {
		opts = append(opts, evaldash.WithCircuitBreaker(evaldash.CircuitBreakerConfig{
			FailureThreshold:    c.CircuitBreaker.FailureThreshold,
			SuccessThreshold:    c.CircuitBreaker.SuccessThreshold,
			OpenTimeout:         c.CircuitBreaker.OpenTimeout,
			HalfOpenMaxRequests: c.CircuitBreaker.HalfOpenMaxRequests,
		}))
	}
	if c.Cache.Enabled {
		backend, err := caches.New(c.Cache.Config)
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		opts = append(opts, evaldash.WithCache(backend))
		if c.Cache.TTL > 0 {
			opts = append(opts, evaldash.WithCacheTTL(c.Cache.TTL))
		}
	}
	if !c.Metrics.Enabled {
		opts = append(opts, evaldash.WithMetrics(nil))
	}
	return opts, nil
}

// Warning codes reported by Warnings.
const (
	WarningInsecureBaseURL     = "insecure_base_url"
	WarningRetryWithoutBreaker = "retry_without_circuit_breaker"
	WarningLongCacheTTL        = "long_cache_ttl"
)

// Warning is a valid but questionable setting.
type Warning struct {
	Code    string
	Message string
}

// Warnings reports settings that are accepted but likely unintended.
func (c *Config) Warnings() []Warning {
	var out []Warning

	if u, err := url.Parse(c.API.BaseURL); err == nil && u.Scheme == "http" && !isLoopback(u.Hostname()) {
		out = append(out, Warning{
			Code:    WarningInsecureBaseURL,
			Message: "api.base_url uses plain http to a non-local host",
		})
	}
	if c.Retry.Count > 0 && !c.CircuitBreaker.Enabled {
		out = append(out, Warning{
			Code:    WarningRetryWithoutBreaker,
			Message: "retries are enabled without a circuit breaker; an unreachable backend multiplies every call",
		})
	}
	if c.Cache.Enabled && c.Cache.TTL > time.Hour {
		out = append(out, Warning{
			Code:    WarningLongCacheTTL,
			Message: "cache.ttl above one hour may hide retrained model results",
		})
	}
	return out
}

func isLoopback(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
