package evaldash

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"github.com/blueberrycongee/evaldash/internal/httputil"
	"github.com/blueberrycongee/evaldash/internal/metrics"
	"github.com/blueberrycongee/evaldash/internal/resilience"
)

// DefaultBaseURL is the backend origin used when none is configured.
const DefaultBaseURL = "http://127.0.0.1:5002"

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 30 * time.Second

// ClientConfig holds all configuration for the evaldash client.
// It is built once by New and never changes afterwards.
type ClientConfig struct {
	// Backend
	BaseURL string
	Headers map[string]string

	// HTTP
	Timeout          time.Duration
	HTTPClient       *http.Client
	MaxResponseBytes int64

	// Retry (off unless RetryCount > 0). Only timeout and network failures are retried.
	RetryCount      int
	RetryBackoff    time.Duration
	RetryMaxBackoff time.Duration
	RetryJitter     float64

	// Caching (off unless Cache is set)
	Cache    Cache
	CacheTTL time.Duration

	// Rate limiting (off unless RateLimit > 0)
	RateLimit      float64
	RateLimitBurst int

	// Concurrency cap (off unless MaxConcurrency > 0)
	MaxConcurrency int

	// Circuit breaking (off unless CircuitBreaker is set)
	CircuitBreaker *resilience.CircuitBreakerConfig

	// Messages
	Language language.Tag

	// Observability
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	Metrics        MetricsRecorder
}

// Option is a function that configures the Client.
type Option func(*ClientConfig)

// MetricsRecorder receives one observation per settled call.
type MetricsRecorder = metrics.Recorder

// defaultConfig returns sensible defaults.
func defaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:          DefaultBaseURL,
		Headers:          map[string]string{},
		Timeout:          DefaultTimeout,
		MaxResponseBytes: httputil.DefaultMaxResponseBodyBytes,
		RetryCount:       0,
		RetryBackoff:     500 * time.Millisecond,
		RetryMaxBackoff:  5 * time.Second,
		RetryJitter:      0.2,
		CacheTTL:         5 * time.Minute,
		Language:         language.English,
		Logger:           slog.Default(),
		Metrics:          metrics.Prometheus{},
	}
}

// WithBaseURL sets the backend origin, e.g. "https://abc.ngrok.app".
func WithBaseURL(baseURL string) Option {
	return func(c *ClientConfig) {
		c.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithTimeout bounds every backend call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *ClientConfig) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithHeader adds a header sent on every call. It overrides the base headers;
// per-call headers override it in turn.
func WithHeader(key, value string) Option {
	return func(c *ClientConfig) {
		if c.Headers == nil {
			c.Headers = map[string]string{}
		}
		c.Headers[key] = value
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *ClientConfig) {
		c.HTTPClient = client
	}
}

// WithMaxResponseBytes caps how much of a response body is read.
func WithMaxResponseBytes(n int64) Option {
	return func(c *ClientConfig) {
		c.MaxResponseBytes = n
	}
}

// WithRetry enables bounded retries of timeout and network failures.
func WithRetry(count int, backoff time.Duration) Option {
	return func(c *ClientConfig) {
		c.RetryCount = count
		c.RetryBackoff = backoff
	}
}

// WithRetryMaxBackoff caps a single retry delay.
func WithRetryMaxBackoff(d time.Duration) Option {
	return func(c *ClientConfig) {
		c.RetryMaxBackoff = d
	}
}

// WithRetryJitter spreads retry delays by ±jitter (0.0 - 1.0).
func WithRetryJitter(jitter float64) Option {
	return func(c *ClientConfig) {
		c.RetryJitter = jitter
	}
}

// WithCache enables response caching. Two identical calls are then
// answered by one backend request while the entry lives.
func WithCache(cache Cache) Option {
	return func(c *ClientConfig) {
		c.Cache = cache
	}
}

// WithCacheTTL sets the default lifetime of cached replies.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *ClientConfig) {
		c.CacheTTL = ttl
	}
}

// WithRateLimit throttles outgoing calls to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *ClientConfig) {
		c.RateLimit = rps
		c.RateLimitBurst = burst
	}
}

// WithMaxConcurrency caps the number of backend calls in flight. Callers
// over the cap wait for a slot within their own deadline.
func WithMaxConcurrency(n int) Option {
	return func(c *ClientConfig) {
		c.MaxConcurrency = n
	}
}

// WithCircuitBreaker stops calling the backend after repeated transport failures.
func WithCircuitBreaker(cfg resilience.CircuitBreakerConfig) Option {
	return func(c *ClientConfig) {
		c.CircuitBreaker = &cfg
	}
}

// WithLanguage selects the language of fixed error messages.
// Unsupported languages fall back to English.
func WithLanguage(tag language.Tag) Option {
	return func(c *ClientConfig) {
		c.Language = tag
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}

// WithTracerProvider sets the provider spans are created from.
// The global otel provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *ClientConfig) {
		c.TracerProvider = tp
	}
}

// WithMetrics sets the metrics recorder. A nil recorder disables metrics.
func WithMetrics(rec MetricsRecorder) Option {
	return func(c *ClientConfig) {
		c.Metrics = rec
	}
}
