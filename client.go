package evaldash

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"github.com/blueberrycongee/evaldash/internal/httputil"
	"github.com/blueberrycongee/evaldash/internal/metrics"
	"github.com/blueberrycongee/evaldash/internal/observability"
	"github.com/blueberrycongee/evaldash/internal/resilience"
	"github.com/blueberrycongee/evaldash/pkg/cache"
	"github.com/blueberrycongee/evaldash/pkg/errors"
)

// Base headers sent on every call.
const (
	HeaderContentType        = "Content-Type"
	HeaderAccept             = "Accept"
	HeaderSkipBrowserWarning = "ngrok-skip-browser-warning"
	HeaderRequestID          = observability.RequestIDHeader

	contentTypeJSON = "application/json"
)

// Client performs calls against the evaluation backend.
// It is safe for concurrent use; it holds no per-call state.
type Client struct {
	config     *ClientConfig
	baseURL    string
	httpClient *http.Client
	logger     *observability.Logger
	tracer     trace.Tracer
	metrics    MetricsRecorder
	lang       language.Tag

	retry   *resilience.RetryPolicy
	breaker *resilience.CircuitBreaker
	limiter *resilience.RateLimiter
	sem     *resilience.Semaphore
	cache   cache.Cache

	closed atomic.Bool
}

// New creates a new client with the given options.
//
// Example:
//
//	client, err := evaldash.New(
//	    evaldash.WithBaseURL("https://abc.ngrok.app"),
//	    evaldash.WithTimeout(10*time.Second),
//	)
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("base url %q must start with http:// or https://", baseURL)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}

	c := &Client{
		config:  cfg,
		baseURL: baseURL,
		logger:  observability.Wrap(cfg.Logger, observability.NewRedactor()),
		metrics: cfg.Metrics,
		lang:    errors.MatchLanguage(cfg.Language),
		cache:   cfg.Cache,
	}
	if c.metrics == nil {
		c.metrics = metrics.Nop{}
	}

	c.httpClient = cfg.HTTPClient
	if c.httpClient == nil {
		// No client-level timeout: the per-call context carries the bound.
		c.httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	c.tracer = tp.Tracer(observability.TracerName, trace.WithInstrumentationVersion(Version))

	if cfg.RetryCount > 0 {
		c.retry = resilience.NewRetryPolicy(cfg.RetryCount, cfg.RetryBackoff, cfg.RetryMaxBackoff, cfg.RetryJitter, nil)
	}
	c.limiter = resilience.NewRateLimiter(cfg.RateLimit, cfg.RateLimitBurst)
	if cfg.MaxConcurrency > 0 {
		c.sem = resilience.NewSemaphore(cfg.MaxConcurrency)
	}
	if cfg.CircuitBreaker != nil {
		c.breaker = resilience.NewCircuitBreaker(baseURL, *cfg.CircuitBreaker)
		c.breaker.OnStateChange(func(name string, from, to resilience.CircuitState) {
			c.metrics.ObserveCircuitState(name, int(to))
			c.logger.Warn("circuit breaker state changed", "backend", name, "from", from.String(), "to", to.String())
		})
	}

	c.logger.Debug("evaldash client initialized",
		"base_url", baseURL,
		"timeout", cfg.Timeout,
		"retry_count", cfg.RetryCount,
		"cache_enabled", c.cache != nil,
		"circuit_breaker", c.breaker != nil,
		"rate_limit", cfg.RateLimit,
		"max_concurrency", cfg.MaxConcurrency,
	)

	return c, nil
}

// BaseURL returns the backend origin calls are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the bound applied to each call.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// Close releases all resources held by the client. It is safe to call twice.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	var err error
	if c.cache != nil {
		err = c.cache.Close()
	}
	c.httpClient.CloseIdleConnections()
	c.logger.Debug("evaldash client closed")
	return err
}

// RequestOptions describes one call besides its endpoint.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body is serialized to JSON when non-nil.
	Body any
	// Headers override the client and base headers for this call.
	Headers map[string]string
	// Cache adjusts caching for this call; ignored when no cache is configured.
	Cache *CacheControl
}

// acceptFunc classifies a settled HTTP exchange. A nil return means the
// reply is valid for the caller.
type acceptFunc func(status int, body []byte) error

// callState accumulates what a call reports once settled.
type callState struct {
	status   int
	attempts int
	cacheHit bool
}

// execute is the only place network I/O happens.
func (c *Client) execute(ctx context.Context, endpoint string, opts RequestOptions, accept acceptFunc) error {
	start := time.Now()
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}

	ctx, requestID := observability.GetOrCreateRequestID(ctx)
	ctx, span := observability.StartRequestSpan(ctx, c.tracer, method, pathOf(endpoint))

	var state callState
	err := c.run(ctx, method, endpoint, requestID, opts, accept, &state)

	c.finish(ctx, span, method, endpoint, requestID, start, &state, err)
	return err
}

func (c *Client) run(
	ctx context.Context,
	method, endpoint, requestID string,
	opts RequestOptions,
	accept acceptFunc,
	state *callState,
) error {
	if c.closed.Load() {
		return errors.NewUnknownError(c.lang, fmt.Errorf("client is closed"))
	}
	if !strings.HasPrefix(endpoint, "/") {
		return errors.NewUnknownError(c.lang, fmt.Errorf("endpoint %q must start with /", endpoint))
	}

	_, payload, err := httputil.EncodeJSON(opts.Body)
	if err != nil {
		return errors.NewUnknownError(c.lang, err)
	}

	headers := c.headers(requestID, opts.Headers)

	cacheKey := ""
	if c.cacheable(method, opts.Cache) {
		cacheKey = cache.Key(c.baseURL, method, endpoint, payload)
		if !(opts.Cache != nil && opts.Cache.NoCache) && c.fromCache(ctx, cacheKey, accept) {
			state.cacheHit = true
			state.status = http.StatusOK
			return nil
		}
	}

	var body []byte
	attempt := func(ctx context.Context) error {
		state.attempts++
		status, respBody, err := c.send(ctx, method, c.baseURL+endpoint, payload, headers)
		state.status = status
		if err != nil {
			return err
		}
		body = respBody
		return accept(status, respBody)
	}
	retryable := func(err error) bool {
		return errors.IsRetryable(err) && !stderrors.Is(err, resilience.ErrCircuitOpen)
	}
	onRetry := func(n int, delay time.Duration, err error) {
		c.metrics.ObserveRetry(endpoint, method)
		c.logger.WithRequestID(ctx).RedactedLog(ctx, slog.LevelDebug, "retrying backend call",
			"endpoint", endpoint, "attempt", n, "delay", delay, "error", err)
	}

	if err := c.retry.Do(ctx, attempt, retryable, onRetry); err != nil {
		if ctx.Err() != nil && errors.IsRetryable(err) {
			// Cancelled or expired while backing off.
			return c.classifyTransport(ctx, ctx, err)
		}
		return err
	}

	if cacheKey != "" && !(opts.Cache != nil && opts.Cache.NoStore) {
		c.toCache(ctx, cacheKey, body, opts.Cache)
	}
	return nil
}

// send performs one HTTP exchange bounded by the client timeout.
// Only transport-level failures are returned as errors; any status is returned as is.
func (c *Client) send(ctx context.Context, method, url string, payload []byte, headers map[string]string) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, c.classifyTransport(ctx, ctx, err)
	}
	if c.sem != nil {
		if err := c.sem.Acquire(ctx); err != nil {
			return 0, nil, c.classifyTransport(ctx, ctx, err)
		}
		defer c.sem.Release()
	}
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return 0, nil, errors.NewNetworkError(c.lang, err)
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, url, body)
	if err != nil {
		return 0, nil, errors.NewUnknownError(c.lang, fmt.Errorf("build request: %w", err))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	observability.InjectHeaders(ctx, req.Header)

	c.metrics.InFlightAdd(1)
	defer c.metrics.InFlightAdd(-1)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := c.classifyTransport(ctx, reqCtx, err)
		c.recordBreaker(apiErr)
		return 0, nil, apiErr
	}
	defer resp.Body.Close()

	respBody, err := httputil.ReadLimitedBody(resp.Body, c.config.MaxResponseBytes)
	if err != nil {
		if stderrors.Is(err, httputil.ErrResponseBodyTooLarge) {
			c.recordBreaker(nil)
			return resp.StatusCode, nil, errors.NewUnknownError(c.lang, err)
		}
		apiErr := c.classifyTransport(ctx, reqCtx, err)
		c.recordBreaker(apiErr)
		return resp.StatusCode, nil, apiErr
	}

	c.recordBreaker(nil)
	return resp.StatusCode, respBody, nil
}

// classifyTransport maps a failed exchange to timeout, unknown (caller
// cancellation) or network kind.
func (c *Client) classifyTransport(parent, reqCtx context.Context, err error) *APIError {
	if stderrors.Is(parent.Err(), context.Canceled) {
		return errors.NewUnknownError(c.lang, parent.Err())
	}
	if stderrors.Is(reqCtx.Err(), context.DeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(c.lang, err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewTimeoutError(c.lang, err)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.NewUnknownError(c.lang, err)
	}
	return errors.NewNetworkError(c.lang, err)
}

func (c *Client) recordBreaker(err *APIError) {
	if c.breaker == nil {
		return
	}
	if err != nil && (err.Kind == errors.KindNetwork || err.Kind == errors.KindTimeout) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

// headers merges base, client and per-call headers; later layers win.
func (c *Client) headers(requestID string, perCall map[string]string) map[string]string {
	h := map[string]string{
		HeaderContentType:        contentTypeJSON,
		HeaderAccept:             contentTypeJSON,
		HeaderSkipBrowserWarning: "true",
		HeaderRequestID:          requestID,
	}
	for k, v := range c.config.Headers {
		h[k] = v
	}
	for k, v := range perCall {
		h[k] = v
	}
	return h
}

func (c *Client) cacheable(method string, ctl *CacheControl) bool {
	if c.cache == nil {
		return false
	}
	if ctl != nil && ctl.NoCache && ctl.NoStore {
		return false
	}
	// Feature queries are POSTs without side effects; writes are never cached.
	return method == http.MethodGet || method == http.MethodPost
}

func (c *Client) fromCache(ctx context.Context, key string, accept acceptFunc) bool {
	cached, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.metrics.ObserveCache("error")
		c.logger.Warn("cache lookup failed", "error", err)
		return false
	case cached == nil:
		c.metrics.ObserveCache("miss")
		return false
	}
	if err := accept(http.StatusOK, cached); err != nil {
		c.metrics.ObserveCache("error")
		_ = c.cache.Delete(ctx, key) //nolint:errcheck // a corrupt entry is refetched anyway
		return false
	}
	c.metrics.ObserveCache("hit")
	return true
}

func (c *Client) toCache(ctx context.Context, key string, body []byte, ctl *CacheControl) {
	ttl := c.config.CacheTTL
	if ctl != nil && ctl.TTL > 0 {
		ttl = ctl.TTL
	}
	if err := c.cache.Set(ctx, key, body, ttl); err != nil {
		c.logger.Warn("cache store failed", "error", err)
	}
}

// finish emits the log line, metric observation and span of a settled call.
func (c *Client) finish(
	ctx context.Context,
	span trace.Span,
	method, endpoint, requestID string,
	start time.Time,
	state *callState,
	err error,
) {
	elapsed := time.Since(start)
	kind := ""
	status := state.status
	if err != nil {
		kind = string(errors.KindOf(err))
		if apiErr, ok := errors.As(err); ok && apiErr.HasStatusCode() {
			status = apiErr.StatusCode
		}
	}

	c.metrics.ObserveRequest(endpoint, method, status, kind, elapsed)
	observability.EndRequestSpan(span, observability.RequestOutcome{
		StatusCode: status,
		ErrorKind:  kind,
		RequestID:  requestID,
		Attempts:   state.attempts,
		CacheHit:   state.cacheHit,
		Err:        err,
	})

	logger := c.logger.WithRequestID(ctx)
	if err != nil {
		logger.RedactedLog(ctx, slog.LevelWarn, "backend call failed",
			"method", method,
			"endpoint", endpoint,
			"kind", kind,
			"status", status,
			"attempts", state.attempts,
			"duration", elapsed,
			"error", err,
		)
		return
	}
	logger.RedactedLog(ctx, slog.LevelDebug, "backend call succeeded",
		"method", method,
		"endpoint", endpoint,
		"status", status,
		"attempts", state.attempts,
		"cache_hit", state.cacheHit,
		"duration", elapsed,
	)
}

func pathOf(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}
