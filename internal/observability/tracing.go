package observability

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the instrumentation name of every evaldash span.
	TracerName = "github.com/blueberrycongee/evaldash"

	// Span attribute keys set on every backend call.
	AttrHTTPMethod = "http.method"
	AttrURLPath    = "url.path"
	AttrStatusCode = "http.status_code"
	AttrErrorKind  = "evaldash.error_kind"
	AttrRequestID  = "evaldash.request_id"
	AttrAttempts   = "evaldash.attempts"
	AttrCacheHit   = "evaldash.cache_hit"
)

// TracingConfig contains configuration for OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string  // OTLP endpoint (e.g., "localhost:4317")
	Protocol    string  // "grpc" or "http"
	ServiceName string  // Service name for traces
	SampleRate  float64 // Sampling rate (0.0 to 1.0)
	Insecure    bool    // Use insecure connection (no TLS)
}

// DefaultTracingConfig returns sensible defaults.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Enabled:     false,
		Endpoint:    "localhost:4317",
		Protocol:    "grpc",
		ServiceName: "evaldash",
		SampleRate:  1.0,
		Insecure:    true,
	}
}

// TracingConfigFromEnv overlays the standard OTEL_* variables on cfg.
func TracingConfigFromEnv(cfg TracingConfig) TracingConfig {
	cfg.Enabled = envBool("EVALDASH_TRACING_ENABLED", cfg.Enabled)
	cfg.Endpoint = envString("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Endpoint)
	cfg.Protocol = envString("OTEL_EXPORTER_OTLP_PROTOCOL", cfg.Protocol)
	cfg.ServiceName = envString("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.SampleRate = envFloat("OTEL_TRACES_SAMPLER_ARG", cfg.SampleRate)
	cfg.Insecure = envBool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Insecure)
	return cfg
}

// TracerProvider wraps the OpenTelemetry tracer provider.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing initializes OpenTelemetry tracing and installs the provider globally.
// When disabled it returns the global (no-op by default) tracer.
func InitTracing(ctx context.Context, cfg TracingConfig, version string) (*TracerProvider, error) {
	if !cfg.Enabled {
		return &TracerProvider{
			tracer: otel.Tracer(TracerName),
		}, nil
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, err
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SampleRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{
		provider: provider,
		tracer:   provider.Tracer(TracerName),
	}, nil
}

func newExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(cfg.Protocol) {
	case "", "grpc":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	case "http", "http/protobuf":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", cfg.Protocol)
	}
}

// Tracer returns the tracer instance.
func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// Shutdown flushes pending spans and shuts the provider down.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider != nil {
		return tp.provider.Shutdown(ctx)
	}
	return nil
}

// StartRequestSpan starts a client span for one backend call.
func StartRequestSpan(ctx context.Context, tracer trace.Tracer, method, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrHTTPMethod, method),
			attribute.String(AttrURLPath, path),
		),
	)
}

// RequestOutcome is what a settled call reports to its span.
type RequestOutcome struct {
	StatusCode int
	ErrorKind  string
	RequestID  string
	Attempts   int
	CacheHit   bool
	Err        error
}

// EndRequestSpan records the outcome of a call on span and ends it.
func EndRequestSpan(span trace.Span, out RequestOutcome) {
	if out.StatusCode > 0 {
		span.SetAttributes(attribute.Int(AttrStatusCode, out.StatusCode))
	}
	if out.RequestID != "" {
		span.SetAttributes(attribute.String(AttrRequestID, out.RequestID))
	}
	if out.Attempts > 0 {
		span.SetAttributes(attribute.Int(AttrAttempts, out.Attempts))
	}
	if out.CacheHit {
		span.SetAttributes(attribute.Bool(AttrCacheHit, true))
	}
	if out.Err != nil {
		span.SetAttributes(attribute.String(AttrErrorKind, out.ErrorKind))
		RecordError(span, out.Err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SpanFromContext extracts the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// InjectHeaders writes the trace context of ctx into outgoing request headers.
func InjectHeaders(ctx context.Context, header map[string][]string) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
}
