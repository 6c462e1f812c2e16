// Package metrics provides Prometheus metrics for calls made to the evaluation backend.
// It tracks request counts, latencies, retries, cache lookups and circuit breaker state.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "evaldash"
)

// LatencyBuckets defines histogram buckets for latency metrics (in seconds).
// They stop at the default 30s request timeout.
var LatencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5,
	1.0, 2.0, 3.0, 5.0, 7.5, 10.0, 15.0, 20.0, 30.0,
}

var (
	// RequestsTotal counts settled calls by endpoint, outcome and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of backend calls",
		},
		[]string{"endpoint", "method", "status_code", "error_kind"},
	)

	// RequestDuration tracks the end-to-end latency of a call, retries included.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Backend call latency in seconds",
			Buckets:   LatencyBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// RetriesTotal counts retry attempts.
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Total number of retried backend calls",
		},
		[]string{"endpoint", "method"},
	)

	// CacheLookups counts response cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of response cache lookups",
		},
		[]string{"result"},
	)

	// InFlight is the number of calls currently waiting on the backend.
	InFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Number of backend calls in flight",
		},
	)

	// CircuitState reports breaker state (0 closed, 1 open, 2 half-open).
	CircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 open, 2 half-open",
		},
		[]string{"name"},
	)
)

// Recorder receives one observation per settled call.
type Recorder interface {
	ObserveRequest(endpoint, method string, statusCode int, errorKind string, elapsed time.Duration)
	ObserveRetry(endpoint, method string)
	ObserveCache(result string)
	InFlightAdd(delta float64)
	ObserveCircuitState(name string, state int)
}

// Prometheus records into the package-level collectors.
type Prometheus struct{}

// ObserveRequest implements Recorder.
func (Prometheus) ObserveRequest(endpoint, method string, statusCode int, errorKind string, elapsed time.Duration) {
	endpoint = NormalizeEndpoint(endpoint)
	status := "none"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	if errorKind == "" {
		errorKind = "none"
	}
	RequestsTotal.WithLabelValues(endpoint, method, status, errorKind).Inc()
	RequestDuration.WithLabelValues(endpoint, method).Observe(elapsed.Seconds())
}

// ObserveRetry implements Recorder.
func (Prometheus) ObserveRetry(endpoint, method string) {
	RetriesTotal.WithLabelValues(NormalizeEndpoint(endpoint), method).Inc()
}

// ObserveCache implements Recorder.
func (Prometheus) ObserveCache(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// InFlightAdd implements Recorder.
func (Prometheus) InFlightAdd(delta float64) {
	InFlight.Add(delta)
}

// ObserveCircuitState implements Recorder.
func (Prometheus) ObserveCircuitState(name string, state int) {
	CircuitState.WithLabelValues(name).Set(float64(state))
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveRequest(string, string, int, string, time.Duration) {}
func (Nop) ObserveRetry(string, string)                               {}
func (Nop) ObserveCache(string)                                       {}
func (Nop) InFlightAdd(float64)                                       {}
func (Nop) ObserveCircuitState(string, int)                           {}

// NormalizeEndpoint strips the query string and replaces numeric path
// segments with ":id" to keep label cardinality bounded.
func NormalizeEndpoint(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	parts := strings.Split(endpoint, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseUint(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
