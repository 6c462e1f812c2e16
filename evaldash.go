// Package evaldash is a typed client for the website-classifier evaluation backend.
//
// Every call goes through one orchestrator that joins the endpoint with the
// configured base URL, bounds the call with a timeout, validates the
// {success, data, message, errors} envelope and maps every failure to a
// single *APIError carrying one of five kinds: timeout, network, http,
// application or unknown.
//
// Basic usage:
//
//	client, err := evaldash.New(
//	    evaldash.WithBaseURL(os.Getenv("EVALDASH_API_URL")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	matrix, err := evaldash.Post[types.ConfusionMatrix](ctx, client,
//	    "/api/v1/confusion-matrix", types.ConfusionMatrixRequest{IsLegal: types.Legal})
//
// The services package wraps each dashboard feature in a typed method.
package evaldash

import (
	"github.com/blueberrycongee/evaldash/internal/resilience"
	"github.com/blueberrycongee/evaldash/pkg/cache"
	"github.com/blueberrycongee/evaldash/pkg/errors"
	"github.com/blueberrycongee/evaldash/pkg/types"
)

// Version is the current version of evaldash.
const Version = "0.3.0"

// Re-export error types.
type (
	// APIError is the single error shape returned by every call.
	APIError = errors.APIError

	// ErrorKind classifies an APIError.
	ErrorKind = errors.Kind

	// ErrorDetail is one entry of the envelope's structured errors.
	ErrorDetail = errors.ErrorDetail
)

// Error kinds.
const (
	KindTimeout     = errors.KindTimeout
	KindNetwork     = errors.KindNetwork
	KindHTTP        = errors.KindHTTP
	KindApplication = errors.KindApplication
	KindUnknown     = errors.KindUnknown
)

// Re-export wire types.
type (
	// Pagination carries the paging fields of listing endpoints.
	Pagination = types.Pagination
)

// Envelope is the uniform wrapper of every backend reply.
type Envelope[T any] = types.Envelope[T]

// Page is the payload of a paginated call.
type Page[T any] = types.Page[T]

// Re-export cache and resilience types.
type (
	// Cache stores replies of successful calls when configured with WithCache.
	Cache = cache.Cache

	// CacheControl adjusts caching for a single call.
	CacheControl = cache.Control

	// CircuitBreakerConfig configures WithCircuitBreaker.
	CircuitBreakerConfig = resilience.CircuitBreakerConfig
)

// ErrCircuitOpen is the cause of network errors produced by an open circuit breaker.
var ErrCircuitOpen = resilience.ErrCircuitOpen

// AsAPIError is a shortcut for errors.As with *APIError.
func AsAPIError(err error) (*APIError, bool) {
	return errors.As(err)
}
