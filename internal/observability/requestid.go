package observability

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// RequestIDHeader is the HTTP header name for request IDs.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

type requestIDKey struct{}

// GenerateRequestID generates a new unique request ID.
func GenerateRequestID() string {
	return uuid.NewString()
}

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetOrCreateRequestID returns the caller's request ID when it is usable,
// otherwise it generates one and stores it in the returned context.
func GetOrCreateRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := SanitizeRequestID(RequestIDFromContext(ctx)); ok {
		return ctx, id
	}
	id := GenerateRequestID()
	return ContextWithRequestID(ctx, id), id
}

// SanitizeRequestID accepts IDs made of letters, digits, '-', '_' and '.'.
func SanitizeRequestID(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxRequestIDLen {
		return "", false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return "", false
		}
	}
	return value, true
}
