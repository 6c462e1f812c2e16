package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		kind       Kind
		statusCode int
		retryable  bool
	}{
		{"timeout", NewTimeoutError(language.English, context.DeadlineExceeded), KindTimeout, 0, true},
		{"network", NewNetworkError(language.English, stderrors.New("connection refused")), KindNetwork, 0, true},
		{"http", NewHTTPError(language.English, http.StatusBadGateway, "", nil), KindHTTP, http.StatusBadGateway, false},
		{"application", NewApplicationError(language.English, http.StatusOK, "not found", nil), KindApplication, http.StatusOK, false},
		{"unknown", NewUnknownError(language.English, nil), KindUnknown, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", tt.err.Kind, tt.kind)
			}
			if tt.err.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.statusCode)
			}
			if tt.err.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", tt.err.Retryable, tt.retryable)
			}
			if tt.err.Message == "" {
				t.Error("Message should never be empty")
			}
			if tt.err.HasStatusCode() != (tt.statusCode > 0) {
				t.Errorf("HasStatusCode() = %v", tt.err.HasStatusCode())
			}
		})
	}
}

func TestHTTPError_MessageFromBody(t *testing.T) {
	err := NewHTTPError(language.English, http.StatusNotFound, "dataset not found", json.RawMessage(`"missing"`))

	assert.Equal(t, "dataset not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), string(KindHTTP))
}

func TestApplicationError_FallbackMessage(t *testing.T) {
	err := NewApplicationError(language.Indonesian, http.StatusOK, "  ", nil)
	assert.Equal(t, "Request gagal", err.Message)
}

func TestAs(t *testing.T) {
	cause := NewTimeoutError(language.English, context.DeadlineExceeded)
	wrapped := fmt.Errorf("load confusion matrix: %w", cause)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, cause, got)

	_, ok = As(stderrors.New("plain"))
	assert.False(t, ok)

	_, ok = As(nil)
	assert.False(t, ok)
}

func TestUnwrap_KeepsCause(t *testing.T) {
	err := NewUnknownError(language.English, context.Canceled)
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.True(t, strings.HasSuffix(err.Error(), context.Canceled.Error()))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewNetworkError(language.English, nil)))
	assert.True(t, IsRetryable(NewTimeoutError(language.English, nil)))
	assert.False(t, IsRetryable(NewHTTPError(language.English, 503, "", nil)))
	assert.False(t, IsRetryable(stderrors.New("foreign")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindApplication, KindOf(NewApplicationError(language.English, 200, "x", nil)))
	assert.Equal(t, KindUnknown, KindOf(stderrors.New("foreign")))
}

func TestParseDetails(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []ErrorDetail
	}{
		{"absent", ``, nil},
		{"null", `null`, nil},
		{"string", `"link is required"`, []ErrorDetail{{Message: "link is required"}}},
		{"object", `{"code":"E1","title":"bad","message":"broken"}`, []ErrorDetail{{Code: "E1", Title: "bad", Message: "broken"}}},
		{"list with numeric code", `[{"code":400,"title":"Bad Request","message":"is_legal must be 0 or 1"}]`,
			[]ErrorDetail{{Code: "400", Title: "Bad Request", Message: "is_legal must be 0 or 1"}}},
		{"number", `42`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDetails(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFixedMessage_Languages(t *testing.T) {
	assert.Equal(t, "Request timed out. Please try again.", FixedMessage(language.English, KindTimeout))
	assert.Equal(t, "Request timeout. Silakan coba lagi.", FixedMessage(language.MustParse("id-ID"), KindTimeout))
	// Unsupported languages fall back to English.
	assert.Equal(t, FixedMessage(language.English, KindNetwork), FixedMessage(language.Japanese, KindNetwork))
	assert.Equal(t, language.English, MatchLanguage(language.Und))
}
