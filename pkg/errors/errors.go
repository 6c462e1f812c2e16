// Package errors defines the single error type returned by every evaldash call.
// Transport, timeout, HTTP and envelope failures are all mapped to APIError so
// callers have one type to check.
package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
)

// Kind discriminates the cause of an APIError. The set is closed.
type Kind string

const (
	// KindTimeout means the wait bound elapsed before the call settled.
	KindTimeout Kind = "timeout_error"
	// KindNetwork means the transport itself failed (DNS, refused connection, offline).
	KindNetwork Kind = "network_error"
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP Kind = "http_error"
	// KindApplication means a 2xx answer whose envelope reported success=false.
	KindApplication Kind = "application_error"
	// KindUnknown covers everything else, e.g. a body that is not JSON.
	KindUnknown Kind = "unknown_error"
)

// APIError is the typed error for every failed request.
// It is never mutated after construction.
type APIError struct {
	Kind Kind `json:"type"`
	// Message is safe to show to the end user and is never empty.
	Message string `json:"message"`
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int `json:"status_code,omitempty"`
	// Errors is the raw "errors" field of the response envelope, if any.
	Errors    json.RawMessage `json:"errors,omitempty"`
	Retryable bool            `json:"-"`

	cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s (code=%d)", e.Kind, e.Message, e.StatusCode)
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the low-level cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// HasStatusCode reports whether a response status is attached.
func (e *APIError) HasStatusCode() bool {
	return e.StatusCode > 0
}

// Details decodes the envelope errors into a list.
// A plain string becomes a single detail carrying that string as message.
func (e *APIError) Details() []ErrorDetail {
	return ParseDetails(e.Errors)
}

// ErrorDetail is one structured error entry sent by the backend.
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

// UnmarshalJSON accepts numeric and string codes.
func (d *ErrorDetail) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code    json.RawMessage `json:"code"`
		Title   *string         `json:"title"`
		Message *string         `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Code) > 0 && string(raw.Code) != "null" {
		code := strings.TrimSpace(string(raw.Code))
		if unquoted, err := strconv.Unquote(code); err == nil {
			code = unquoted
		}
		d.Code = code
	}
	if raw.Title != nil {
		d.Title = *raw.Title
	}
	if raw.Message != nil {
		d.Message = *raw.Message
	}
	return nil
}

// ParseDetails decodes a raw envelope errors field.
// It returns nil for an absent, null or unrecognised value.
func ParseDetails(raw json.RawMessage) []ErrorDetail {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return nil
		}
		return []ErrorDetail{{Message: s}}
	case '[':
		var list []ErrorDetail
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil
		}
		return list
	case '{':
		var one ErrorDetail
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil
		}
		return []ErrorDetail{one}
	default:
		return nil
	}
}

// NewTimeoutError creates a timeout error. No status code is attached.
func NewTimeoutError(lang language.Tag, cause error) *APIError {
	return &APIError{
		Kind:      KindTimeout,
		Message:   FixedMessage(lang, KindTimeout),
		Retryable: true,
		cause:     cause,
	}
}

// NewNetworkError creates a connectivity error. No status code is attached.
func NewNetworkError(lang language.Tag, cause error) *APIError {
	return &APIError{
		Kind:      KindNetwork,
		Message:   FixedMessage(lang, KindNetwork),
		Retryable: true,
		cause:     cause,
	}
}

// NewHTTPError creates an error for a non-2xx response.
// An empty message falls back to the generic server error text.
func NewHTTPError(lang language.Tag, statusCode int, message string, errs json.RawMessage) *APIError {
	if strings.TrimSpace(message) == "" {
		message = FixedMessage(lang, KindHTTP)
	}
	return &APIError{
		Kind:       KindHTTP,
		Message:    message,
		StatusCode: statusCode,
		Errors:     errs,
	}
}

// NewApplicationError creates an error for a 2xx response with success=false.
func NewApplicationError(lang language.Tag, statusCode int, message string, errs json.RawMessage) *APIError {
	if strings.TrimSpace(message) == "" {
		message = FixedMessage(lang, KindApplication)
	}
	return &APIError{
		Kind:       KindApplication,
		Message:    message,
		StatusCode: statusCode,
		Errors:     errs,
	}
}

// NewUnknownError creates an error for any failure not covered by the other kinds.
func NewUnknownError(lang language.Tag, cause error) *APIError {
	return &APIError{
		Kind:    KindUnknown,
		Message: FixedMessage(lang, KindUnknown),
		cause:   cause,
	}
}

// As returns err as *APIError when it is one (or wraps one).
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if err == nil {
		return nil, false
	}
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRetryable reports whether err is a timeout or network APIError.
func IsRetryable(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Retryable
}

// KindOf returns the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	if apiErr, ok := As(err); ok {
		return apiErr.Kind
	}
	return KindUnknown
}
