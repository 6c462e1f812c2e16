// Package httputil provides helpers for reading backend replies safely.
package httputil

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

const (
	// DefaultMaxResponseBodyBytes caps backend response bodies to 10MB.
	DefaultMaxResponseBodyBytes int64 = 10 * 1024 * 1024
)

var (
	ErrResponseBodyTooLarge = errors.New("response body too large")
	ErrEmptyBody            = errors.New("response body is empty")
)

// ReadLimitedBody reads up to maxBytes from reader and returns ErrResponseBodyTooLarge when exceeded.
func ReadLimitedBody(reader io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(reader)
	}

	limited := io.LimitReader(reader, maxBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return body, err
	}
	if int64(len(body)) > maxBytes {
		body = body[:int(maxBytes)]
		return body, ErrResponseBodyTooLarge
	}
	return body, nil
}

// DecodeJSON unmarshals body into v. Whitespace-only bodies yield ErrEmptyBody.
func DecodeJSON(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// EncodeJSON marshals v into a reader suitable for a request body.
// A nil v yields a nil reader.
func EncodeJSON(v any) (io.Reader, []byte, error) {
	if v == nil {
		return nil, nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode json: %w", err)
	}
	return bytes.NewReader(data), data, nil
}
