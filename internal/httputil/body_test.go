package httputil

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadLimitedBody_AllowsWithinLimit(t *testing.T) {
	body, err := ReadLimitedBody(strings.NewReader(`{"success":true}`), 64)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if string(body) != `{"success":true}` {
		t.Fatalf("unexpected body: %s", string(body))
	}
}

func TestReadLimitedBody_RejectsOversize(t *testing.T) {
	body, err := ReadLimitedBody(strings.NewReader("helloworld"), 5)
	if !errors.Is(err, ErrResponseBodyTooLarge) {
		t.Fatalf("expected ErrResponseBodyTooLarge, got %v", err)
	}
	if string(body) != "hello" {
		t.Fatalf("unexpected body: %s", string(body))
	}
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Success bool `json:"success"`
	}

	if err := DecodeJSON([]byte("  \n"), &out); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
	if err := DecodeJSON([]byte("<html>bad gateway</html>"), &out); err == nil {
		t.Fatal("expected decode error for html body")
	}
	if err := DecodeJSON([]byte(`{"success":true}`), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success {
		t.Fatal("expected success=true")
	}
}

func TestEncodeJSON(t *testing.T) {
	reader, raw, err := EncodeJSON(nil)
	if err != nil || reader != nil || raw != nil {
		t.Fatalf("nil value should produce no body, got %v %v %v", reader, raw, err)
	}

	reader, raw, err = EncodeJSON(map[string]any{"is_legal": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := io.ReadAll(reader)
	if string(got) != `{"is_legal":1}` || string(raw) != `{"is_legal":1}` {
		t.Fatalf("unexpected encoding: %s", got)
	}

	if _, _, err := EncodeJSON(func() {}); err == nil {
		t.Fatal("expected error for non-serializable value")
	}
}
