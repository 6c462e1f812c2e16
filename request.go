package evaldash

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/blueberrycongee/evaldash/internal/httputil"
	"github.com/blueberrycongee/evaldash/pkg/errors"
	"github.com/blueberrycongee/evaldash/pkg/types"
)

// errNoData is the message of an application error for success:true without data.
const errNoData = "response has no data"

// envelopeHead is the part of a reply the orchestrator inspects regardless of payload type.
type envelopeHead struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message json.RawMessage `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

// message returns the envelope message, or "" when it is absent or not a string.
func (h *envelopeHead) message() string {
	if isNull(h.Message) {
		return ""
	}
	var msg string
	if err := json.Unmarshal(h.Message, &msg); err != nil {
		return ""
	}
	return msg
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isSuccessStatus(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// classify applies the failure order HTTP status, envelope success flag, data
// presence, and returns the decoded head of a valid reply.
func (c *Client) classify(status int, body []byte) (*envelopeHead, error) {
	var head envelopeHead
	decodeErr := httputil.DecodeJSON(body, &head)

	if !isSuccessStatus(status) {
		if decodeErr != nil {
			return nil, errors.NewHTTPError(c.lang, status, "", nil)
		}
		return nil, errors.NewHTTPError(c.lang, status, head.message(), nullToNil(head.Errors))
	}
	if decodeErr != nil {
		return nil, errors.NewUnknownError(c.lang, decodeErr)
	}
	if !head.Success {
		return nil, errors.NewApplicationError(c.lang, status, head.message(), nullToNil(head.Errors))
	}
	if isNull(head.Data) {
		return nil, errors.NewApplicationError(c.lang, status, errNoData, nil)
	}
	return &head, nil
}

func nullToNil(raw json.RawMessage) json.RawMessage {
	if isNull(raw) {
		return nil
	}
	return raw
}

// Do performs a call and returns the envelope's data decoded as T.
func Do[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (T, error) {
	var out T
	err := c.execute(ctx, endpoint, opts, func(status int, body []byte) error {
		head, err := c.classify(status, body)
		if err != nil {
			return err
		}
		var data T
		if err := json.Unmarshal(head.Data, &data); err != nil {
			return errors.NewUnknownError(c.lang, fmt.Errorf("decode data: %w", err))
		}
		out = data
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// DoPage performs a call against a paginated endpoint and returns the items
// together with the paging fields sent next to the envelope.
func DoPage[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (*types.Page[T], error) {
	var out *types.Page[T]
	err := c.execute(ctx, endpoint, opts, func(status int, body []byte) error {
		head, err := c.classify(status, body)
		if err != nil {
			return err
		}
		page := &types.Page[T]{}
		if err := json.Unmarshal(head.Data, &page.Items); err != nil {
			return errors.NewUnknownError(c.lang, fmt.Errorf("decode page: %w", err))
		}
		if err := json.Unmarshal(body, &page.Pagination); err != nil {
			return errors.NewUnknownError(c.lang, fmt.Errorf("decode paging: %w", err))
		}
		if page.Items == nil {
			page.Items = []T{}
		}
		out = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DoPlain performs a call against an endpoint that does not use the envelope.
// Non-2xx statuses still map to http errors; the whole 2xx body is decoded as T.
func DoPlain[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (T, error) {
	var out T
	err := c.execute(ctx, endpoint, opts, func(status int, body []byte) error {
		if !isSuccessStatus(status) {
			var head envelopeHead
			if httputil.DecodeJSON(body, &head) != nil {
				return errors.NewHTTPError(c.lang, status, "", nil)
			}
			return errors.NewHTTPError(c.lang, status, head.message(), nullToNil(head.Errors))
		}
		var data T
		if err := httputil.DecodeJSON(body, &data); err != nil {
			return errors.NewUnknownError(c.lang, err)
		}
		out = data
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
