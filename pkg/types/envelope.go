// Package types defines the wire format shared with the evaluation backend:
// the response envelope and the request/response pairs of every dashboard feature.
// The types carry no behavior; field-level validity is the backend's contract.
package types //nolint:revive // package name is intentional

import "github.com/goccy/go-json"

// Envelope is the uniform wrapper of every backend reply.
//
//	{"success": bool, "data": T|null, "message": string|null, "errors": string|object|null}
//
// Data and Message are pointers so that absent and null can be told apart from zero values.
type Envelope[T any] struct {
	Success bool            `json:"success"`
	Data    *T              `json:"data"`
	Message *string         `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

// MessageText returns the envelope message or "" when absent.
func (e *Envelope[T]) MessageText() string {
	if e == nil || e.Message == nil {
		return ""
	}
	return *e.Message
}

// Pagination carries the paging fields the listing endpoints send next to the envelope.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalData   int  `json:"total_data"`
	HasNext     bool `json:"has_next"`
	IsFirst     bool `json:"is_first"`
	IsLast      bool `json:"is_last"`
	TotalPage   *int `json:"total_page,omitempty"`
	PageSize    *int `json:"page_size,omitempty"`
}

// PageEnvelope is an Envelope whose data is a list, plus paging fields.
type PageEnvelope[T any] struct {
	Envelope[[]T]
	Pagination
}

// Page is the decoded payload of a paginated call.
type Page[T any] struct {
	Items []T `json:"items"`
	Pagination
}
