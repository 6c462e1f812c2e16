package evaldash

import (
	"context"
	"net/http"
)

// Get performs a GET without a body.
func Get[T any](ctx context.Context, c *Client, endpoint string, headers ...map[string]string) (T, error) {
	return Do[T](ctx, c, endpoint, RequestOptions{Method: http.MethodGet, Headers: mergeHeaders(headers)})
}

// GetWithBody performs a GET carrying a JSON body. Some proxies drop such
// bodies; the backend's feature endpoints that accept it are kept reachable.
func GetWithBody[T any](ctx context.Context, c *Client, endpoint string, body any, headers ...map[string]string) (T, error) {
	return Do[T](ctx, c, endpoint, RequestOptions{Method: http.MethodGet, Body: body, Headers: mergeHeaders(headers)})
}

// Post performs a POST with an optional JSON body.
func Post[T any](ctx context.Context, c *Client, endpoint string, body any, headers ...map[string]string) (T, error) {
	return Do[T](ctx, c, endpoint, RequestOptions{Method: http.MethodPost, Body: body, Headers: mergeHeaders(headers)})
}

// Put performs a PUT with an optional JSON body.
func Put[T any](ctx context.Context, c *Client, endpoint string, body any, headers ...map[string]string) (T, error) {
	return Do[T](ctx, c, endpoint, RequestOptions{Method: http.MethodPut, Body: body, Headers: mergeHeaders(headers)})
}

// Delete performs a DELETE without a body.
func Delete[T any](ctx context.Context, c *Client, endpoint string, headers ...map[string]string) (T, error) {
	return Do[T](ctx, c, endpoint, RequestOptions{Method: http.MethodDelete, Headers: mergeHeaders(headers)})
}

func mergeHeaders(sets []map[string]string) map[string]string {
	if len(sets) == 0 {
		return nil
	}
	if len(sets) == 1 {
		return sets[0]
	}
	out := make(map[string]string)
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}
