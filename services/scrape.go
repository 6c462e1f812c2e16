package services

import (
	"context"
	"net/http"

	evaldash "github.com/blueberrycongee/evaldash"
	"github.com/blueberrycongee/evaldash/pkg/types"
)

// Scrape asks the backend to scrape and classify a website.
type Scrape struct {
	client *evaldash.Client
}

// NewScrape creates a scrape service.
func NewScrape(client *evaldash.Client) *Scrape {
	return &Scrape{client: client}
}

// Analyze scrapes rawURL and returns its predicted label.
func (s *Scrape) Analyze(ctx context.Context, rawURL string) (types.ScrapeResult, error) {
	return evaldash.Post[types.ScrapeResult](ctx, s.client, PathScrape, types.ScrapeRequest{URL: rawURL})
}

// Health checks backend liveness.
type Health struct {
	client *evaldash.Client
}

// NewHealth creates a health service.
func NewHealth(client *evaldash.Client) *Health {
	return &Health{client: client}
}

// Check returns the plain health body. Results are never cached.
func (s *Health) Check(ctx context.Context) (types.HealthStatus, error) {
	return evaldash.DoPlain[types.HealthStatus](ctx, s.client, PathHealth, evaldash.RequestOptions{
		Method: http.MethodGet,
		Cache:  &evaldash.CacheControl{NoCache: true, NoStore: true},
	})
}
