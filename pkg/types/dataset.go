package types //nolint:revive // package name is intentional

// Dataset is one scraped website record of the training set.
type Dataset struct {
	ID          int    `json:"id"`
	Link        string `json:"link"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Keyword     string `json:"keyword"`
	IsLegal     int    `json:"is_legal"`
	IsIllegal   int    `json:"is_ilegal"`
}

// DatasetByLinkRequest looks up a dataset row by its website URL.
type DatasetByLinkRequest struct {
	Link string `json:"link"`
}

// ListDatasetRequest filters and paginates the dataset listing.
// IsLegal is a pointer so that an explicit 0 (illegal) survives defaulting.
type ListDatasetRequest struct {
	IsLegal   *int `json:"is_legal,omitempty"`
	LimitData int  `json:"limit_data,omitempty"`
	Page      int  `json:"page,omitempty"`
}

// SearchDatasetRequest is a free-text search over the dataset.
type SearchDatasetRequest struct {
	SearchQuery string `json:"search_query"`
	IsLegal     *int   `json:"is_legal"`
	LimitData   int    `json:"limit_data"`
	Page        int    `json:"page"`
}

// ScrapeRequest asks the backend to scrape and classify a URL.
type ScrapeRequest struct {
	URL string `json:"url"`
}

// ScrapeResult is the classification of a scraped URL.
type ScrapeResult struct {
	URL         string  `json:"url"`
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
	Snippet     *string `json:"snippet,omitempty"`
	Message     *string `json:"message,omitempty"`
}

// HealthStatus is the plain (non-enveloped) body of the health endpoint.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Legal filter values used by every feature request.
const (
	Illegal = 0
	Legal   = 1
)

// IntPtr returns a pointer to v, for optional integer request fields.
func IntPtr(v int) *int {
	return &v
}
