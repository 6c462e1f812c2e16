package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	evaldash "github.com/blueberrycongee/evaldash"
	"github.com/blueberrycongee/evaldash/pkg/types"
)

// Listing defaults applied when a field is left unset.
const (
	DefaultIsLegal   = types.Legal
	DefaultLimitData = 10
	DefaultPage      = 1
)

// Dataset looks up and lists the scraped websites of the training set.
type Dataset struct {
	client *evaldash.Client
}

// NewDataset creates a dataset service.
func NewDataset(client *evaldash.Client) *Dataset {
	return &Dataset{client: client}
}

// GetByLink returns the dataset row of a website URL. The link is sent as is.
func (s *Dataset) GetByLink(ctx context.Context, link string) (types.Dataset, error) {
	return evaldash.Post[types.Dataset](ctx, s.client, PathDatasetByLink, types.DatasetByLinkRequest{Link: link})
}

// List returns one page of the dataset filtered by class.
func (s *Dataset) List(ctx context.Context, req types.ListDatasetRequest) (*types.Page[types.Dataset], error) {
	return evaldash.DoPage[types.Dataset](ctx, s.client, PathListDataset+"?"+listQuery(req), evaldash.RequestOptions{})
}

// listQuery encodes is_legal, limit_data and page in that order.
func listQuery(req types.ListDatasetRequest) string {
	isLegal := DefaultIsLegal
	if req.IsLegal != nil {
		isLegal = *req.IsLegal
	}
	limit := req.LimitData
	if limit <= 0 {
		limit = DefaultLimitData
	}
	page := req.Page
	if page <= 0 {
		page = DefaultPage
	}

	q := url.Values{}
	q.Set("is_legal", strconv.Itoa(isLegal))
	q.Set("limit_data", strconv.Itoa(limit))
	q.Set("page", strconv.Itoa(page))
	return q.Encode()
}

// Detail returns a single dataset row by id.
func (s *Dataset) Detail(ctx context.Context, id int) (types.Dataset, error) {
	return evaldash.Get[types.Dataset](ctx, s.client, PathDetailDataset+strconv.Itoa(id))
}

// Search runs a free-text query over link, title, description and keyword.
func (s *Dataset) Search(ctx context.Context, req types.SearchDatasetRequest) (*types.Page[types.Dataset], error) {
	if req.LimitData <= 0 {
		req.LimitData = DefaultLimitData
	}
	if req.Page <= 0 {
		req.Page = DefaultPage
	}
	return evaldash.DoPage[types.Dataset](ctx, s.client, PathSearchDataset, evaldash.RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	})
}
