package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/industrialmart/search-service/internal/domain"
	"github.com/industrialmart/search-service/pkg/httpclient"
)

// CatalogClient fetches catalog items from the catalog service's paginated
// product listing. Calls run through a circuit-broken HTTP client so a dead
// catalog service fails fast during reindex.
type CatalogClient struct {
	baseURL string
	client  *httpclient.BreakerClient
}

// NewCatalogClient creates a catalog client for the given base URL.
func NewCatalogClient(baseURL string, logger *slog.Logger) *CatalogClient {
	return &CatalogClient{
		baseURL: baseURL,
		client: httpclient.NewBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("catalog-service"),
			logger,
		),
	}
}

// catalogPage is the catalog service's paginated listing envelope.
type catalogPage struct {
	Data       []domain.CatalogItem `json:"data"`
	TotalCount int                  `json:"total_count"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
}

// FetchPage returns one page of catalog items together with the total page
// count reported by the catalog service.
func (c *CatalogClient) FetchPage(ctx context.Context, page, perPage int) ([]domain.CatalogItem, int, error) {
	url := fmt.Sprintf("%s/api/v1/products?page=%d&per_page=%d", c.baseURL, page, perPage)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog fetch: build request: %w", err)
	}

	res, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog fetch: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("catalog fetch: unexpected status %s", res.Status)
	}

	var pageResp catalogPage
	if err := json.NewDecoder(res.Body).Decode(&pageResp); err != nil {
		return nil, 0, fmt.Errorf("catalog fetch: decode response: %w", err)
	}

	return pageResp.Data, pageResp.TotalPages, nil
}
