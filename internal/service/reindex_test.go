package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrialmart/search-service/internal/domain"
)

// stubCatalog returns fixed pages of items.
type stubCatalog struct {
	pages   [][]domain.CatalogItem
	failAll bool
	calls   int
}

func (c *stubCatalog) FetchPage(_ context.Context, page, _ int) ([]domain.CatalogItem, int, error) {
	c.calls++
	if c.failAll {
		return nil, 0, errors.New("catalog down")
	}
	if page > len(c.pages) {
		return nil, len(c.pages), nil
	}
	return c.pages[page-1], len(c.pages), nil
}

func TestReindex_WalksAllPages(t *testing.T) {
	catalog := &stubCatalog{pages: [][]domain.CatalogItem{
		{testItem("p1", "A"), testItem("p2", "B")},
		{testItem("p3", "C")},
	}}
	eng := &stubEngine{}
	svc := NewSearchService(eng, catalog, nil, 0, testLogger())

	require.NoError(t, svc.Reindex(context.Background()))

	assert.Equal(t, 2, catalog.calls)
	var total int
	for _, batch := range eng.bulkBatches {
		total += len(batch)
	}
	assert.Equal(t, 3, total)
}

func TestReindex_NoCatalogConfigured(t *testing.T) {
	svc := NewSearchService(&stubEngine{}, nil, nil, 0, testLogger())
	assert.Error(t, svc.Reindex(context.Background()))
}

func TestReindex_PropagatesFetchFailure(t *testing.T) {
	catalog := &stubCatalog{failAll: true}
	svc := NewSearchService(&stubEngine{}, catalog, nil, 0, testLogger())

	err := svc.Reindex(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch page 1")
}

func TestCatalogClient_FetchPage(t *testing.T) {
	items := []domain.CatalogItem{
		{ID: "p1", Name: "Drill Press", Price: 25000, Stock: 3},
		{ID: "p2", Name: "Press Brake", Price: 150000, Stock: 1},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products", r.URL.Path)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		assert.Equal(t, "200", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		if page == 1 {
			fmt.Fprintf(w, `{"data":[{"id":"p1","name":"Drill Press","price":25000,"stock":3}],"total_count":2,"page":1,"total_pages":2}`)
			return
		}
		fmt.Fprintf(w, `{"data":[{"id":"p2","name":"Press Brake","price":150000,"stock":1}],"total_count":2,"page":2,"total_pages":2}`)
	}))
	defer srv.Close()

	client := NewCatalogClient(srv.URL, testLogger())

	got, totalPages, err := client.FetchPage(context.Background(), 1, 200)
	require.NoError(t, err)
	assert.Equal(t, 2, totalPages)
	require.Len(t, got, 1)
	assert.Equal(t, items[0].ID, got[0].ID)
	assert.Equal(t, items[0].Price, got[0].Price)

	got, _, err = client.FetchPage(context.Background(), 2, 200)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)
}

func TestCatalogClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewCatalogClient(srv.URL, testLogger())
	_, _, err := client.FetchPage(context.Background(), 1, 200)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestReindex_EndToEndAgainstFakeCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":[{"id":"p1","name":"Drill Press","price":25000,"stock":3}],"total_count":1,"page":1,"total_pages":1}`)
	}))
	defer srv.Close()

	eng := &stubEngine{}
	svc := NewSearchService(eng, NewCatalogClient(srv.URL, testLogger()), nil, 0, testLogger())

	require.NoError(t, svc.Reindex(context.Background()))
	require.Len(t, eng.bulkBatches, 1)
	assert.Equal(t, "p1", eng.bulkBatches[0][0].ID)
}
