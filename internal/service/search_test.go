package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrialmart/search-service/internal/domain"
	"github.com/industrialmart/search-service/internal/engine/memory"
)

// stubEngine records calls and can be configured to fail everything.
type stubEngine struct {
	failAll bool

	indexed     []domain.ProductDocument
	bulkBatches [][]domain.ProductDocument
	deleted     []string

	searchQuery *domain.SearchQuery
	suggestions []string
}

func (s *stubEngine) Index(_ context.Context, doc *domain.ProductDocument) error {
	if s.failAll {
		return errors.New("engine down")
	}
	s.indexed = append(s.indexed, *doc)
	return nil
}

func (s *stubEngine) BulkIndex(_ context.Context, docs []domain.ProductDocument) error {
	if s.failAll {
		return errors.New("engine down")
	}
	batch := make([]domain.ProductDocument, len(docs))
	copy(batch, docs)
	s.bulkBatches = append(s.bulkBatches, batch)
	return nil
}

func (s *stubEngine) Delete(_ context.Context, id string) error {
	if s.failAll {
		return errors.New("engine down")
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubEngine) Search(_ context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	if s.failAll {
		return nil, errors.New("engine down")
	}
	s.searchQuery = query
	return &domain.SearchResult{Page: query.Page, PerPage: query.PerPage}, nil
}

func (s *stubEngine) Suggest(_ context.Context, _ string, _ int) ([]string, error) {
	if s.failAll {
		return nil, errors.New("engine down")
	}
	return s.suggestions, nil
}

// stubCache is a map-backed suggestion cache that records sets.
type stubCache struct {
	entries map[string][]string
	sets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]string)}
}

func (c *stubCache) Get(_ context.Context, prefix string, limit int) ([]string, bool) {
	v, ok := c.entries[fmt.Sprintf("%d:%s", limit, prefix)]
	return v, ok
}

func (c *stubCache) Set(_ context.Context, prefix string, limit int, suggestions []string) {
	c.entries[fmt.Sprintf("%d:%s", limit, prefix)] = suggestions
	c.sets++
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testItem(id, name string) domain.CatalogItem {
	return domain.CatalogItem{ID: id, Name: name, Price: 1000, Stock: 5}
}

func TestSearch_NormalizesQueryInput(t *testing.T) {
	eng := &stubEngine{}
	svc := NewSearchService(eng, nil, nil, 0, testLogger())

	badMin := int64(-5)
	query := &domain.SearchQuery{
		Page:     -1,
		PerPage:  500,
		SortBy:   "nonsense",
		MinPrice: &badMin,
	}

	result, err := svc.Search(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, 1, eng.searchQuery.Page)
	assert.Equal(t, maxPerPage, eng.searchQuery.PerPage)
	assert.Equal(t, domain.SortRelevance, eng.searchQuery.SortBy)
	assert.Nil(t, eng.searchQuery.MinPrice)
	assert.Equal(t, 1, result.Page)
}

func TestSearch_EngineFailureDegradesToEmptyResult(t *testing.T) {
	svc := NewSearchService(&stubEngine{failAll: true}, nil, nil, 0, testLogger())

	result, err := svc.Search(context.Background(), &domain.SearchQuery{Query: "drill", Page: 2, PerPage: 10})
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 10, result.PerPage)
	assert.NotNil(t, result.Hits)
	assert.Empty(t, result.Hits)
}

func TestSuggest_EmptyPrefixShortCircuits(t *testing.T) {
	eng := &stubEngine{failAll: true}
	svc := NewSearchService(eng, nil, nil, 0, testLogger())

	suggestions, err := svc.Suggest(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{}, suggestions)
}

func TestSuggest_EngineFailureDegradesToEmptyList(t *testing.T) {
	svc := NewSearchService(&stubEngine{failAll: true}, nil, nil, 0, testLogger())

	suggestions, err := svc.Suggest(context.Background(), "dri", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{}, suggestions)
}

func TestSuggest_CacheHitSkipsEngine(t *testing.T) {
	cache := newStubCache()
	cache.entries["5:dri"] = []string{"Drill Press"}

	// Engine failure proves the cached value was served.
	svc := NewSearchService(&stubEngine{failAll: true}, nil, cache, 0, testLogger())

	suggestions, err := svc.Suggest(context.Background(), "dri", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Drill Press"}, suggestions)
}

func TestSuggest_CacheMissPopulatesCache(t *testing.T) {
	cache := newStubCache()
	eng := &stubEngine{suggestions: []string{"Drill Press", "Drill Bits"}}
	svc := NewSearchService(eng, nil, cache, 0, testLogger())

	suggestions, err := svc.Suggest(context.Background(), "dri", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Drill Press", "Drill Bits"}, suggestions)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, []string{"Drill Press", "Drill Bits"}, cache.entries["5:dri"])
}

func TestSuggest_LimitClamped(t *testing.T) {
	cache := newStubCache()
	svc := NewSearchService(&stubEngine{suggestions: []string{}}, nil, cache, 0, testLogger())

	_, err := svc.Suggest(context.Background(), "dri", 500)
	require.NoError(t, err)
	_, ok := cache.entries[fmt.Sprintf("%d:dri", maxSuggestLimit)]
	assert.True(t, ok)
}

func TestIndexItem_RequiresIDAndName(t *testing.T) {
	eng := &stubEngine{}
	svc := NewSearchService(eng, nil, nil, 0, testLogger())

	assert.Error(t, svc.IndexItem(context.Background(), testItem("", "Drill Press")))
	assert.Error(t, svc.IndexItem(context.Background(), testItem("p1", "")))
	assert.Empty(t, eng.indexed)

	require.NoError(t, svc.IndexItem(context.Background(), testItem("p1", "Drill Press")))
	require.Len(t, eng.indexed, 1)
	assert.Equal(t, "p1", eng.indexed[0].ID)
}

func TestBulkIndexItems_ChunksAndSkipsEmptyIDs(t *testing.T) {
	eng := &stubEngine{}
	svc := NewSearchService(eng, nil, nil, 2, testLogger())

	items := []domain.CatalogItem{
		testItem("p1", "A"),
		testItem("", "no id"),
		testItem("p2", "B"),
		testItem("p3", "C"),
		testItem("p4", "D"),
		testItem("p5", "E"),
	}

	require.NoError(t, svc.BulkIndexItems(context.Background(), items))

	// Five valid docs at chunk size two means batches of 2, 2, 1.
	require.Len(t, eng.bulkBatches, 3)
	assert.Len(t, eng.bulkBatches[0], 2)
	assert.Len(t, eng.bulkBatches[1], 2)
	assert.Len(t, eng.bulkBatches[2], 1)
	assert.Equal(t, "p5", eng.bulkBatches[2][0].ID)
}

func TestBulkIndexItems_ReportsChunkFailures(t *testing.T) {
	svc := NewSearchService(&stubEngine{failAll: true}, nil, nil, 2, testLogger())

	err := svc.BulkIndexItems(context.Background(), []domain.CatalogItem{
		testItem("p1", "A"),
		testItem("p2", "B"),
		testItem("p3", "C"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bulk index chunk")
}

func TestRemoveItem(t *testing.T) {
	eng := &stubEngine{}
	svc := NewSearchService(eng, nil, nil, 0, testLogger())

	assert.Error(t, svc.RemoveItem(context.Background(), ""))
	require.NoError(t, svc.RemoveItem(context.Background(), "p1"))
	assert.Equal(t, []string{"p1"}, eng.deleted)
}

func TestSearchService_AgainstMemoryEngine(t *testing.T) {
	svc := NewSearchService(memory.New(), nil, nil, 0, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.IndexItem(ctx, domain.CatalogItem{
		ID: "p1", Name: "Drill Press", Brand: "Acme", Price: 25000, Stock: 3,
	}))

	result, err := svc.Search(ctx, &domain.SearchQuery{Query: "drill"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "Drill Press", result.Hits[0].Product.Name)

	require.NoError(t, svc.RemoveItem(ctx, "p1"))
	result, err = svc.Search(ctx, &domain.SearchQuery{Query: "drill"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
}
