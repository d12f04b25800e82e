package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/industrialmart/search-service/internal/domain"
	"github.com/industrialmart/search-service/internal/engine"
	"github.com/industrialmart/search-service/internal/mapper"
)

const (
	defaultPerPage = 24
	maxPerPage     = 100

	defaultSuggestLimit = 8
	maxSuggestLimit     = 20

	defaultBulkChunkSize = 500
)

// SuggestionCache caches suggestion lists for the as-you-type path. A nil
// cache disables caching.
type SuggestionCache interface {
	Get(ctx context.Context, prefix string, limit int) ([]string, bool)
	Set(ctx context.Context, prefix string, limit int, suggestions []string)
}

// CatalogSource yields catalog items page by page for full reindexing.
type CatalogSource interface {
	FetchPage(ctx context.Context, page, perPage int) (items []domain.CatalogItem, totalPages int, err error)
}

// SearchService implements the business logic for search operations,
// including the read-path degradation policy: engine failures on search and
// suggest are logged and answered with an empty result, never surfaced.
type SearchService struct {
	engine    engine.SearchEngine
	catalog   CatalogSource
	cache     SuggestionCache
	chunkSize int
	logger    *slog.Logger
}

// NewSearchService creates a new search service. catalog and cache may be
// nil; a nil catalog disables Reindex and a nil cache disables suggestion
// caching. chunkSize bounds bulk write batches; non-positive values fall
// back to the default.
func NewSearchService(eng engine.SearchEngine, catalog CatalogSource, cache SuggestionCache, chunkSize int, logger *slog.Logger) *SearchService {
	if chunkSize <= 0 {
		chunkSize = defaultBulkChunkSize
	}
	return &SearchService{
		engine:    eng,
		catalog:   catalog,
		cache:     cache,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// Search executes a search query. Malformed input is normalized rather than
// rejected, and an unreachable engine degrades to an empty result page.
func (s *SearchService) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PerPage <= 0 {
		query.PerPage = defaultPerPage
	}
	if query.PerPage > maxPerPage {
		query.PerPage = maxPerPage
	}
	query.SortBy = domain.NormalizeSort(query.SortBy)
	if query.MinPrice != nil && *query.MinPrice < 0 {
		query.MinPrice = nil
	}
	if query.MaxPrice != nil && *query.MaxPrice < 0 {
		query.MaxPrice = nil
	}

	result, err := s.engine.Search(ctx, query)
	if err != nil {
		s.logger.WarnContext(ctx, "search degraded to empty result",
			slog.String("query", query.Query),
			slog.String("error", err.Error()),
		)
		return domain.EmptyResult(query.Page, query.PerPage), nil
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("query", query.Query),
		slog.Int("total", result.Total),
		slog.Int64("took_ms", result.TookMs),
	)

	return result, nil
}

// Suggest returns completions for a partial query. Engine failures degrade
// to an empty list so the as-you-type UI is never blocked.
func (s *SearchService) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	if s.cache != nil {
		if suggestions, ok := s.cache.Get(ctx, prefix, limit); ok {
			return suggestions, nil
		}
	}

	suggestions, err := s.engine.Suggest(ctx, prefix, limit)
	if err != nil {
		s.logger.WarnContext(ctx, "suggest degraded to empty result",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()),
		)
		return []string{}, nil
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	if s.cache != nil {
		s.cache.Set(ctx, prefix, limit, suggestions)
	}

	return suggestions, nil
}

// IndexItem maps a catalog item to its search document and upserts it.
func (s *SearchService) IndexItem(ctx context.Context, item domain.CatalogItem) error {
	if item.ID == "" {
		return fmt.Errorf("index item: id is required")
	}
	if item.Name == "" {
		return fmt.Errorf("index item: name is required")
	}

	doc := mapper.ToDocument(item)
	if err := s.engine.Index(ctx, &doc); err != nil {
		return fmt.Errorf("index item: %w", err)
	}

	s.logger.InfoContext(ctx, "item indexed",
		slog.String("item_id", item.ID),
		slog.String("name", item.Name),
	)

	return nil
}

// BulkIndexItems maps and upserts multiple catalog items in bounded chunks.
// Items without an id are skipped; chunk failures are collected and reported
// together, not silently dropped.
func (s *SearchService) BulkIndexItems(ctx context.Context, items []domain.CatalogItem) error {
	docs := make([]domain.ProductDocument, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		docs = append(docs, mapper.ToDocument(item))
	}

	var errs []error
	for start := 0; start < len(docs); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := s.engine.BulkIndex(ctx, docs[start:end]); err != nil {
			errs = append(errs, fmt.Errorf("bulk index chunk %d-%d: %w", start, end, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "bulk index completed",
		slog.Int("count", len(docs)),
	)

	return nil
}

// RemoveItem deletes an item's document from the index. Removing an id that
// was never indexed is not an error.
func (s *SearchService) RemoveItem(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("remove item: id is required")
	}

	if err := s.engine.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}

	s.logger.InfoContext(ctx, "item removed from index",
		slog.String("item_id", id),
	)

	return nil
}
