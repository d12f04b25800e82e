// Package memory provides an in-memory SearchEngine used by unit tests and
// engine-less local development. It mirrors the Elasticsearch engine's
// observable semantics: stock floor, filter context, facets over the full
// filtered set, and scoring that favors exact and prefix name matches.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/industrialmart/search-service/internal/domain"
)

// Engine is an in-memory implementation of the SearchEngine interface.
// Thread-safe via sync.RWMutex.
type Engine struct {
	mu   sync.RWMutex
	docs map[string]domain.ProductDocument
}

// New creates a new in-memory search engine.
func New() *Engine {
	return &Engine{
		docs: make(map[string]domain.ProductDocument),
	}
}

// Index adds or replaces a single document keyed by its ID.
func (e *Engine) Index(_ context.Context, doc *domain.ProductDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docs[doc.ID] = *doc
	return nil
}

// BulkIndex adds or replaces multiple documents.
func (e *Engine) BulkIndex(_ context.Context, docs []domain.ProductDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range docs {
		e.docs[docs[i].ID] = docs[i]
	}
	return nil
}

// Delete removes a document by ID. Missing IDs are not an error.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.docs, id)
	return nil
}

// Search executes a query against the in-memory index.
func (e *Engine) Search(_ context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	queryLower := strings.ToLower(query.Query)

	matched := make([]domain.SearchHit, 0)
	for _, d := range e.docs {
		if !matchesFilters(d, query) {
			continue
		}
		score, ok := score(d, queryLower)
		if !ok {
			continue
		}
		matched = append(matched, domain.SearchHit{Product: d, Score: score})
	}

	sortHits(matched, query.SortBy)

	total := len(matched)
	brands, categories, priceRanges := facets(matched)

	page := query.Page
	if page < 1 {
		page = 1
	}
	perPage := query.PerPage
	if perPage < 1 {
		perPage = 24
	}
	if perPage > 100 {
		perPage = 100
	}

	offset := (page - 1) * perPage
	if offset > total {
		offset = total
	}
	end := offset + perPage
	if end > total {
		end = total
	}

	return &domain.SearchResult{
		Hits:        matched[offset:end],
		Total:       total,
		Page:        page,
		PerPage:     perPage,
		Brands:      brands,
		Categories:  categories,
		PriceRanges: priceRanges,
		TookMs:      time.Since(start).Milliseconds(),
	}, nil
}

// Suggest returns product names matching the given prefix on name or brand.
// Name-prefix matches come first, substring matches fill the rest.
func (e *Engine) Suggest(_ context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 8
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	prefixLower := strings.ToLower(prefix)

	var prefixed, contained []string
	for _, d := range e.docs {
		if d.Stock <= 0 {
			continue
		}
		nameLower := strings.ToLower(d.Name)
		brandLower := strings.ToLower(d.Brand)
		switch {
		case strings.HasPrefix(nameLower, prefixLower):
			prefixed = append(prefixed, d.Name)
		case strings.Contains(nameLower, prefixLower) || strings.HasPrefix(brandLower, prefixLower):
			contained = append(contained, d.Name)
		}
	}

	sort.Strings(prefixed)
	sort.Strings(contained)

	seen := make(map[string]struct{})
	suggestions := make([]string, 0, limit)
	for _, name := range append(prefixed, contained...) {
		if len(suggestions) >= limit {
			break
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		suggestions = append(suggestions, name)
	}

	return suggestions, nil
}

// matchesFilters applies the filter context: the unconditional stock floor
// plus any category, brand, featured, and price-range filters.
func matchesFilters(d domain.ProductDocument, query *domain.SearchQuery) bool {
	if d.Stock <= 0 {
		return false
	}
	if query.Category != nil && *query.Category != "" && d.Category != *query.Category {
		return false
	}
	if query.Brand != nil && *query.Brand != "" && d.Brand != *query.Brand {
		return false
	}
	if query.Featured != nil && *query.Featured && !d.Featured {
		return false
	}
	if query.MinPrice != nil && d.Price < *query.MinPrice {
		return false
	}
	if query.MaxPrice != nil && d.Price > *query.MaxPrice {
		return false
	}
	return true
}

// score rates a document against the lower-cased query text. An empty query
// matches everything with a neutral score (browse mode).
func score(d domain.ProductDocument, queryLower string) (float64, bool) {
	if queryLower == "" {
		return 1, true
	}

	nameLower := strings.ToLower(d.Name)

	switch {
	case nameLower == queryLower:
		return 4, true
	case strings.HasPrefix(nameLower, queryLower):
		return 3, true
	case strings.Contains(nameLower, queryLower):
		return 2.5, true
	}

	if strings.Contains(strings.ToLower(d.Brand), queryLower) {
		return 2, true
	}
	if strings.Contains(strings.ToLower(d.Description), queryLower) ||
		strings.Contains(strings.ToLower(d.CategoryName), queryLower) {
		return 1, true
	}
	for _, tag := range d.Tags {
		if strings.Contains(tag, queryLower) {
			return 1, true
		}
	}

	return 0, false
}

// sortHits orders the matched set according to the sort mode, with the same
// tie-breaks as the Elasticsearch engine.
func sortHits(hits []domain.SearchHit, sortBy string) {
	switch sortBy {
	case domain.SortPriceAsc:
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].Product.Price < hits[j].Product.Price
		})
	case domain.SortPriceDesc:
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].Product.Price > hits[j].Product.Price
		})
	case domain.SortRating:
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].Product.AverageRating != hits[j].Product.AverageRating {
				return hits[i].Product.AverageRating > hits[j].Product.AverageRating
			}
			return hits[i].Product.ReviewCount > hits[j].Product.ReviewCount
		})
	case domain.SortPopularity:
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].Product.ReviewCount != hits[j].Product.ReviewCount {
				return hits[i].Product.ReviewCount > hits[j].Product.ReviewCount
			}
			return hits[i].Product.AverageRating > hits[j].Product.AverageRating
		})
	default:
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].Score != hits[j].Score {
				return hits[i].Score > hits[j].Score
			}
			return hits[i].Product.CreatedAt.After(hits[j].Product.CreatedAt)
		})
	}
}

// facets computes the brand, category, and price-range facets over the full
// matched set, independent of pagination.
func facets(hits []domain.SearchHit) ([]string, []string, []domain.PriceRange) {
	brandCounts := make(map[string]int)
	categoryCounts := make(map[string]int)

	ranges := []domain.PriceRange{
		{Key: "<10000", To: int64Ptr(10000)},
		{Key: "10000-50000", From: int64Ptr(10000), To: int64Ptr(50000)},
		{Key: "50000-100000", From: int64Ptr(50000), To: int64Ptr(100000)},
		{Key: ">100000", From: int64Ptr(100000)},
	}

	for _, h := range hits {
		if h.Product.Brand != "" {
			brandCounts[h.Product.Brand]++
		}
		if h.Product.CategoryName != "" {
			categoryCounts[h.Product.CategoryName]++
		}
		for i := range ranges {
			if (ranges[i].From == nil || h.Product.Price >= *ranges[i].From) &&
				(ranges[i].To == nil || h.Product.Price < *ranges[i].To) {
				ranges[i].Count++
			}
		}
	}

	return topKeys(brandCounts, 50), topKeys(categoryCounts, 20), ranges
}

// topKeys returns up to n keys ordered by descending count, then by key for
// a stable order.
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func int64Ptr(v int64) *int64 { return &v }
