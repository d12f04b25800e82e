package domain

import (
	"time"
)

// CatalogItem is the product record as published by the catalog subsystem,
// with the category name already resolved. The search service only reads it.
type CatalogItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Brand         string    `json:"brand"`
	CategoryID    string    `json:"category_id"`
	CategoryName  string    `json:"category_name"`
	Price         int64     `json:"price"`
	Stock         int       `json:"stock"`
	Featured      bool      `json:"featured"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
	Images        []string  `json:"images"`
	IndustryTypes []string  `json:"industry_types"`
	Applications  []string  `json:"applications"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProductDocument is the denormalized searchable projection of a CatalogItem.
// One document per catalog item; indexing the same id again replaces it.
type ProductDocument struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category"`
	CategoryName  string    `json:"category_name"`
	Price         int64     `json:"price"`
	Stock         int       `json:"stock"`
	Featured      bool      `json:"featured"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
	Images        []string  `json:"images"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
}

// Sort options for search results.
const (
	SortRelevance  = "relevance"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRating     = "rating"
	SortPopularity = "popularity"
)

// ValidSortOptions returns the list of valid sort options.
func ValidSortOptions() []string {
	return []string{SortRelevance, SortPriceAsc, SortPriceDesc, SortRating, SortPopularity}
}

// NormalizeSort maps an unknown sort key to SortRelevance. Malformed sort
// input degrades to the default rather than being rejected.
func NormalizeSort(sort string) string {
	for _, s := range ValidSortOptions() {
		if s == sort {
			return s
		}
	}
	return SortRelevance
}

// SearchQuery holds all parameters for a search request. An empty Query
// serves pure filter/browse requests.
type SearchQuery struct {
	Query    string  `json:"query"`
	Category *string `json:"category,omitempty"`
	Brand    *string `json:"brand,omitempty"`
	Featured *bool   `json:"featured,omitempty"`
	MinPrice *int64  `json:"min_price,omitempty"`
	MaxPrice *int64  `json:"max_price,omitempty"`
	SortBy   string  `json:"sort_by"`
	Page     int     `json:"page"`
	PerPage  int     `json:"per_page"`
}

// SearchHit is a single matched document with its relevance score and
// optional highlight fragments keyed by field name.
type SearchHit struct {
	Product    ProductDocument     `json:"product"`
	Score      float64             `json:"score"`
	Highlights map[string][]string `json:"highlights,omitempty"`
}

// PriceRange is one bucket of the fixed price-range facet. From and To are
// nil for the open-ended buckets.
type PriceRange struct {
	Key   string `json:"key"`
	From  *int64 `json:"from,omitempty"`
	To    *int64 `json:"to,omitempty"`
	Count int    `json:"count"`
}

// SearchResult holds the paginated search response together with the facets
// computed over the full filtered match set.
type SearchResult struct {
	Hits        []SearchHit  `json:"hits"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	PerPage     int          `json:"per_page"`
	Brands      []string     `json:"brands"`
	Categories  []string     `json:"categories"`
	PriceRanges []PriceRange `json:"price_ranges"`
	TookMs      int64        `json:"took_ms"`

	// Degraded is set when the engine was unreachable and the result is the
	// empty fallback page rather than a real (possibly empty) match set.
	Degraded bool `json:"degraded,omitempty"`
}

// EmptyResult returns the zero-hit result page used when the engine is
// unavailable. All slices are non-nil so the JSON shape stays stable.
func EmptyResult(page, perPage int) *SearchResult {
	return &SearchResult{
		Hits:        []SearchHit{},
		Page:        page,
		PerPage:     perPage,
		Brands:      []string{},
		Categories:  []string{},
		PriceRanges: []PriceRange{},
		Degraded:    true,
	}
}
