package engine

import (
	"context"

	"github.com/industrialmart/search-service/internal/domain"
)

// SearchEngine defines the interface for indexing and searching products.
// Implementations may use Elasticsearch, in-memory storage, or other backends.
type SearchEngine interface {
	// Index adds or replaces a single product document keyed by its ID.
	Index(ctx context.Context, doc *domain.ProductDocument) error

	// BulkIndex adds or replaces multiple product documents in one request.
	BulkIndex(ctx context.Context, docs []domain.ProductDocument) error

	// Delete removes a document by ID. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// Search executes a ranked, filtered, faceted query.
	Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error)

	// Suggest returns short-text completions for a partial query.
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
}
