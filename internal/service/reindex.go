package service

import (
	"context"
	"fmt"
	"log/slog"
)

// reindexPageSize is how many catalog items are fetched per page during a
// full reindex. Bulk writes are further chunked by the service's chunk size.
const reindexPageSize = 200

// Reindex rebuilds the whole index from the catalog service, page by page.
// The index is a cache of the catalog: this operation can recreate it from
// scratch at any time.
func (s *SearchService) Reindex(ctx context.Context) error {
	if s.catalog == nil {
		return fmt.Errorf("reindex: no catalog source configured")
	}

	var indexed int
	for page := 1; ; page++ {
		items, totalPages, err := s.catalog.FetchPage(ctx, page, reindexPageSize)
		if err != nil {
			return fmt.Errorf("reindex: fetch page %d: %w", page, err)
		}

		if err := s.BulkIndexItems(ctx, items); err != nil {
			return fmt.Errorf("reindex: index page %d: %w", page, err)
		}
		indexed += len(items)

		if page >= totalPages || len(items) == 0 {
			break
		}
	}

	s.logger.InfoContext(ctx, "reindex completed",
		slog.Int("indexed", indexed),
	)

	return nil
}
