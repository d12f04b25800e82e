package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/industrialmart/search-service/internal/domain"
	"github.com/industrialmart/search-service/internal/service"
	pkgkafka "github.com/industrialmart/search-service/pkg/kafka"
)

// Kafka topics for catalog domain events consumed by the search service.
const (
	TopicProductCreated = "catalog.product.created"
	TopicProductUpdated = "catalog.product.updated"
	TopicProductDeleted = "catalog.product.deleted"
)

// ProductDeletedData represents the payload of a product.deleted event.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// Consumer handles catalog change events and keeps the index in sync.
type Consumer struct {
	searchService *service.SearchService
	logger        *slog.Logger
}

// NewConsumer creates a new event consumer for the search service.
func NewConsumer(searchService *service.SearchService, logger *slog.Logger) *Consumer {
	return &Consumer{
		searchService: searchService,
		logger:        logger,
	}
}

// Handle processes a Kafka event based on its type. Create and update both
// fully replace the document, so they share one path.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated:
		return c.handleProductUpserted(ctx, event)
	case TopicProductDeleted:
		return c.handleProductDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleProductUpserted indexes a created or updated product. The event
// payload carries the catalog item with its category name already resolved.
func (c *Consumer) handleProductUpserted(ctx context.Context, event *pkgkafka.Event) error {
	var item domain.CatalogItem
	if err := event.UnmarshalData(&item); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}

	if err := c.searchService.IndexItem(ctx, item); err != nil {
		return fmt.Errorf("index item from %s event: %w", event.EventType, err)
	}

	c.logger.InfoContext(ctx, "indexed item from catalog event",
		slog.String("item_id", item.ID),
		slog.String("event_type", event.EventType),
	)

	return nil
}

// handleProductDeleted removes a deleted product from the index.
func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}

	if err := c.searchService.RemoveItem(ctx, data.ID); err != nil {
		return fmt.Errorf("remove item from deleted event: %w", err)
	}

	c.logger.InfoContext(ctx, "removed item from deleted event",
		slog.String("item_id", data.ID),
	)

	return nil
}
