package event

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrialmart/search-service/internal/domain"
	"github.com/industrialmart/search-service/internal/engine/memory"
	"github.com/industrialmart/search-service/internal/service"
	pkgkafka "github.com/industrialmart/search-service/pkg/kafka"
)

func newTestConsumer(t *testing.T) (*Consumer, *service.SearchService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewSearchService(memory.New(), nil, nil, 0, logger)
	return NewConsumer(svc, logger), svc
}

func mustEvent(t *testing.T, eventType string, data any) *pkgkafka.Event {
	t.Helper()
	event, err := pkgkafka.NewEvent(eventType, "p1", "product", "catalog-service", data)
	require.NoError(t, err)
	return event
}

func searchTotal(t *testing.T, svc *service.SearchService, query string) int {
	t.Helper()
	result, err := svc.Search(context.Background(), &domain.SearchQuery{Query: query})
	require.NoError(t, err)
	return result.Total
}

func TestHandle_ProductCreatedIndexesItem(t *testing.T) {
	consumer, svc := newTestConsumer(t)

	item := domain.CatalogItem{ID: "p1", Name: "Drill Press", Brand: "Acme", Price: 25000, Stock: 3}
	err := consumer.Handle(context.Background(), mustEvent(t, TopicProductCreated, item))
	require.NoError(t, err)

	assert.Equal(t, 1, searchTotal(t, svc, "drill"))
}

func TestHandle_ProductUpdatedReplacesDocument(t *testing.T) {
	consumer, svc := newTestConsumer(t)
	ctx := context.Background()

	created := domain.CatalogItem{ID: "p1", Name: "Drill Press", Price: 25000, Stock: 3}
	require.NoError(t, consumer.Handle(ctx, mustEvent(t, TopicProductCreated, created)))

	updated := created
	updated.Name = "Bench Grinder"
	require.NoError(t, consumer.Handle(ctx, mustEvent(t, TopicProductUpdated, updated)))

	assert.Equal(t, 0, searchTotal(t, svc, "drill"))
	assert.Equal(t, 1, searchTotal(t, svc, "grinder"))
}

func TestHandle_ProductDeletedRemovesDocument(t *testing.T) {
	consumer, svc := newTestConsumer(t)
	ctx := context.Background()

	item := domain.CatalogItem{ID: "p1", Name: "Drill Press", Price: 25000, Stock: 3}
	require.NoError(t, consumer.Handle(ctx, mustEvent(t, TopicProductCreated, item)))

	err := consumer.Handle(ctx, mustEvent(t, TopicProductDeleted, ProductDeletedData{ID: "p1"}))
	require.NoError(t, err)

	assert.Equal(t, 0, searchTotal(t, svc, "drill"))
}

func TestHandle_UnknownEventTypeIsIgnored(t *testing.T) {
	consumer, _ := newTestConsumer(t)

	err := consumer.Handle(context.Background(), mustEvent(t, "catalog.warehouse.moved", map[string]string{}))
	assert.NoError(t, err)
}

func TestHandle_MalformedPayloadFails(t *testing.T) {
	consumer, _ := newTestConsumer(t)

	event := mustEvent(t, TopicProductCreated, "not an object")
	assert.Error(t, consumer.Handle(context.Background(), event))
}

func TestHandle_UpsertWithoutIDFails(t *testing.T) {
	consumer, _ := newTestConsumer(t)

	item := domain.CatalogItem{Name: "Drill Press", Price: 25000, Stock: 3}
	assert.Error(t, consumer.Handle(context.Background(), mustEvent(t, TopicProductCreated, item)))
}
