package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/industrialmart/search-service/internal/domain"
	"github.com/industrialmart/search-service/internal/service"
	"github.com/industrialmart/search-service/pkg/httputil"
	"github.com/industrialmart/search-service/pkg/validator"
)

// SearchHandler handles HTTP requests for search endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// IndexItemRequest is the JSON request body for indexing a catalog item.
type IndexItemRequest struct {
	ID            string    `json:"id" validate:"required"`
	Name          string    `json:"name" validate:"required,min=1"`
	Description   string    `json:"description"`
	Brand         string    `json:"brand"`
	CategoryID    string    `json:"category_id"`
	CategoryName  string    `json:"category_name"`
	Price         int64     `json:"price" validate:"gte=0"`
	Stock         int       `json:"stock" validate:"gte=0"`
	Featured      bool      `json:"featured"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
	Images        []string  `json:"images"`
	IndustryTypes []string  `json:"industry_types"`
	Applications  []string  `json:"applications"`
	CreatedAt     time.Time `json:"created_at"`
}

// BulkIndexRequest is the JSON request body for bulk indexing items.
type BulkIndexRequest struct {
	Items []IndexItemRequest `json:"items" validate:"required,min=1,max=500,dive"`
}

func (r IndexItemRequest) toCatalogItem() domain.CatalogItem {
	return domain.CatalogItem{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Brand:         r.Brand,
		CategoryID:    r.CategoryID,
		CategoryName:  r.CategoryName,
		Price:         r.Price,
		Stock:         r.Stock,
		Featured:      r.Featured,
		AverageRating: r.AverageRating,
		ReviewCount:   r.ReviewCount,
		Images:        r.Images,
		IndustryTypes: r.IndustryTypes,
		Applications:  r.Applications,
		CreatedAt:     r.CreatedAt,
	}
}

// --- Handlers ---

// Search handles GET /api/v1/search
//
// All query parameters are best-effort: unparsable values are ignored and
// unknown sort keys fall back to relevance, per the degradation policy of a
// non-transactional ranking API.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := &domain.SearchQuery{
		Query:   strings.TrimSpace(params.Get("q")),
		SortBy:  domain.NormalizeSort(params.Get("sort")),
		Page:    1,
		PerPage: 24,
	}

	if v := params.Get("category"); v != "" {
		query.Category = &v
	}
	if v := params.Get("brand"); v != "" {
		query.Brand = &v
	}
	if v := params.Get("featured"); v != "" {
		if featured, err := strconv.ParseBool(v); err == nil && featured {
			query.Featured = &featured
		}
	}
	if v := params.Get("min_price"); v != "" {
		if price, err := strconv.ParseInt(v, 10, 64); err == nil && price >= 0 {
			query.MinPrice = &price
		}
	}
	if v := params.Get("max_price"); v != "" {
		if price, err := strconv.ParseInt(v, 10, 64); err == nil && price >= 0 {
			query.MaxPrice = &price
		}
	}
	if v := params.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			query.Page = page
		}
	}
	if v := params.Get("page_size"); v != "" {
		if perPage, err := strconv.Atoi(v); err == nil && perPage > 0 && perPage <= 100 {
			query.PerPage = perPage
		}
	}

	result, err := h.service.Search(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Suggest handles GET /api/v1/search/suggest
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))
	if prefix == "" {
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"suggestions": []string{}}})
		return
	}

	limit := 8
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 20 {
			limit = l
		}
	}

	suggestions, err := h.service.Suggest(r.Context(), prefix, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"suggestions": suggestions}})
}

// IndexItem handles POST /api/v1/search/index
func (h *SearchHandler) IndexItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req IndexItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.IndexItem(r.Context(), req.toCatalogItem()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": req.ID, "status": "indexed"}})
}

// BulkIndex handles POST /api/v1/search/bulk
func (h *SearchHandler) BulkIndex(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10MB limit for bulk endpoint

	var req BulkIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	items := make([]domain.CatalogItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.toCatalogItem())
	}

	if err := h.service.BulkIndexItems(r.Context(), items); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"indexed": len(items), "status": "ok"}})
}

// RemoveItem handles DELETE /api/v1/search/{id}
func (h *SearchHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.RemoveItem(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// Reindex handles POST /api/v1/search/reindex
func (h *SearchHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx := context.Background()
		if err := h.service.Reindex(ctx); err != nil {
			h.logger.ErrorContext(ctx, "background reindex failed", "error", err)
		}
	}()

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "reindex started"}})
}
