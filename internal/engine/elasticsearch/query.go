package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/industrialmart/search-service/internal/domain"
)

// Fixed price-range facet buckets, in the caller's minor currency unit.
var priceRangeBuckets = []struct {
	key  string
	from *int64
	to   *int64
}{
	{key: "<10000", to: int64Ptr(10000)},
	{key: "10000-50000", from: int64Ptr(10000), to: int64Ptr(50000)},
	{key: "50000-100000", from: int64Ptr(50000), to: int64Ptr(100000)},
	{key: ">100000", from: int64Ptr(100000)},
}

func int64Ptr(v int64) *int64 { return &v }

// esTotal decodes the hits.total field, which is either a bare integer
// (older clusters, rest_total_hits_as_int) or an object with value/relation.
// The concrete value is always preferred.
type esTotal struct {
	Value int
}

func (t *esTotal) UnmarshalJSON(data []byte) error {
	var obj struct {
		Value    int    `json:"value"`
		Relation string `json:"relation"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		t.Value = obj.Value
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode hits.total: %w", err)
	}
	t.Value = n
	return nil
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total esTotal `json:"total"`
		Hits  []struct {
			Score     float64                `json:"_score"`
			Source    domain.ProductDocument `json:"_source"`
			Highlight map[string][]string    `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		Brands struct {
			Buckets []struct {
				Key      string `json:"key"`
				DocCount int    `json:"doc_count"`
			} `json:"buckets"`
		} `json:"brands"`
		Categories struct {
			Buckets []struct {
				Key      string `json:"key"`
				DocCount int    `json:"doc_count"`
			} `json:"buckets"`
		} `json:"categories"`
		PriceRanges struct {
			Buckets []struct {
				Key      string   `json:"key"`
				From     *float64 `json:"from"`
				To       *float64 `json:"to"`
				DocCount int      `json:"doc_count"`
			} `json:"buckets"`
		} `json:"price_ranges"`
	} `json:"aggregations"`
}

// Search executes a ranked, filtered, faceted query against Elasticsearch.
func (e *Engine) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
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

	body := buildSearchBody(query, page, perPage)

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search: %s", decodeError(res.Body, res.Status()))
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	return assembleResult(&esResp, page, perPage), nil
}

// buildSearchBody constructs the Elasticsearch query DSL.
//
// Relevance combines three OR'd clauses: a field-boosted fuzzy multi-match,
// a phrase-prefix boost on name, and a wildcard fallback on the raw name
// keyword for mid-string matches. Filters live in the filter context so they
// never affect scoring, and the stock floor is always applied.
func buildSearchBody(query *domain.SearchQuery, page, perPage int) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"filter": buildFilters(query),
	}

	if query.Query != "" {
		boolQuery["should"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":         query.Query,
					"fields":        []string{"name^3", "brand.text^2", "description", "category_name", "tags"},
					"type":          "best_fields",
					"fuzziness":     "AUTO",
					"prefix_length": 1,
				},
			},
			map[string]interface{}{
				"match_phrase_prefix": map[string]interface{}{
					"name": map[string]interface{}{
						"query": query.Query,
						"boost": 2,
					},
				},
			},
			map[string]interface{}{
				"wildcard": map[string]interface{}{
					"name.keyword": map[string]interface{}{
						"value":            "*" + query.Query + "*",
						"case_insensitive": true,
						"boost":            1.5,
					},
				},
			},
		}
		boolQuery["minimum_should_match"] = 1
	} else {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"from":             (page - 1) * perPage,
		"size":             perPage,
		"track_total_hits": true,
		"aggs":             buildAggregations(),
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{
				"name":        map[string]interface{}{},
				"description": map[string]interface{}{"fragment_size": 150},
			},
			"pre_tags":  []string{"<em>"},
			"post_tags": []string{"</em>"},
		},
	}

	if sortClause := buildSort(query.SortBy); sortClause != nil {
		body["sort"] = sortClause
	}

	return body
}

// buildFilters constructs the filter-context clauses. The stock-positivity
// floor is unconditional: out-of-stock items are never returned by search.
func buildFilters(query *domain.SearchQuery) []interface{} {
	filters := []interface{}{
		map[string]interface{}{
			"range": map[string]interface{}{
				"stock": map[string]interface{}{"gt": 0},
			},
		},
	}

	if query.Category != nil && *query.Category != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"category": *query.Category},
		})
	}

	if query.Brand != nil && *query.Brand != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"brand": *query.Brand},
		})
	}

	if query.Featured != nil && *query.Featured {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"featured": true},
		})
	}

	if query.MinPrice != nil || query.MaxPrice != nil {
		rangeFilter := map[string]interface{}{}
		if query.MinPrice != nil {
			rangeFilter["gte"] = *query.MinPrice
		}
		if query.MaxPrice != nil {
			rangeFilter["lte"] = *query.MaxPrice
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"price": rangeFilter},
		})
	}

	return filters
}

// buildAggregations constructs the three facet aggregations computed in the
// same round trip: brand terms, category-name terms, and the fixed
// price-range histogram.
func buildAggregations() map[string]interface{} {
	ranges := make([]interface{}, 0, len(priceRangeBuckets))
	for _, b := range priceRangeBuckets {
		r := map[string]interface{}{"key": b.key}
		if b.from != nil {
			r["from"] = *b.from
		}
		if b.to != nil {
			r["to"] = *b.to
		}
		ranges = append(ranges, r)
	}

	return map[string]interface{}{
		"brands": map[string]interface{}{
			"terms": map[string]interface{}{
				"field": "brand",
				"size":  50,
			},
		},
		"categories": map[string]interface{}{
			"terms": map[string]interface{}{
				"field": "category_name.keyword",
				"size":  20,
			},
		},
		"price_ranges": map[string]interface{}{
			"range": map[string]interface{}{
				"field":  "price",
				"ranges": ranges,
			},
		},
	}
}

// buildSort constructs the sort clause for the given sort mode. Relevance
// uses score with created_at as the tie-break.
func buildSort(sortBy string) []interface{} {
	switch sortBy {
	case domain.SortPriceAsc:
		return []interface{}{
			map[string]interface{}{"price": "asc"},
		}
	case domain.SortPriceDesc:
		return []interface{}{
			map[string]interface{}{"price": "desc"},
		}
	case domain.SortRating:
		return []interface{}{
			map[string]interface{}{"average_rating": "desc"},
			map[string]interface{}{"review_count": "desc"},
		}
	case domain.SortPopularity:
		return []interface{}{
			map[string]interface{}{"review_count": "desc"},
			map[string]interface{}{"average_rating": "desc"},
		}
	default:
		return []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"created_at": "desc"},
		}
	}
}

// assembleResult merges the decoded engine response into the caller-facing
// result page: hits with scores and highlights, the normalized total, and
// the three facets.
func assembleResult(esResp *esSearchResponse, page, perPage int) *domain.SearchResult {
	hits := make([]domain.SearchHit, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		hits = append(hits, domain.SearchHit{
			Product:    hit.Source,
			Score:      hit.Score,
			Highlights: hit.Highlight,
		})
	}

	brands := make([]string, 0, len(esResp.Aggregations.Brands.Buckets))
	for _, b := range esResp.Aggregations.Brands.Buckets {
		brands = append(brands, b.Key)
	}

	categories := make([]string, 0, len(esResp.Aggregations.Categories.Buckets))
	for _, b := range esResp.Aggregations.Categories.Buckets {
		categories = append(categories, b.Key)
	}

	priceRanges := make([]domain.PriceRange, 0, len(esResp.Aggregations.PriceRanges.Buckets))
	for _, b := range esResp.Aggregations.PriceRanges.Buckets {
		pr := domain.PriceRange{Key: b.Key, Count: b.DocCount}
		if b.From != nil {
			pr.From = int64Ptr(int64(*b.From))
		}
		if b.To != nil {
			pr.To = int64Ptr(int64(*b.To))
		}
		priceRanges = append(priceRanges, pr)
	}

	return &domain.SearchResult{
		Hits:        hits,
		Total:       esResp.Hits.Total.Value,
		Page:        page,
		PerPage:     perPage,
		Brands:      brands,
		Categories:  categories,
		PriceRanges: priceRanges,
		TookMs:      int64(esResp.Took),
	}
}
