package elasticsearch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrialmart/search-service/internal/domain"
)

func TestBuildSearchBody_TextQueryClauses(t *testing.T) {
	body := buildSearchBody(&domain.SearchQuery{Query: "drill press"}, 1, 24)

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	should := boolQuery["should"].([]interface{})
	require.Len(t, should, 3)
	assert.Equal(t, 1, boolQuery["minimum_should_match"])

	multiMatch := should[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "drill press", multiMatch["query"])
	assert.Equal(t, "best_fields", multiMatch["type"])
	assert.Equal(t, "AUTO", multiMatch["fuzziness"])
	assert.Equal(t, []string{"name^3", "brand.text^2", "description", "category_name", "tags"}, multiMatch["fields"])

	phrasePrefix := should[1].(map[string]interface{})["match_phrase_prefix"].(map[string]interface{})["name"].(map[string]interface{})
	assert.Equal(t, "drill press", phrasePrefix["query"])
	assert.Equal(t, 2, phrasePrefix["boost"])

	wildcard := should[2].(map[string]interface{})["wildcard"].(map[string]interface{})["name.keyword"].(map[string]interface{})
	assert.Equal(t, "*drill press*", wildcard["value"])
	assert.Equal(t, 1.5, wildcard["boost"])
}

func TestBuildSearchBody_EmptyQueryIsMatchAll(t *testing.T) {
	body := buildSearchBody(&domain.SearchQuery{}, 1, 24)

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	require.Nil(t, boolQuery["should"])

	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	_, ok := must[0].(map[string]interface{})["match_all"]
	assert.True(t, ok)
}

func TestBuildFilters_StockFloorAlwaysApplied(t *testing.T) {
	filters := buildFilters(&domain.SearchQuery{})
	require.Len(t, filters, 1)

	stockRange := filters[0].(map[string]interface{})["range"].(map[string]interface{})["stock"].(map[string]interface{})
	assert.Equal(t, 0, stockRange["gt"])
}

func TestBuildFilters_AllFilters(t *testing.T) {
	category := "cat-1"
	brand := "Acme"
	featured := true
	minPrice := int64(10000)
	maxPrice := int64(100000)

	filters := buildFilters(&domain.SearchQuery{
		Category: &category,
		Brand:    &brand,
		Featured: &featured,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	})

	// Stock floor plus category, brand, featured, and price range.
	require.Len(t, filters, 5)

	priceRange := filters[4].(map[string]interface{})["range"].(map[string]interface{})["price"].(map[string]interface{})
	assert.Equal(t, int64(10000), priceRange["gte"])
	assert.Equal(t, int64(100000), priceRange["lte"])
}

func TestBuildSearchBody_Pagination(t *testing.T) {
	body := buildSearchBody(&domain.SearchQuery{}, 3, 24)

	assert.Equal(t, 48, body["from"])
	assert.Equal(t, 24, body["size"])
	assert.Equal(t, true, body["track_total_hits"])
}

func TestBuildSearchBody_Aggregations(t *testing.T) {
	body := buildSearchBody(&domain.SearchQuery{}, 1, 24)

	aggs := body["aggs"].(map[string]interface{})

	brands := aggs["brands"].(map[string]interface{})["terms"].(map[string]interface{})
	assert.Equal(t, "brand", brands["field"])
	assert.Equal(t, 50, brands["size"])

	categories := aggs["categories"].(map[string]interface{})["terms"].(map[string]interface{})
	assert.Equal(t, "category_name.keyword", categories["field"])
	assert.Equal(t, 20, categories["size"])

	ranges := aggs["price_ranges"].(map[string]interface{})["range"].(map[string]interface{})
	assert.Equal(t, "price", ranges["field"])
	assert.Len(t, ranges["ranges"].([]interface{}), 4)
}

func TestBuildSearchBody_Highlighting(t *testing.T) {
	body := buildSearchBody(&domain.SearchQuery{Query: "mixer"}, 1, 24)

	highlight := body["highlight"].(map[string]interface{})
	fields := highlight["fields"].(map[string]interface{})
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "description")
}

func TestBuildSort(t *testing.T) {
	tests := []struct {
		sortBy string
		first  string
	}{
		{domain.SortPriceAsc, "price"},
		{domain.SortPriceDesc, "price"},
		{domain.SortRating, "average_rating"},
		{domain.SortPopularity, "review_count"},
		{domain.SortRelevance, "_score"},
		{"bogus", "_score"},
	}

	for _, tc := range tests {
		sortClause := buildSort(tc.sortBy)
		require.NotEmpty(t, sortClause, tc.sortBy)
		first := sortClause[0].(map[string]interface{})
		assert.Contains(t, first, tc.first, "sort %s", tc.sortBy)
	}

	// Relevance ties break on recency.
	relevance := buildSort(domain.SortRelevance)
	require.Len(t, relevance, 2)
	assert.Contains(t, relevance[1].(map[string]interface{}), "created_at")
}

func TestESTotal_UnmarshalObjectAndInt(t *testing.T) {
	var total esTotal
	require.NoError(t, json.Unmarshal([]byte(`{"value": 42, "relation": "eq"}`), &total))
	assert.Equal(t, 42, total.Value)

	require.NoError(t, json.Unmarshal([]byte(`7`), &total))
	assert.Equal(t, 7, total.Value)
}

func TestAssembleResult(t *testing.T) {
	raw := `{
		"took": 5,
		"hits": {
			"total": {"value": 2, "relation": "eq"},
			"hits": [
				{"_score": 3.2, "_source": {"id": "p1", "name": "Drill Press"}, "highlight": {"name": ["<em>Drill</em> Press"]}},
				{"_score": 1.1, "_source": {"id": "p2", "name": "Drill Bits"}}
			]
		},
		"aggregations": {
			"brands": {"buckets": [{"key": "Acme", "doc_count": 2}]},
			"categories": {"buckets": [{"key": "Tools", "doc_count": 2}]},
			"price_ranges": {"buckets": [
				{"key": "<10000", "to": 10000.0, "doc_count": 1},
				{"key": "10000-50000", "from": 10000.0, "to": 50000.0, "doc_count": 1}
			]}
		}
	}`

	var esResp esSearchResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &esResp))

	result := assembleResult(&esResp, 1, 24)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, int64(5), result.TookMs)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "p1", result.Hits[0].Product.ID)
	assert.Equal(t, 3.2, result.Hits[0].Score)
	assert.Equal(t, []string{"<em>Drill</em> Press"}, result.Hits[0].Highlights["name"])
	assert.Nil(t, result.Hits[1].Highlights)

	assert.Equal(t, []string{"Acme"}, result.Brands)
	assert.Equal(t, []string{"Tools"}, result.Categories)
	require.Len(t, result.PriceRanges, 2)
	assert.Equal(t, "<10000", result.PriceRanges[0].Key)
	assert.Equal(t, 1, result.PriceRanges[0].Count)
	assert.Nil(t, result.PriceRanges[0].From)
	require.NotNil(t, result.PriceRanges[1].From)
	assert.Equal(t, int64(10000), *result.PriceRanges[1].From)
}

func TestBuildSuggestBody(t *testing.T) {
	body := buildSuggestBody("dri", 8)

	suggest := body["suggest"].(map[string]interface{})["name_suggest"].(map[string]interface{})
	assert.Equal(t, "dri", suggest["prefix"])
	completion := suggest["completion"].(map[string]interface{})
	assert.Equal(t, "name.suggest", completion["field"])
	assert.Equal(t, 8, completion["size"])
	assert.Equal(t, true, completion["skip_duplicates"])

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	multiMatch := boolQuery["must"].([]interface{})[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "phrase_prefix", multiMatch["type"])
	assert.Equal(t, []string{"name", "brand.text"}, multiMatch["fields"])

	assert.Equal(t, 8, body["size"])
}

func TestMergeSuggestions_SuggesterFirstDeduplicated(t *testing.T) {
	raw := `{
		"suggest": {"name_suggest": [{"options": [{"text": "Drill Press"}, {"text": "Drill Bits"}]}]},
		"hits": {"hits": [
			{"_source": {"id": "p1", "name": "Drill Press"}},
			{"_source": {"id": "p3", "name": "Drilling Rig"}}
		]}
	}`

	var esResp esSuggestResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &esResp))

	merged := mergeSuggestions(&esResp, 10)
	assert.Equal(t, []string{"Drill Press", "Drill Bits", "Drilling Rig"}, merged)

	truncated := mergeSuggestions(&esResp, 2)
	assert.Equal(t, []string{"Drill Press", "Drill Bits"}, truncated)
}
