package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/industrialmart/search-service/internal/domain"
)

// maxSuggestExpansions caps the phrase-prefix expansion count; the suggest
// path trades recall for latency.
const maxSuggestExpansions = 20

// esSuggestResponse is the structure used to decode Elasticsearch suggest responses.
type esSuggestResponse struct {
	Suggest struct {
		NameSuggest []struct {
			Options []struct {
				Text string `json:"text"`
			} `json:"options"`
		} `json:"name_suggest"`
	} `json:"suggest"`
	Hits struct {
		Hits []struct {
			Source domain.ProductDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Suggest returns ranked completions for a partial query. It combines a
// completion-suggester lookup on name.suggest with a phrase-prefix fallback
// over name and the analyzed brand sub-field in a single request. Suggester
// options come first; phrase-prefix hits fill the remaining slots.
func (e *Engine) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 8
	}

	body := buildSuggestBody(prefix, limit)

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch suggest: %s", decodeError(res.Body, res.Status()))
	}

	var esResp esSuggestResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: decode response: %w", err)
	}

	return mergeSuggestions(&esResp, limit), nil
}

// buildSuggestBody constructs the combined completion + phrase-prefix request.
func buildSuggestBody(prefix string, limit int) map[string]interface{} {
	return map[string]interface{}{
		"suggest": map[string]interface{}{
			"name_suggest": map[string]interface{}{
				"prefix": prefix,
				"completion": map[string]interface{}{
					"field":           "name.suggest",
					"size":            limit,
					"skip_duplicates": true,
				},
			},
		},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":          prefix,
							"fields":         []string{"name", "brand.text"},
							"type":           "phrase_prefix",
							"max_expansions": maxSuggestExpansions,
						},
					},
				},
				"filter": []interface{}{
					map[string]interface{}{
						"range": map[string]interface{}{
							"stock": map[string]interface{}{"gt": 0},
						},
					},
				},
			},
		},
		"size":    limit,
		"_source": []string{"name"},
	}
}

// mergeSuggestions flattens both sources into one deduplicated list,
// suggester options first, truncated to limit.
func mergeSuggestions(esResp *esSuggestResponse, limit int) []string {
	seen := make(map[string]struct{})
	suggestions := make([]string, 0, limit)

	add := func(text string) {
		if text == "" || len(suggestions) >= limit {
			return
		}
		if _, exists := seen[text]; exists {
			return
		}
		seen[text] = struct{}{}
		suggestions = append(suggestions, text)
	}

	for _, entry := range esResp.Suggest.NameSuggest {
		for _, opt := range entry.Options {
			add(opt.Text)
		}
	}
	for _, hit := range esResp.Hits.Hits {
		add(hit.Source.Name)
	}

	return suggestions
}
