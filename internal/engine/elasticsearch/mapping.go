package elasticsearch

// DefaultIndexName is the default Elasticsearch index used for product documents.
const DefaultIndexName = "marketplace_products"

// buildIndexMapping returns the full JSON mapping for the products index.
// All analyzed text fields share one custom analyzer (standard tokenizer,
// lowercase, stopwords, stemming). The name field carries three
// representations: analyzed text, raw keyword, and a completion sub-field
// for the autocomplete path. Brand and category name keep analyzed
// companions where partial text matching is needed.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "catalog_analyzer": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "catalog_stop", "catalog_stemmer"]
        }
      },
      "filter": {
        "catalog_stop": {
          "type": "stop",
          "stopwords": "_english_"
        },
        "catalog_stemmer": {
          "type": "stemmer",
          "language": "english"
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":             { "type": "keyword" },
      "name":           { "type": "text", "analyzer": "catalog_analyzer", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 }, "suggest": { "type": "completion" } } },
      "description":    { "type": "text", "analyzer": "catalog_analyzer" },
      "brand":          { "type": "keyword", "fields": { "text": { "type": "text", "analyzer": "catalog_analyzer" } } },
      "category":       { "type": "keyword" },
      "category_name":  { "type": "text", "analyzer": "catalog_analyzer", "fields": { "keyword": { "type": "keyword" } } },
      "price":          { "type": "long" },
      "stock":          { "type": "integer" },
      "featured":       { "type": "boolean" },
      "average_rating": { "type": "float" },
      "review_count":   { "type": "integer" },
      "images":         { "type": "keyword", "index": false },
      "tags":           { "type": "keyword" },
      "created_at":     { "type": "date" }
    }
  }
}`
}
