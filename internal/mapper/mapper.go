// Package mapper projects catalog items into their searchable document shape.
package mapper

import (
	"sort"
	"strings"

	"github.com/industrialmart/search-service/internal/domain"
)

// ToDocument builds the denormalized search document for a catalog item.
// Pure function, no I/O: mapping the same item twice yields identical output.
func ToDocument(item domain.CatalogItem) domain.ProductDocument {
	images := item.Images
	if images == nil {
		images = []string{}
	}

	return domain.ProductDocument{
		ID:            item.ID,
		Name:          item.Name,
		Description:   item.Description,
		Brand:         item.Brand,
		Category:      item.CategoryID,
		CategoryName:  item.CategoryName,
		Price:         item.Price,
		Stock:         item.Stock,
		Featured:      item.Featured,
		AverageRating: item.AverageRating,
		ReviewCount:   item.ReviewCount,
		Images:        images,
		Tags:          deriveTags(item),
		CreatedAt:     item.CreatedAt,
	}
}

// deriveTags collects name, brand, category name, and all industry-type and
// application values, lower-cased, with empty values dropped and duplicates
// removed. The output is sorted so the tag set is deterministic.
func deriveTags(item domain.CatalogItem) []string {
	set := make(map[string]struct{})

	add := func(v string) {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			return
		}
		set[v] = struct{}{}
	}

	add(item.Name)
	add(item.Brand)
	add(item.CategoryName)
	for _, v := range item.IndustryTypes {
		add(v)
	}
	for _, v := range item.Applications {
		add(v)
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
