// Package esutil converts listings into documents for the search mirror.
package esutil

import (
	"encoding/json"
	"errors"
	"fmt"

	"pawmart_web/internal/domain"
	"pawmart_web/internal/listing"
	"pawmart_web/internal/platform/elasticsearch"
)

// ListingToElasticsearchDoc converts a listing to its mirror document.
func ListingToElasticsearchDoc(l domain.Listing) (string, error) {
	if l.ID == "" {
		return "", errors.New("listing has no _id")
	}

	doc := map[string]interface{}{
		"name":          l.Name,
		"category":      string(l.Category),
		"category_slug": listing.CategorySlug(l.Category),
		"price":         l.Price.InexactFloat64(),
		"quantity":      l.Quantity,
		"location":      l.Location,
		"description":   l.Description,
		"image":         l.Image,
		"date":          l.Date,
		"email":         l.Email,
	}
	if l.CreatedAt != "" {
		doc["created_at"] = l.CreatedAt
	} else {
		doc["created_at"] = nil
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshalling listing to JSON for ES: %w", err)
	}
	return string(docBytes), nil
}

// Documents converts listings into bulk index actions. Listings that cannot
// be converted are skipped and their positions returned.
func Documents(listings []domain.Listing) ([]elasticsearch.Document, []int) {
	docs := make([]elasticsearch.Document, 0, len(listings))
	var skipped []int
	for i, l := range listings {
		body, err := ListingToElasticsearchDoc(l)
		if err != nil {
			skipped = append(skipped, i)
			continue
		}
		docs = append(docs, elasticsearch.Document{ID: l.ID, Body: body})
	}
	return docs, skipped
}
