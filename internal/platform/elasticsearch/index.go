package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const ListingsIndexName = "listings"

// defineListingsMapping returns the JSON string for the listings index mapping.
func defineListingsMapping() (string, error) {
	keywordSubField := map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"name":          map[string]interface{}{"type": "text", "fields": keywordSubField},
				"category":      map[string]interface{}{"type": "keyword"},
				"category_slug": map[string]interface{}{"type": "keyword"},
				"price":         map[string]interface{}{"type": "scaled_float", "scaling_factor": 100},
				"quantity":      map[string]interface{}{"type": "integer"},
				"location":      map[string]interface{}{"type": "text", "fields": keywordSubField},
				"description":   map[string]interface{}{"type": "text"},
				"image":         map[string]interface{}{"type": "keyword", "index": false},
				"date":          map[string]interface{}{"type": "keyword"},
				"email":         map[string]interface{}{"type": "keyword"},
				"created_at":    map[string]interface{}{"type": "keyword"},
			},
		},
	}
	mappingBytes, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling listings mapping to JSON: %w", err)
	}
	return string(mappingBytes), nil
}

// CreateListingsIndexIfNotExists creates the listings index with the defined mapping
// if it does not already exist.
func CreateListingsIndexIfNotExists(ctx context.Context, client *ESClientWrapper, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{ListingsIndexName}}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error checking if listings index exists: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Debug("Listings index already exists", zap.String("index_name", ListingsIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error checking if listings index exists: status %s", res.Status())
	}

	mappingJSON, err := defineListingsMapping()
	if err != nil {
		return err
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: ListingsIndexName,
		Body:  strings.NewReader(mappingJSON),
	}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error creating listings index %s: %w", ListingsIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		log.Error("Failed to create listings index",
			zap.String("status", createRes.Status()),
			zap.String("body", responseBodyToString(createRes)),
		)
		return fmt.Errorf("failed to create listings index %s: status %s", ListingsIndexName, createRes.Status())
	}

	log.Info("Listings index created successfully", zap.String("index_name", ListingsIndexName))
	return nil
}

// Document is one bulk index action: the document id and its JSON body.
type Document struct {
	ID   string
	Body string
}

// BulkResult summarises a bulk index request.
type BulkResult struct {
	Indexed int
	Failed  int
}

// BulkIndex writes docs into the listings index in a single bulk request.
// Item-level failures are logged and counted; only transport errors are returned.
func BulkIndex(ctx context.Context, client *ESClientWrapper, logger *zap.Logger, docs []Document, refresh string) (BulkResult, error) {
	if len(docs) == 0 {
		return BulkResult{}, nil
	}

	var body strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&body, `{ "index" : { "_index" : "%s", "_id" : "%s" } }%s`, ListingsIndexName, d.ID, "\n")
		body.WriteString(d.Body)
		body.WriteString("\n")
	}

	res, err := esapi.BulkRequest{
		Body:    strings.NewReader(body.String()),
		Refresh: refresh,
	}.Do(ctx, client.Client)
	if err != nil {
		return BulkResult{Failed: len(docs)}, fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return BulkResult{Failed: len(docs)}, fmt.Errorf("bulk request failed: %s", res.Status())
	}

	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		return BulkResult{Failed: len(docs)}, fmt.Errorf("decode bulk response: %w", err)
	}

	var result BulkResult
	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil {
			logger.Error("Failed to index listing",
				zap.String("listingID", item.Index.ID),
				zap.Any("error", item.Index.Error),
				zap.Int("status", item.Index.Status),
			)
			result.Failed++
			continue
		}
		result.Indexed++
	}
	return result, nil
}

// CountByCategory runs a terms aggregation over the category field of the
// listings owned by email.
func CountByCategory(ctx context.Context, client *ESClientWrapper, email string) (map[string]int64, error) {
	query := map[string]interface{}{
		"size": 0,
		"query": map[string]interface{}{
			"term": map[string]interface{}{"email": email},
		},
		"aggs": map[string]interface{}{
			"by_category": map[string]interface{}{
				"terms": map[string]interface{}{"field": "category", "size": 20},
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encode aggregation query: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{ListingsIndexName},
		Body:  &buf,
	}.Do(ctx, client.Client)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search request failed: %s", res.Status())
	}

	var parsed struct {
		Aggregations struct {
			ByCategory struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int64  `json:"doc_count"`
				} `json:"buckets"`
			} `json:"by_category"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode aggregation response: %w", err)
	}

	counts := make(map[string]int64, len(parsed.Aggregations.ByCategory.Buckets))
	for _, b := range parsed.Aggregations.ByCategory.Buckets {
		counts[b.Key] = b.DocCount
	}
	return counts, nil
}

// responseBodyToString reads the response body, for error logging.
func responseBodyToString(res *esapi.Response) string {
	if res == nil || res.Body == nil {
		return ""
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(res.Body); err != nil {
		return fmt.Sprintf("failed to read response body: %v", err)
	}
	return buf.String()
}
