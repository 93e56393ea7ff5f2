// internal/workers/infrastructure/archive-record/index.go
package archiverecord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cinematicsodium/awards/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchIndexer writes each archived record as a document keyed by
// its log id, so re-indexing a record overwrites it.
type ElasticsearchIndexer struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchIndexer(client *elasticsearch.Client, index string) *ElasticsearchIndexer {
	return &ElasticsearchIndexer{client: client, index: index}
}

func (i *ElasticsearchIndexer) Index(ctx context.Context, rec *models.AwardRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: rec.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index %s: %s", rec.ID, res.Status())
	}
	return nil
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":               {"type": "keyword"},
      "source":           {"type": "keyword"},
      "variant":          {"type": "keyword"},
      "category":         {"type": "keyword"},
      "award_type":       {"type": "keyword"},
      "funding_org":      {"type": "keyword"},
      "funding_division": {"type": "keyword"},
      "value":            {"type": "keyword"},
      "extent":           {"type": "keyword"},
      "date_received":    {"type": "date", "format": "yyyy-MM-dd"},
      "justification":    {"type": "text"},
      "nominator_name":   {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "employee": {"properties": {
        "name":            {"type": "text", "fields": {"raw": {"type": "keyword"}}},
        "monetary_amount": {"type": "integer"},
        "hours_amount":    {"type": "integer"}
      }},
      "employees": {"type": "nested", "properties": {
        "name":            {"type": "text", "fields": {"raw": {"type": "keyword"}}},
        "monetary_amount": {"type": "integer"},
        "hours_amount":    {"type": "integer"}
      }}
    }
  }
}`

// EnsureIndex creates the index with the record mapping unless it exists.
func (i *ElasticsearchIndexer) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  strings.NewReader(indexMapping),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", i.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", i.index, res.Status())
	}
	return nil
}
