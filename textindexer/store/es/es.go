package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/mycok/webscout/textindexer/index"
)

// Static and compile-time check to ensure ElasticsearchIndex implements Indexer.
var _ index.Indexer = (*ElasticsearchIndex)(nil)

// Size of each page of results that is cached locally by the iterator.
const batchSize = 10

// DefaultIndexName is used when no index name is configured.
const DefaultIndexName = "web_pages"

// Title and Content are analyzed while ID and URL are stored verbatim.
var esMappings = `
{
  "mappings" : {
    "properties": {
      "ID": {"type": "keyword"},
      "URL": {"type": "keyword"},
      "Title": {"type": "text"},
      "Content": {"type": "text"},
      "RetrievedAt": {"type": "date"},
      "IndexedAt": {"type": "date"}
    }
  }
}`

type esSearchRes struct {
	Hits esSearchResHits `json:"hits"`
}

type esSearchResHits struct {
	Total   esTotal        `json:"total"`
	HitList []esHitWrapper `json:"hits"`
}

type esTotal struct {
	Count uint64 `json:"value"`
}

type esHitWrapper struct {
	Score     float64 `json:"_score"`
	DocSource esDoc   `json:"_source"`
}

type esGetRes struct {
	Found     bool  `json:"found"`
	DocSource esDoc `json:"_source"`
}

type esDoc struct {
	ID          string    `json:"ID"`
	URL         string    `json:"URL"`
	Title       string    `json:"Title"`
	Content     string    `json:"Content"`
	RetrievedAt time.Time `json:"RetrievedAt"`
	IndexedAt   time.Time `json:"IndexedAt"`
}

type esIndexRes struct {
	Result string `json:"result"`
}

type esErrorRes struct {
	Error esError `json:"error"`
}

type esError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (e esError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// ElasticsearchIndex is an Indexer implementation that uses elasticsearch
// to index and search documents.
type ElasticsearchIndex struct {
	client      *elasticsearch.Client
	indexName   string
	refreshOpts func(*esapi.IndexRequest)
}

// NewEsIndexer instantiates and returns an index that uses an
// elasticsearch cluster to index and query documents. An empty indexName
// selects DefaultIndexName.
func NewEsIndexer(
	esNodes []string, indexName string, shouldSyncUpdates bool,
) (*ElasticsearchIndex, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	c, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: esNodes,
	})
	if err != nil {
		return nil, err
	}

	if err = initIndex(c, indexName); err != nil {
		return nil, err
	}

	refreshOpts := c.Index.WithRefresh("false")
	if shouldSyncUpdates {
		refreshOpts = c.Index.WithRefresh("true")
	}

	return &ElasticsearchIndex{
		client:      c,
		indexName:   indexName,
		refreshOpts: refreshOpts,
	}, nil
}

// Name identifies the store.
func (s *ElasticsearchIndex) Name() string { return "elasticsearch" }

// Index adds a new document or replaces the document with the same ID.
func (s *ElasticsearchIndex) Index(doc *index.Document) error {
	if doc.URL == "" {
		return fmt.Errorf("index: %w", index.ErrMissingURL)
	}

	id := doc.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	indexedAt := time.Now().UTC()

	esDoc := makeEsDoc(doc)
	esDoc.ID = id.String()
	esDoc.IndexedAt = indexedAt

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esDoc); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	res, err := s.client.Index(
		s.indexName, &buf,
		s.client.Index.WithDocumentID(esDoc.ID),
		s.refreshOpts,
	)
	if err != nil {
		return fmt.Errorf("index: %w: %v", index.ErrStoreUnavailable, err)
	}

	var indexRes esIndexRes
	if err = unmarshalResponse(res, &indexRes); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	doc.ID = id
	doc.IndexedAt = indexedAt

	return nil
}

// FindByID looks up a document by its ID.
func (s *ElasticsearchIndex) FindByID(id uuid.UUID) (*index.Document, error) {
	res, err := s.client.Get(s.indexName, id.String())
	if err != nil {
		return nil, fmt.Errorf("find by ID: %w: %v", index.ErrStoreUnavailable, err)
	}

	if res.StatusCode == http.StatusNotFound {
		_ = res.Body.Close()
		return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
	}

	var getRes esGetRes
	if err = unmarshalResponse(res, &getRes); err != nil {
		return nil, fmt.Errorf("find by ID: %w", err)
	}

	if !getRes.Found {
		return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
	}

	return esDocToDoc(&getRes.DocSource), nil
}

// Search performs a look up based on query and returns a result
// iterator if successful or an error otherwise.
func (s *ElasticsearchIndex) Search(q index.Query) (index.Iterator, error) {
	var queryType string

	switch q.Type {
	case index.QueryTypePhrase:
		queryType = "phrase"
	default:
		queryType = "best_fields"
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"type":  queryType,
				"query": q.Expression,
				"fields": []string{
					fmt.Sprintf("Title^%g", q.Boost()),
					"Content",
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"ID": "asc"},
		},
		"track_total_hits": true,
		"from":             q.Offset,
		"size":             batchSize,
	}

	searchRes, err := performSearch(s.client, s.indexName, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return &esIterator{
		client:    s.client,
		indexName: s.indexName,
		searchReq: query,
		searchRes: searchRes,
		cumIdx:    q.Offset,
	}, nil
}

func performSearch(
	client *elasticsearch.Client, indexName string, query map[string]interface{},
) (*esSearchRes, error) {
	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := client.Search(
		client.Search.WithContext(context.Background()),
		client.Search.WithIndex(indexName),
		client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", index.ErrStoreUnavailable, err)
	}

	var esRes esSearchRes
	if err = unmarshalResponse(res, &esRes); err != nil {
		return nil, err
	}

	return &esRes, nil
}

func initIndex(client *elasticsearch.Client, indexName string) error {
	res, err := client.Indices.Create(
		indexName,
		client.Indices.Create.WithBody(strings.NewReader(esMappings)),
	)
	// Connection level failures.
	if err != nil {
		return fmt.Errorf("create ES index: %w: %v", index.ErrStoreUnavailable, err)
	}

	if res.IsError() {
		err = unmarshalResponse(res, nil)

		var esErr esError
		if errors.As(err, &esErr) && esErr.Type == "resource_already_exists_exception" {
			return nil
		}

		return fmt.Errorf("create ES index: %w", err)
	}

	return res.Body.Close()
}

func unmarshalResponse(res *esapi.Response, into interface{}) error {
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		var errRes esErrorRes
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			return err
		}

		if res.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %v", index.ErrStoreUnavailable, errRes.Error)
		}

		return errRes.Error
	}

	return json.NewDecoder(res.Body).Decode(into)
}

func esDocToDoc(doc *esDoc) *index.Document {
	return &index.Document{
		ID:          uuid.MustParse(doc.ID),
		URL:         doc.URL,
		Title:       doc.Title,
		Content:     doc.Content,
		RetrievedAt: doc.RetrievedAt.UTC(),
		IndexedAt:   doc.IndexedAt.UTC(),
	}
}

func makeEsDoc(doc *index.Document) esDoc {
	return esDoc{
		ID:          doc.ID.String(),
		URL:         doc.URL,
		Title:       doc.Title,
		Content:     doc.Content,
		RetrievedAt: doc.RetrievedAt.UTC(),
		IndexedAt:   doc.IndexedAt.UTC(),
	}
}

// Close is a no-op; the elasticsearch client holds no resources that need
// explicit release.
func (s *ElasticsearchIndex) Close() error { return nil }
