package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"
	"github.com/google/uuid"

	"github.com/mycok/webscout/textindexer/index"
)

// Size of each page of results that is cached locally by the iterator.
const batchSize = 10

// Static and compile-time check to ensure InMemoryIndex implements Indexer.
var _ index.Indexer = (*InMemoryIndex)(nil)

type bleveDoc struct {
	Title       string
	Content     string
	URL         string
	RetrievedAt time.Time
}

// InMemoryIndex is an Indexer implementation that uses a bleve instance
// to index and search documents while keeping its index in memory.
type InMemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]*index.Document
	idx  bleve.Index
}

// NewInMemoryIndex instantiates and returns a text indexer that
// uses an in-memory bleve instance to index documents.
func NewInMemoryIndex() (*InMemoryIndex, error) {
	idx, err := bleve.NewMemOnly(newIndexMapping())
	if err != nil {
		return nil, err
	}

	return &InMemoryIndex{
		idx:  idx,
		docs: make(map[string]*index.Document),
	}, nil
}

// newIndexMapping analyzes Title and Content while URL is kept verbatim.
func newIndexMapping() mapping.IndexMapping {
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name

	urlField := bleve.NewTextFieldMapping()
	urlField.Analyzer = keyword.Name
	urlField.IncludeInAll = false

	dateField := bleve.NewDateTimeFieldMapping()
	dateField.IncludeInAll = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("Title", textField)
	docMapping.AddFieldMappingsAt("Content", textField)
	docMapping.AddFieldMappingsAt("URL", urlField)
	docMapping.AddFieldMappingsAt("RetrievedAt", dateField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = docMapping
	m.DefaultAnalyzer = standard.Name

	return m
}

// Name identifies the store.
func (s *InMemoryIndex) Name() string { return "memory" }

// Close releases any previously allocated resources.
func (s *InMemoryIndex) Close() error {
	return s.idx.Close()
}

// Index adds a new document or replaces the document with the same ID.
func (s *InMemoryIndex) Index(doc *index.Document) error {
	if doc.URL == "" {
		return fmt.Errorf("index: %w", index.ErrMissingURL)
	}

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.IndexedAt = time.Now()

	dCopy := copyDoc(doc)
	key := dCopy.ID.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.idx.Index(key, makeBleveDoc(dCopy)); err != nil {
		if err == bleve.ErrorIndexClosed {
			return fmt.Errorf("index: %w", index.ErrStoreUnavailable)
		}

		return fmt.Errorf("index: %w", err)
	}

	s.docs[key] = dCopy

	return nil
}

// FindByID looks up a document by its ID.
func (s *InMemoryIndex) FindByID(id uuid.UUID) (*index.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if doc, exists := s.docs[id.String()]; exists {
		return copyDoc(doc), nil
	}

	return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
}

// Search performs a look up based on query and returns a result
// iterator if successful or an error otherwise.
func (s *InMemoryIndex) Search(q index.Query) (index.Iterator, error) {
	searchReq := bleve.NewSearchRequest(buildQuery(q))
	// Ties on score are broken by document key so pages stay stable.
	searchReq.SortBy([]string{"-_score", "_id"})
	searchReq.Size = batchSize
	searchReq.From = int(q.Offset)

	sr, err := s.idx.Search(searchReq)
	if err != nil {
		if err == bleve.ErrorIndexClosed {
			return nil, fmt.Errorf("search: %w", index.ErrStoreUnavailable)
		}

		return nil, fmt.Errorf("search: %w", err)
	}

	return &docIterator{
		idx:       s,
		searchReq: searchReq,
		searchRes: sr,
		cumIdx:    q.Offset,
	}, nil
}

func buildQuery(q index.Query) query.Query {
	var title, content query.Query

	switch q.Type {
	case index.QueryTypePhrase:
		tq := bleve.NewMatchPhraseQuery(q.Expression)
		tq.SetField("Title")
		tq.SetBoost(q.Boost())
		cq := bleve.NewMatchPhraseQuery(q.Expression)
		cq.SetField("Content")
		title, content = tq, cq
	default:
		tq := bleve.NewMatchQuery(q.Expression)
		tq.SetField("Title")
		tq.SetBoost(q.Boost())
		cq := bleve.NewMatchQuery(q.Expression)
		cq.SetField("Content")
		title, content = tq, cq
	}

	return bleve.NewDisjunctionQuery(title, content)
}

func copyDoc(doc *index.Document) *index.Document {
	dCopy := new(index.Document)
	*dCopy = *doc

	return dCopy
}

func makeBleveDoc(doc *index.Document) bleveDoc {
	return bleveDoc{
		Title:       doc.Title,
		Content:     doc.Content,
		URL:         doc.URL,
		RetrievedAt: doc.RetrievedAt,
	}
}
