package memory

import (
	"fmt"

	"github.com/blevesearch/bleve"

	"github.com/mycok/webscout/textindexer/index"
)

// Static and compile-time check to ensure docIterator implements
// index.Iterator interface.
var _ index.Iterator = (*docIterator)(nil)

// docIterator is an index.Iterator implementation for the in-memory index.
type docIterator struct {
	idx       *InMemoryIndex
	searchReq *bleve.SearchRequest

	// Cumulative index tracks the absolute position in the result list.
	cumIdx uint64
	// Search result index tracks the position in the current batch.
	searchResIdx int
	searchRes    *bleve.SearchResult

	doc     *index.Document
	score   float64
	lastErr error
}

// Next loads the next item, returns false when no more items
// are available or when an error occurs.
func (i *docIterator) Next() bool {
	if i.lastErr != nil || i.searchRes == nil || i.cumIdx >= i.searchRes.Total {
		return false
	}

	// Fetch the next batch once the current one has been consumed.
	if i.searchResIdx >= i.searchRes.Hits.Len() {
		i.searchReq.From += i.searchReq.Size
		i.searchRes, i.lastErr = i.idx.idx.Search(i.searchReq)
		if i.lastErr != nil {
			return false
		}

		i.searchResIdx = 0
		if i.searchRes.Hits.Len() == 0 {
			return false
		}
	}

	hit := i.searchRes.Hits[i.searchResIdx]

	i.idx.mu.RLock()
	doc, exists := i.idx.docs[hit.ID]
	i.idx.mu.RUnlock()
	if !exists {
		i.lastErr = fmt.Errorf("find by ID: %w", index.ErrNotFound)

		return false
	}

	i.doc = copyDoc(doc)
	i.score = hit.Score
	i.searchResIdx++
	i.cumIdx++

	return true
}

// Document returns the current document from the result set.
func (i *docIterator) Document() *index.Document {
	return i.doc
}

// Score returns the bleve relevance score of the current document.
func (i *docIterator) Score() float64 {
	return i.score
}

// TotalCount returns the approximated total number of search results.
func (i *docIterator) TotalCount() uint64 {
	if i.searchRes == nil {
		return 0
	}

	return i.searchRes.Total
}

// Error returns the last error encountered by the iterator.
func (i *docIterator) Error() error {
	return i.lastErr
}

// Close releases any resources allocated to the iterator.
func (i *docIterator) Close() error {
	i.idx = nil
	i.searchReq = nil

	if i.searchRes != nil {
		i.cumIdx = i.searchRes.Total
	}

	return nil
}
