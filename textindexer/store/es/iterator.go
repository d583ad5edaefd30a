package es

import (
	"github.com/elastic/go-elasticsearch/v8"

	"github.com/mycok/webscout/textindexer/index"
)

// Static and compile-time check to ensure esIterator implements
// index.Iterator interface.
var _ index.Iterator = (*esIterator)(nil)

// esIterator is an index.Iterator implementation for an elasticsearch index.
type esIterator struct {
	client    *elasticsearch.Client
	indexName string
	searchReq map[string]interface{}

	// Cumulative index tracks the absolute position in the result list.
	cumIdx uint64
	// Search result index tracks the position in the current batch.
	searchResIdx int
	searchRes    *esSearchRes

	doc     *index.Document
	score   float64
	lastErr error
}

// Next loads the next item, returns false when no more items
// are available or when an error occurs.
func (i *esIterator) Next() bool {
	if i.lastErr != nil || i.searchRes == nil ||
		i.cumIdx >= i.searchRes.Hits.Total.Count {
		return false
	}

	// Fetch the next batch once the current one has been consumed.
	if i.searchResIdx >= len(i.searchRes.Hits.HitList) {
		i.searchReq["from"] = i.searchReq["from"].(uint64) + batchSize
		i.searchRes, i.lastErr = performSearch(i.client, i.indexName, i.searchReq)
		if i.lastErr != nil {
			return false
		}

		i.searchResIdx = 0
		if len(i.searchRes.Hits.HitList) == 0 {
			return false
		}
	}

	hit := i.searchRes.Hits.HitList[i.searchResIdx]
	i.doc = esDocToDoc(&hit.DocSource)
	i.score = hit.Score
	i.searchResIdx++
	i.cumIdx++

	return true
}

// Document returns the current document from the result set.
func (i *esIterator) Document() *index.Document {
	return i.doc
}

// Score returns the elasticsearch relevance score of the current document.
func (i *esIterator) Score() float64 {
	return i.score
}

// TotalCount returns the approximated total number of search results.
func (i *esIterator) TotalCount() uint64 {
	if i.searchRes == nil {
		return 0
	}

	return i.searchRes.Hits.Total.Count
}

// Error returns the last error encountered by the iterator.
func (i *esIterator) Error() error {
	return i.lastErr
}

// Close releases any resources allocated to the iterator.
func (i *esIterator) Close() error {
	i.client = nil
	i.searchReq = nil
	if i.searchRes != nil {
		i.cumIdx = i.searchRes.Hits.Total.Count
	}

	return nil
}
