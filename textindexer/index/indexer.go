package index

import "github.com/google/uuid"

// DefaultTitleBoost is the weight applied to title matches relative to
// content matches when a Query does not specify one.
const DefaultTitleBoost = 2.0

// Indexer should be implemented by objects that can index and search
// documents produced by the crawler component.
type Indexer interface {
	// Name identifies the backing store, e.g. "memory" or "elasticsearch".
	Name() string

	// Index writes a document. A nil ID makes the store assign a new one
	// while an existing ID replaces the stored document.
	Index(doc *Document) error

	// FindByID looks up a document by its ID.
	FindByID(id uuid.UUID) (*Document, error)

	// Search performs a look up based on query and returns a result
	// iterator if successful or an error otherwise.
	Search(q Query) (Iterator, error)
}

// Iterator should be implemented by objects that can paginate search results.
type Iterator interface {
	// Next loads the next item, returns false when no more items
	// are available or when an error occurs.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources allocated to the iterator.
	Close() error

	// Document returns the current document from the result set.
	Document() *Document

	// Score returns the relevance score of the current document.
	Score() float64

	// TotalCount returns the approximated total number of search results.
	TotalCount() uint64
}

// QueryType represents an integer value for a specific query.
type QueryType uint8

const (
	// QueryTypeMatch queries for results that match any of the terms
	// in the query expression.
	QueryTypeMatch QueryType = iota

	// QueryTypePhrase queries for results that exactly match the
	// entire query expression.
	QueryTypePhrase
)

// Query defines properties for a search query.
type Query struct {
	// Defines how the indexer interprets the search expression.
	Type QueryType
	// Value to search for.
	Expression string
	// Number of leading results to skip.
	Offset uint64
	// Weight of title matches. Zero means DefaultTitleBoost.
	TitleBoost float64
}

// Boost returns the effective title boost for q.
func (q Query) Boost() float64 {
	if q.TitleBoost <= 0 {
		return DefaultTitleBoost
	}

	return q.TitleBoost
}
