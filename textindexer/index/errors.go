package index

import "errors"

var (
	// ErrNotFound is returned by the indexer when it attempts to look up
	// a document that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingURL is returned when an indexer attempts to index a document
	// without a source URL.
	ErrMissingURL = errors.New("document has missing url")

	// ErrStoreUnavailable is wrapped by indexers whenever the backing store
	// cannot be reached.
	ErrStoreUnavailable = errors.New("document store unavailable")
)
