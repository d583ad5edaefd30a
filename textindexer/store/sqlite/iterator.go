package sqlite

import (
	"database/sql"

	"github.com/mycok/webscout/textindexer/index"
)

// Static and compile-time check to ensure sqliteIterator implements
// index.Iterator interface.
var _ index.Iterator = (*sqliteIterator)(nil)

type scoredDoc struct {
	doc   *index.Document
	score float64
}

// sqliteIterator reads matches in batches of batchSize rows.
type sqliteIterator struct {
	db    *sql.DB
	query string
	expr  string

	from  uint64
	total uint64

	batch    []scoredDoc
	batchIdx int

	cur     scoredDoc
	lastErr error
}

func (i *sqliteIterator) fetch() error {
	rows, err := i.db.Query(i.query, i.expr, batchSize, i.from)
	if err != nil {
		return mapError(err)
	}
	defer func() { _ = rows.Close() }()

	i.batch = i.batch[:0]
	i.batchIdx = 0

	for rows.Next() {
		var rank float64
		doc, err := scanDoc(rows.Scan, &rank)
		if err != nil {
			return err
		}

		// bm25 ranks better matches with lower, negative values.
		i.batch = append(i.batch, scoredDoc{doc: doc, score: -rank})
	}

	i.from += uint64(len(i.batch))

	return rows.Err()
}

// Next loads the next item, returns false when no more items
// are available or when an error occurs.
func (i *sqliteIterator) Next() bool {
	if i.lastErr != nil || i.db == nil {
		return false
	}

	if i.batchIdx >= len(i.batch) {
		// A short batch means the result set has been exhausted.
		if len(i.batch) < batchSize {
			return false
		}

		if i.lastErr = i.fetch(); i.lastErr != nil || len(i.batch) == 0 {
			return false
		}
	}

	i.cur = i.batch[i.batchIdx]
	i.batchIdx++

	return true
}

// Document returns the current document from the result set.
func (i *sqliteIterator) Document() *index.Document {
	return i.cur.doc
}

// Score returns the negated bm25 rank of the current document.
func (i *sqliteIterator) Score() float64 {
	return i.cur.score
}

// TotalCount returns the number of documents matching the query.
func (i *sqliteIterator) TotalCount() uint64 {
	return i.total
}

// Error returns the last error encountered by the iterator.
func (i *sqliteIterator) Error() error {
	return i.lastErr
}

// Close releases any resources allocated to the iterator.
func (i *sqliteIterator) Close() error {
	i.db = nil
	i.batch = nil

	return nil
}
