package pg

import (
	"database/sql"
	"database/sql/driver"

	"github.com/mycok/webscout/textindexer/index"
)

// Static and compile-time check to ensure pgIterator implements
// index.Iterator interface.
var _ index.Iterator = (*pgIterator)(nil)

type scoredDoc struct {
	doc   *index.Document
	score float64
}

// pgIterator reads ranked matches in batches of batchSize rows.
type pgIterator struct {
	db      *sql.DB
	query   string
	expr    string
	weights driver.Valuer

	from  uint64
	total uint64

	batch    []scoredDoc
	batchIdx int

	cur     scoredDoc
	lastErr error
}

func (i *pgIterator) fetch() error {
	rows, err := i.db.Query(i.query, i.expr, i.weights, batchSize, i.from)
	if err != nil {
		return mapError(err)
	}
	defer func() { _ = rows.Close() }()

	i.batch = i.batch[:0]
	i.batchIdx = 0

	for rows.Next() {
		var sd scoredDoc
		sd.doc = new(index.Document)
		if err := rows.Scan(
			&sd.doc.ID, &sd.doc.URL, &sd.doc.Title, &sd.doc.Content,
			&sd.doc.RetrievedAt, &sd.doc.IndexedAt, &sd.score,
		); err != nil {
			return err
		}

		i.batch = append(i.batch, sd)
	}

	i.from += uint64(len(i.batch))

	return rows.Err()
}

// Next loads the next item, returns false when no more items
// are available or when an error occurs.
func (i *pgIterator) Next() bool {
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
func (i *pgIterator) Document() *index.Document {
	return i.cur.doc
}

// Score returns the ts_rank value of the current document.
func (i *pgIterator) Score() float64 {
	return i.cur.score
}

// TotalCount returns the number of documents matching the query.
func (i *pgIterator) TotalCount() uint64 {
	return i.total
}

// Error returns the last error encountered by the iterator.
func (i *pgIterator) Error() error {
	return i.lastErr
}

// Close releases any resources allocated to the iterator.
func (i *pgIterator) Close() error {
	i.db = nil
	i.batch = nil

	return nil
}
