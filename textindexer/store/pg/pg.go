package pg

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mycok/webscout/textindexer/index"
)

// Static and compile-time check to ensure PostgresIndex implements Indexer.
var _ index.Indexer = (*PostgresIndex)(nil)

// Size of each page of results that is cached locally by the iterator.
const batchSize = 10

// Title terms carry weight A and content terms weight B.
var schema = `
CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY,
	url TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	retrieved_at TIMESTAMPTZ NOT NULL,
	indexed_at TIMESTAMPTZ NOT NULL,
	tsv TSVECTOR GENERATED ALWAYS AS (
		setweight(to_tsvector('english', title), 'A') ||
		setweight(to_tsvector('english', content), 'B')
	) STORED
);

CREATE INDEX IF NOT EXISTS documents_tsv_idx ON documents USING GIN (tsv);
`

var (
	upsertQuery = `
			INSERT INTO documents (id, url, title, content, retrieved_at, indexed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id)
			DO UPDATE SET url=$2, title=$3, content=$4, retrieved_at=$5, indexed_at=$6
			`

	findByIDQuery = `
			SELECT id, url, title, content, retrieved_at, indexed_at
			FROM documents WHERE id=$1
			`

	countQueryTemplate = `
			SELECT COUNT(*) FROM documents WHERE tsv @@ %s
			`

	// ts_rank weights are ordered {D, C, B, A}.
	searchQueryTemplate = `
			SELECT id, url, title, content, retrieved_at, indexed_at,
				ts_rank($2::float4[], tsv, %[1]s) AS rank
			FROM documents
			WHERE tsv @@ %[1]s
			ORDER BY rank DESC, id
			LIMIT $3 OFFSET $4
			`
)

// PostgresIndex is an Indexer implementation backed by PostgreSQL full
// text search.
type PostgresIndex struct {
	db *sql.DB
}

// NewPostgresIndex connects to the database described by dsn and makes
// sure the documents table exists.
func NewPostgresIndex(dsn string) (*PostgresIndex, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", index.ErrStoreUnavailable, err)
	}

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &PostgresIndex{db: db}, nil
}

// Name identifies the store.
func (s *PostgresIndex) Name() string { return "postgres" }

// Close terminates the connection to the database.
func (s *PostgresIndex) Close() error {
	return s.db.Close()
}

// Index adds a new document or replaces the document with the same ID.
func (s *PostgresIndex) Index(doc *index.Document) error {
	if doc.URL == "" {
		return fmt.Errorf("index: %w", index.ErrMissingURL)
	}

	id := doc.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	indexedAt := time.Now().UTC()

	_, err := s.db.Exec(
		upsertQuery,
		id, doc.URL, doc.Title, doc.Content, doc.RetrievedAt.UTC(), indexedAt,
	)
	if err != nil {
		return fmt.Errorf("index: %w", mapError(err))
	}

	doc.ID = id
	doc.IndexedAt = indexedAt

	return nil
}

// FindByID looks up a document by its ID.
func (s *PostgresIndex) FindByID(id uuid.UUID) (*index.Document, error) {
	doc := new(index.Document)

	row := s.db.QueryRow(findByIDQuery, id)
	err := row.Scan(&doc.ID, &doc.URL, &doc.Title, &doc.Content, &doc.RetrievedAt, &doc.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("find by ID: %w", mapError(err))
	}

	return doc, nil
}

// Search performs a look up based on query and returns a result
// iterator if successful or an error otherwise.
func (s *PostgresIndex) Search(q index.Query) (index.Iterator, error) {
	tsQuery, expr := tsQueryFor(q)
	if expr == "" {
		return &pgIterator{}, nil
	}

	var total uint64
	if err := s.db.QueryRow(fmt.Sprintf(countQueryTemplate, tsQuery), expr).Scan(&total); err != nil {
		return nil, fmt.Errorf("search: %w", mapError(err))
	}

	it := &pgIterator{
		db:      s.db,
		query:   fmt.Sprintf(searchQueryTemplate, tsQuery),
		expr:    expr,
		weights: pq.Array([]float64{0.1, 0.2, 1 / q.Boost(), 1.0}),
		from:    q.Offset,
		total:   total,
	}

	if err := it.fetch(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return it, nil
}

// tsQueryFor returns the tsquery constructor and its $1 argument. Match
// queries OR together sanitized terms so any of them can hit.
func tsQueryFor(q index.Query) (string, string) {
	terms := strings.FieldsFunc(q.Expression, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(terms) == 0 {
		return "", ""
	}

	if q.Type == index.QueryTypePhrase {
		return "phraseto_tsquery('english', $1)", strings.Join(terms, " ")
	}

	return "to_tsquery('english', $1)", strings.Join(terms, " | ")
}

func mapError(err error) error {
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", index.ErrStoreUnavailable, err)
	}

	return err
}
