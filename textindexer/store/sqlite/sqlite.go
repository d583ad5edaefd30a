package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mycok/webscout/textindexer/index"
)

// Static and compile-time check to ensure SQLiteIndex implements Indexer.
var _ index.Indexer = (*SQLiteIndex)(nil)

// Size of each page of results that is cached locally by the iterator.
const batchSize = 10

// The fts table mirrors title and content of the documents table through
// triggers so that the row data is stored once.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	seq INTEGER PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	url TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	retrieved_at TEXT NOT NULL,
	indexed_at TEXT NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
	title, content, content='documents', content_rowid='seq'
);

CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
	INSERT INTO documents_fts(rowid, title, content) VALUES (new.seq, new.title, new.content);
END;

CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
	INSERT INTO documents_fts(documents_fts, rowid, title, content) VALUES ('delete', old.seq, old.title, old.content);
END;

CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
	INSERT INTO documents_fts(documents_fts, rowid, title, content) VALUES ('delete', old.seq, old.title, old.content);
	INSERT INTO documents_fts(rowid, title, content) VALUES (new.seq, new.title, new.content);
END;
`

const (
	upsertQuery = `
INSERT INTO documents (id, url, title, content, retrieved_at, indexed_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	url = excluded.url,
	title = excluded.title,
	content = excluded.content,
	retrieved_at = excluded.retrieved_at,
	indexed_at = excluded.indexed_at`

	findByIDQuery = `
SELECT id, url, title, content, retrieved_at, indexed_at FROM documents WHERE id = ?`

	countQuery = `
SELECT COUNT(*) FROM documents_fts WHERE documents_fts MATCH ?`

	// The bm25 weights are formatted into the statement because fts5
	// auxiliary functions only accept them as literal arguments.
	searchQueryTemplate = `
SELECT d.id, d.url, d.title, d.content, d.retrieved_at, d.indexed_at,
	bm25(documents_fts, %g, 1.0) AS rank
FROM documents_fts
JOIN documents d ON d.seq = documents_fts.rowid
WHERE documents_fts MATCH ?
ORDER BY rank, d.id
LIMIT ? OFFSET ?`
)

// SQLiteIndex is an Indexer implementation that stores documents in a
// SQLite database and searches them through an FTS5 table.
type SQLiteIndex struct {
	db *sql.DB
}

// NewSQLiteIndex opens or creates the database file at path.
func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteIndex{db: db}, nil
}

// Name identifies the store.
func (s *SQLiteIndex) Name() string { return "sqlite" }

// Close releases the database handle.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// Index adds a new document or replaces the document with the same ID.
func (s *SQLiteIndex) Index(doc *index.Document) error {
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
		id.String(), doc.URL, doc.Title, doc.Content,
		formatTime(doc.RetrievedAt), formatTime(indexedAt),
	)
	if err != nil {
		return fmt.Errorf("index: %w", mapError(err))
	}

	doc.ID = id
	doc.IndexedAt = indexedAt

	return nil
}

// FindByID looks up a document by its ID.
func (s *SQLiteIndex) FindByID(id uuid.UUID) (*index.Document, error) {
	row := s.db.QueryRow(findByIDQuery, id.String())

	doc, err := scanDoc(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("find by ID: %w", mapError(err))
	}

	return doc, nil
}

// Search performs a look up based on query and returns a result
// iterator if successful or an error otherwise.
func (s *SQLiteIndex) Search(q index.Query) (index.Iterator, error) {
	expr := matchExpression(q)
	if expr == "" {
		return &sqliteIterator{}, nil
	}

	var total uint64
	if err := s.db.QueryRow(countQuery, expr).Scan(&total); err != nil {
		return nil, fmt.Errorf("search: %w", mapError(err))
	}

	it := &sqliteIterator{
		db:    s.db,
		query: fmt.Sprintf(searchQueryTemplate, q.Boost()),
		expr:  expr,
		from:  q.Offset,
		total: total,
	}

	if err := it.fetch(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return it, nil
}

// matchExpression turns the query into an fts5 MATCH expression. Terms are
// quoted so user input can never be parsed as fts5 syntax.
func matchExpression(q index.Query) string {
	terms := strings.FieldsFunc(q.Expression, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(terms) == 0 {
		return ""
	}

	if q.Type == index.QueryTypePhrase {
		return `"` + strings.Join(terms, " ") + `"`
	}

	for i, t := range terms {
		terms[i] = `"` + t + `"`
	}

	return strings.Join(terms, " OR ")
}

func scanDoc(scan func(dest ...interface{}) error, extra ...interface{}) (*index.Document, error) {
	var (
		id, retrievedAt, indexedAt string
		doc                        index.Document
	)

	dest := append([]interface{}{
		&id, &doc.URL, &doc.Title, &doc.Content, &retrievedAt, &indexedAt,
	}, extra...)
	if err := scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if doc.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if doc.RetrievedAt, err = time.Parse(time.RFC3339Nano, retrievedAt); err != nil {
		return nil, err
	}
	if doc.IndexedAt, err = time.Parse(time.RFC3339Nano, indexedAt); err != nil {
		return nil, err
	}

	return &doc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%w: %v", index.ErrStoreUnavailable, err)
	}

	return err
}
