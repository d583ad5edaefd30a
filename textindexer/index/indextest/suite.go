package indextest

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/textindexer/index"
)

// BaseSuite defines a set of re-usable index related tests that can
// be executed against any concrete type that implements the index.Indexer interface.
type BaseSuite struct {
	idx index.Indexer
}

// SetIndex sets BaseSuite's index field.
func (s *BaseSuite) SetIndex(index index.Indexer) {
	s.idx = index
}

// TestIndexAssignsID verifies that the store assigns an ID to documents
// indexed without one and that every stored field survives a lookup.
func (s *BaseSuite) TestIndexAssignsID(c *check.C) {
	doc := &index.Document{
		URL:         "https://example.com",
		Title:       "test document title",
		Content:     "This should be the body text of the document",
		RetrievedAt: time.Now().Add(-12 * time.Hour).UTC().Truncate(time.Millisecond),
	}

	err := s.idx.Index(doc)
	c.Assert(err, check.IsNil, check.Commentf("++++Index insert++++: %v", err))
	c.Assert(doc.ID, check.Not(check.Equals), uuid.Nil)
	c.Assert(doc.IndexedAt.IsZero(), check.Equals, false)

	got, err := s.idx.FindByID(doc.ID)
	c.Assert(err, check.IsNil)
	assertSameDoc(c, got, doc)
}

// TestIndexReplacesDocumentWithSameID verifies that supplying an existing
// ID replaces the stored document.
func (s *BaseSuite) TestIndexReplacesDocumentWithSameID(c *check.C) {
	doc := &index.Document{
		URL:         "https://example.com",
		Title:       "test document title",
		Content:     "This should be the body text of the document",
		RetrievedAt: time.Now().Add(-12 * time.Hour).UTC().Truncate(time.Millisecond),
	}
	c.Assert(s.idx.Index(doc), check.IsNil)

	updated := &index.Document{
		ID:          doc.ID,
		URL:         doc.URL,
		Title:       "This is an updated document title",
		Content:     "This is an updated document body",
		RetrievedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	c.Assert(s.idx.Index(updated), check.IsNil)

	got, err := s.idx.FindByID(doc.ID)
	c.Assert(err, check.IsNil)
	assertSameDoc(c, got, updated)
}

// TestIndexSameURLTwice verifies that two writes for one URL without an ID
// produce two distinct documents.
func (s *BaseSuite) TestIndexSameURLTwice(c *check.C) {
	first := &index.Document{URL: "https://example.com/a", Title: "first", Content: "duplicate body"}
	second := &index.Document{URL: "https://example.com/a", Title: "second", Content: "duplicate body"}

	c.Assert(s.idx.Index(first), check.IsNil)
	c.Assert(s.idx.Index(second), check.IsNil)
	c.Assert(first.ID, check.Not(check.Equals), second.ID)

	it, err := s.idx.Search(index.Query{Type: index.QueryTypeMatch, Expression: "duplicate"})
	c.Assert(err, check.IsNil)
	c.Assert(iterateDocs(c, it), check.HasLen, 2)
}

// TestIndexMissingURL verifies that documents without a URL are rejected.
func (s *BaseSuite) TestIndexMissingURL(c *check.C) {
	err := s.idx.Index(&index.Document{Title: "no url"})
	c.Assert(errors.Is(err, index.ErrMissingURL), check.Equals, true, check.Commentf("got: %v", err))
}

// TestFindByID verifies the document lookup logic.
func (s *BaseSuite) TestFindByID(c *check.C) {
	doc := &index.Document{
		ID:          uuid.New(),
		URL:         "https://example.com",
		Title:       "test document title",
		Content:     "This should be the body text of the document",
		RetrievedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	c.Assert(s.idx.Index(doc), check.IsNil)

	got, err := s.idx.FindByID(doc.ID)
	c.Assert(err, check.IsNil)
	assertSameDoc(c, got, doc)

	_, err = s.idx.FindByID(uuid.New())
	c.Assert(errors.Is(err, index.ErrNotFound), check.Equals, true)
}

// TestPhraseSearch verifies the document search logic when searching for
// exact phrases.
func (s *BaseSuite) TestPhraseSearch(c *check.C) {
	var expected []uuid.UUID
	for i := 0; i < 50; i++ {
		doc := &index.Document{
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Title:   fmt.Sprintf("doc number %d", i),
			Content: "This should be the body text of the document",
		}
		if i%5 == 0 {
			doc.Content = "Updated Document Body"
		} else if i%5 == 1 {
			doc.Content = "Body of an updated document"
		}

		c.Assert(s.idx.Index(doc), check.IsNil)
		if i%5 == 0 {
			expected = append(expected, doc.ID)
		}
	}

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypePhrase,
		Expression: "updated document body",
	})
	c.Assert(err, check.IsNil)
	c.Assert(it.TotalCount(), check.Equals, uint64(len(expected)))
	c.Assert(iterateDocs(c, it), check.HasLen, len(expected))
}

// TestMatchSearch verifies the document search logic when searching for
// keyword matches.
func (s *BaseSuite) TestMatchSearch(c *check.C) {
	expected := make(map[uuid.UUID]bool)
	for i := 0; i < 50; i++ {
		doc := &index.Document{
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Title:   fmt.Sprintf("doc number %d", i),
			Content: "This should be the body text of the document",
		}
		if i%5 == 0 {
			doc.Content = "Updated Document Body"
		}

		c.Assert(s.idx.Index(doc), check.IsNil)
		if i%5 == 0 {
			expected[doc.ID] = true
		}
	}

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "updated",
	})
	c.Assert(err, check.IsNil)

	got := iterateDocs(c, it)
	c.Assert(got, check.HasLen, len(expected))
	for _, id := range got {
		c.Assert(expected[id], check.Equals, true)
	}
}

// TestMatchSearchAnyTerm verifies that a match query returns documents
// containing any of the query terms.
func (s *BaseSuite) TestMatchSearchAnyTerm(c *check.C) {
	docs := []*index.Document{
		{URL: "https://example.com/1", Title: "gophers", Content: "all about gophers"},
		{URL: "https://example.com/2", Title: "crabs", Content: "all about crabs"},
		{URL: "https://example.com/3", Title: "snakes", Content: "all about snakes"},
	}
	for _, doc := range docs {
		c.Assert(s.idx.Index(doc), check.IsNil)
	}

	it, err := s.idx.Search(index.Query{Type: index.QueryTypeMatch, Expression: "gophers crabs"})
	c.Assert(err, check.IsNil)
	c.Assert(iterateDocs(c, it), check.HasLen, 2)
}

// TestMatchSearchWithOffset verifies the document search logic when
// skipping some results.
func (s *BaseSuite) TestMatchSearchWithOffset(c *check.C) {
	for i := 0; i < 50; i++ {
		doc := &index.Document{
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Title:   fmt.Sprintf("doc number %d", i),
			Content: "This should be the body text of the document",
		}
		c.Assert(s.idx.Index(doc), check.IsNil)
	}

	it, err := s.idx.Search(index.Query{Type: index.QueryTypeMatch, Expression: "body"})
	c.Assert(err, check.IsNil)
	all := iterateDocs(c, it)
	c.Assert(all, check.HasLen, 50)

	it, err = s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "body",
		Offset:     20,
	})
	c.Assert(err, check.IsNil)
	c.Assert(it.TotalCount(), check.Equals, uint64(50))
	c.Assert(iterateDocs(c, it), check.DeepEquals, all[20:])

	// Search with offset above the total number of results.
	it, err = s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "body",
		Offset:     200,
	})
	c.Assert(err, check.IsNil)
	c.Assert(iterateDocs(c, it), check.HasLen, 0)
}

// TestTitleBoost verifies that a term in the title outranks the same term
// in the content.
func (s *BaseSuite) TestTitleBoost(c *check.C) {
	inContent := &index.Document{
		URL:     "https://example.com/content",
		Title:   "programming tutorial",
		Content: "learn golang basics here",
	}
	inTitle := &index.Document{
		URL:     "https://example.com/title",
		Title:   "golang tutorial",
		Content: "learn programming basics here",
	}
	c.Assert(s.idx.Index(inContent), check.IsNil)
	c.Assert(s.idx.Index(inTitle), check.IsNil)

	it, err := s.idx.Search(index.Query{Type: index.QueryTypeMatch, Expression: "golang"})
	c.Assert(err, check.IsNil)

	var scores []float64
	var ids []uuid.UUID
	for it.Next() {
		ids = append(ids, it.Document().ID)
		scores = append(scores, it.Score())
	}
	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)

	c.Assert(ids, check.DeepEquals, []uuid.UUID{inTitle.ID, inContent.ID})
	c.Assert(scores[0] > scores[1], check.Equals, true, check.Commentf("scores: %v", scores))
}

// TestSearchNoMatches verifies that a query without hits yields an empty
// iterator rather than an error.
func (s *BaseSuite) TestSearchNoMatches(c *check.C) {
	c.Assert(s.idx.Index(&index.Document{URL: "https://example.com", Title: "alpha", Content: "beta"}), check.IsNil)

	it, err := s.idx.Search(index.Query{Type: index.QueryTypeMatch, Expression: "gamma"})
	c.Assert(err, check.IsNil)
	c.Assert(it.TotalCount(), check.Equals, uint64(0))
	c.Assert(iterateDocs(c, it), check.HasLen, 0)
}

func assertSameDoc(c *check.C, got, want *index.Document) {
	c.Assert(got.ID, check.Equals, want.ID)
	c.Assert(got.URL, check.Equals, want.URL)
	c.Assert(got.Title, check.Equals, want.Title)
	c.Assert(got.Content, check.Equals, want.Content)
	c.Assert(got.RetrievedAt.Equal(want.RetrievedAt), check.Equals, true,
		check.Commentf("retrieved at: got %v, want %v", got.RetrievedAt, want.RetrievedAt))
	c.Assert(got.IndexedAt.IsZero(), check.Equals, false)
}

func iterateDocs(c *check.C, it index.Iterator) []uuid.UUID {
	var docIDs []uuid.UUID
	for it.Next() {
		docIDs = append(docIDs, it.Document().ID)
	}

	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)

	return docIDs
}
