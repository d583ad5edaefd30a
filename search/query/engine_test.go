package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/search"
	"github.com/mycok/webscout/search/query/mocks"
	"github.com/mycok/webscout/textindexer/index"
	memindex "github.com/mycok/webscout/textindexer/store/memory"
)

var _ = check.Suite(new(engineTestSuite))
var _ = check.Suite(new(engineMemoryTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type engineTestSuite struct {
	ctrl   *gomock.Controller
	idx    *mocks.MockIndex
	engine *Engine
}

func (s *engineTestSuite) SetUpTest(c *check.C) {
	s.ctrl = gomock.NewController(c)
	s.idx = mocks.NewMockIndex(s.ctrl)

	var err error
	s.engine, err = New(Config{Index: s.idx})
	c.Assert(err, check.IsNil)
}

func (s *engineTestSuite) TearDownTest(c *check.C) {
	s.ctrl.Finish()
}

func (s *engineTestSuite) TestConfigValidation(c *check.C) {
	_, err := New(Config{})
	c.Assert(err, check.ErrorMatches, "(?ms).*index API not provided.*")

	_, err = New(Config{Index: s.idx, DefaultPageSize: 50, MaxPageSize: 20})
	c.Assert(err, check.ErrorMatches, "(?ms).*exceeds max page size.*")

	_, err = New(Config{Index: s.idx, TitleBoost: -1})
	c.Assert(err, check.ErrorMatches, "(?ms).*invalid value for title boost.*")
}

func (s *engineTestSuite) TestEmptyKeywordMakesNoStoreCalls(c *check.C) {
	for _, keyword := range []string{"", "   ", `""`, `" "`} {
		_, err := s.engine.Search(keyword, 1, 10)
		c.Assert(errors.Is(err, search.ErrInvalidInput), check.Equals, true, check.Commentf("keyword %q", keyword))
	}
}

func (s *engineTestSuite) TestInvalidPageArguments(c *check.C) {
	specs := []struct{ n, size int }{
		{n: -1, size: 10},
		{n: 1, size: -1},
		{n: 1, size: 101},
	}

	for _, spec := range specs {
		_, err := s.engine.Search("gophers", spec.n, spec.size)
		c.Assert(errors.Is(err, search.ErrInvalidInput), check.Equals, true, check.Commentf("n=%d size=%d", spec.n, spec.size))
	}
}

func (s *engineTestSuite) TestQueryDefaultsAndOffset(c *check.C) {
	gomock.InOrder(
		s.expectEmptySearch(index.Query{Type: index.QueryTypeMatch, Expression: "gophers", TitleBoost: 2}, 0),
		s.expectEmptySearch(index.Query{Type: index.QueryTypeMatch, Expression: "gophers", Offset: 20, TitleBoost: 2}, 25),
	)

	page, err := s.engine.Search(" gophers ", 0, 0)
	c.Assert(err, check.IsNil)
	c.Assert(page.Number, check.Equals, 1)
	c.Assert(page.Size, check.Equals, 10)
	c.Assert(page.Items, check.HasLen, 0)

	page, err = s.engine.Search("gophers", 3, 10)
	c.Assert(err, check.IsNil)
	c.Assert(page.Total, check.Equals, uint64(25))
	c.Assert(page.HasPrevious, check.Equals, true)
	c.Assert(page.HasNext, check.Equals, false)
}

func (s *engineTestSuite) TestQuotedKeywordIsPhraseQuery(c *check.C) {
	s.expectEmptySearch(index.Query{Type: index.QueryTypePhrase, Expression: "gopher news", TitleBoost: 2}, 0)

	_, err := s.engine.Search(`"gopher news"`, 1, 10)
	c.Assert(err, check.IsNil)
}

func (s *engineTestSuite) TestReadsAtMostOnePage(c *check.C) {
	it := mocks.NewMockIterator(s.ctrl)
	it.EXPECT().Next().Return(true).Times(2)
	it.EXPECT().Document().Return(&index.Document{URL: "https://example.com/a", Title: "A", Content: "gophers"}).Times(2)
	it.EXPECT().Score().Return(1.5).Times(2)
	it.EXPECT().Error().Return(nil)
	it.EXPECT().TotalCount().Return(uint64(40))
	it.EXPECT().Close().Return(nil)

	s.idx.EXPECT().Name().Return("memory")
	s.idx.EXPECT().Search(gomock.Any()).Return(it, nil)

	page, err := s.engine.Search("gophers", 1, 2)
	c.Assert(err, check.IsNil)
	c.Assert(page.Items, check.HasLen, 2)
	c.Assert(page.HasNext, check.Equals, true)
	c.Assert(page.Items[0], check.DeepEquals, search.Result{
		Engine:  "memory",
		Title:   "A",
		Link:    "https://example.com/a",
		Host:    "example.com",
		Score:   1.5,
		Summary: "<em>gophers</em>.",
	})
}

func (s *engineTestSuite) TestStoreUnavailable(c *check.C) {
	s.idx.EXPECT().Search(gomock.Any()).Return(nil, fmt.Errorf("search: %w", index.ErrStoreUnavailable))

	_, err := s.engine.Search("gophers", 1, 10)
	c.Assert(errors.Is(err, index.ErrStoreUnavailable), check.Equals, true)
}

func (s *engineTestSuite) TestIteratorErrorPropagates(c *check.C) {
	it := mocks.NewMockIterator(s.ctrl)
	it.EXPECT().Next().Return(false)
	it.EXPECT().Error().Return(index.ErrStoreUnavailable)
	it.EXPECT().Close().Return(nil)

	s.idx.EXPECT().Name().Return("memory")
	s.idx.EXPECT().Search(gomock.Any()).Return(it, nil)

	_, err := s.engine.Search("gophers", 1, 10)
	c.Assert(errors.Is(err, index.ErrStoreUnavailable), check.Equals, true)
}

func (s *engineTestSuite) expectEmptySearch(q index.Query, total uint64) *gomock.Call {
	it := mocks.NewMockIterator(s.ctrl)
	it.EXPECT().Next().Return(false)
	it.EXPECT().Error().Return(nil)
	it.EXPECT().TotalCount().Return(total)
	it.EXPECT().Close().Return(nil)

	s.idx.EXPECT().Name().Return("memory")

	return s.idx.EXPECT().Search(q).Return(it, nil)
}

type engineMemoryTestSuite struct {
	idx    *memindex.InMemoryIndex
	engine *Engine
}

func (s *engineMemoryTestSuite) SetUpTest(c *check.C) {
	var err error
	s.idx, err = memindex.NewInMemoryIndex()
	c.Assert(err, check.IsNil)

	s.engine, err = New(Config{Index: s.idx})
	c.Assert(err, check.IsNil)
}

func (s *engineMemoryTestSuite) TearDownTest(c *check.C) {
	c.Assert(s.idx.Close(), check.IsNil)
}

func (s *engineMemoryTestSuite) TestPagesCoverAllMatches(c *check.C) {
	const numDocs = 25
	for i := 0; i < numDocs; i++ {
		c.Assert(s.idx.Index(&index.Document{
			URL:     fmt.Sprintf("https://news.example.com/%d", i),
			Title:   fmt.Sprintf("story %d", i),
			Content: "Gophers were seen digging near the river.",
		}), check.IsNil)
	}
	c.Assert(s.idx.Index(&index.Document{URL: "https://other.example.com", Content: "Nothing to see."}), check.IsNil)

	seen := make(map[string]bool)
	for n := 1; ; n++ {
		page, err := s.engine.Search("gophers", n, 10)
		c.Assert(err, check.IsNil)
		c.Assert(page.Total, check.Equals, uint64(numDocs))

		for _, res := range page.Items {
			c.Assert(seen[res.Link], check.Equals, false, check.Commentf("duplicate result %s", res.Link))
			seen[res.Link] = true
			c.Assert(res.Engine, check.Equals, "memory")
			c.Assert(res.Host, check.Equals, "news.example.com")
			c.Assert(res.Summary, check.Equals, "<em>Gophers</em> were seen digging near the river.")
		}

		if !page.HasNext {
			c.Assert(n, check.Equals, 3)
			c.Assert(page.Items, check.HasLen, 5)
			break
		}
	}
	c.Assert(seen, check.HasLen, numDocs)

	page, err := s.engine.Search("gophers", 99, 10)
	c.Assert(err, check.IsNil)
	c.Assert(page.Items, check.HasLen, 0)
	c.Assert(page.HasNext, check.Equals, false)
	c.Assert(page.HasPrevious, check.Equals, true)
}

func (s *engineMemoryTestSuite) TestTitleMatchesRankFirst(c *check.C) {
	c.Assert(s.idx.Index(&index.Document{
		URL:     "https://example.com/content",
		Title:   "Animals",
		Content: "The gopher is a small burrowing rodent.",
	}), check.IsNil)
	c.Assert(s.idx.Index(&index.Document{
		URL:     "https://example.com/title",
		Title:   "Gopher",
		Content: "A small burrowing rodent.",
	}), check.IsNil)

	page, err := s.engine.Search("gopher", 1, 10)
	c.Assert(err, check.IsNil)
	c.Assert(page.Items, check.HasLen, 2)
	c.Assert(page.Items[0].Link, check.Equals, "https://example.com/title")
}

func (s *engineMemoryTestSuite) TestUntitledDocumentsShowTheirURL(c *check.C) {
	c.Assert(s.idx.Index(&index.Document{URL: "https://example.com/x", Content: "gophers"}), check.IsNil)

	page, err := s.engine.Search("gophers", 1, 10)
	c.Assert(err, check.IsNil)
	c.Assert(page.Items, check.HasLen, 1)
	c.Assert(page.Items[0].Title, check.Equals, "https://example.com/x")
}
