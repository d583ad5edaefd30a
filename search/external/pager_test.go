package external

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/search"
)

var _ = check.Suite(new(pagerTestSuite))

type pagerTestSuite struct {
	fakeProcess
}

func (s *pagerTestSuite) TestPagesAreServedFromTheLastResultSet(c *check.C) {
	var sb strings.Builder
	sb.WriteString(`{"results":{"bing":[`)
	for i := 0; i < 25; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"title":"r%d","link":"https://example.com/%d","host":"example.com"}`, i, i)
	}
	sb.WriteString(`]}}`)

	fixture := s.writeFixture(c, sb.String())
	runs := filepath.Join(s.dir, "runs")
	agg := s.newAggregator(c, Config{
		Command: s.fakeSearch(c, fmt.Sprintf("echo run >> %q\ncp %q \"$out.json\"", runs, fixture)),
	})
	pager := NewPager(agg, Request{Engine: "bing"})

	page, err := pager.Page(context.TODO(), "gophers", 1, 10)
	c.Assert(err, check.IsNil)
	c.Assert(page.Items, check.HasLen, 10)
	c.Assert(page.Query, check.Equals, "gophers")
	c.Assert(page.HasNext, check.Equals, true)
	c.Assert(page.HasPrevious, check.Equals, false)

	page, err = pager.Page(context.TODO(), "gophers", 3, 10)
	c.Assert(err, check.IsNil)
	c.Assert(page.Items, check.HasLen, 5)
	c.Assert(page.Items[0].Title, check.Equals, "r20")
	c.Assert(page.HasNext, check.Equals, false)

	c.Assert(countRuns(c, runs), check.Equals, 1)

	// A different keyword starts a new search.
	_, err = pager.Page(context.TODO(), "rabbits", 1, 10)
	c.Assert(err, check.IsNil)
	c.Assert(countRuns(c, runs), check.Equals, 2)
}

func (s *pagerTestSuite) TestFailuresAreNotCached(c *check.C) {
	agg := s.newAggregator(c, Config{Command: s.fakeSearch(c, "exit 1")})
	pager := NewPager(agg, Request{})

	_, err := pager.Page(context.TODO(), "gophers", 1, 10)
	c.Assert(errors.Is(err, ErrProcessFailure), check.Equals, true)
	_, err = pager.Page(context.TODO(), "gophers", 1, 10)
	c.Assert(errors.Is(err, ErrProcessFailure), check.Equals, true)
}

func (s *pagerTestSuite) TestInvalidPageArguments(c *check.C) {
	agg := s.newAggregator(c, Config{Command: s.fakeSearch(c, "exit 1")})
	pager := NewPager(agg, Request{})

	_, err := pager.Page(context.TODO(), "gophers", -1, 10)
	c.Assert(errors.Is(err, search.ErrInvalidInput), check.Equals, true)
	_, err = pager.Page(context.TODO(), "gophers", 1, -1)
	c.Assert(errors.Is(err, search.ErrInvalidInput), check.Equals, true)
}

func (s *pagerTestSuite) TestZeroSizeSelectsDefaultPageSize(c *check.C) {
	var sb strings.Builder
	sb.WriteString(`{"results":{"bing":[`)
	for i := 0; i < 15; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"title":"r%d","link":"https://example.com/%d","host":"example.com"}`, i, i)
	}
	sb.WriteString(`]}}`)

	fixture := s.writeFixture(c, sb.String())
	agg := s.newAggregator(c, Config{Command: s.fakeSearch(c, fmt.Sprintf("cp %q \"$out.json\"", fixture))})
	pager := NewPager(agg, Request{})

	page, err := pager.Search(context.TODO(), Request{Keyword: "gophers"}, 0, 0)
	c.Assert(err, check.IsNil)
	c.Assert(page.Number, check.Equals, 1)
	c.Assert(page.Size, check.Equals, 10)
	c.Assert(page.Items, check.HasLen, 10)
	c.Assert(page.HasNext, check.Equals, true)
}

func (s *pagerTestSuite) TestDifferentKeywordsSearchConcurrently(c *check.C) {
	fixture := s.writeFixture(c, `{"results":{"bing":[{"title":"t","link":"https://example.com/","host":"example.com"}]}}`)
	agg := s.newAggregator(c, Config{
		Command: s.fakeSearch(c, fmt.Sprintf("if [ \"$query\" = slow ]; then sleep 2; fi\ncp %q \"$out.json\"", fixture)),
	})
	pager := NewPager(agg, Request{})

	slowDone := make(chan error, 1)
	go func() {
		_, err := pager.Page(context.TODO(), "slow", 1, 10)
		slowDone <- err
	}()
	// Let the slow search start before issuing the fast one.
	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	page, err := pager.Page(context.TODO(), "fast", 1, 10)
	elapsed := time.Since(start)
	c.Assert(err, check.IsNil)
	c.Assert(page.Items, check.HasLen, 1)
	c.Assert(elapsed < time.Second, check.Equals, true, check.Commentf("fast search took %s", elapsed))

	c.Assert(<-slowDone, check.IsNil)
}

func (s *pagerTestSuite) TestIdenticalRequestsShareOneSearch(c *check.C) {
	fixture := s.writeFixture(c, `{"results":{"bing":[{"title":"t","link":"https://example.com/","host":"example.com"}]}}`)
	runs := filepath.Join(s.dir, "runs")
	agg := s.newAggregator(c, Config{
		Command: s.fakeSearch(c, fmt.Sprintf("echo run >> %q\nsleep 1\ncp %q \"$out.json\"", runs, fixture)),
	})
	pager := NewPager(agg, Request{})

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pager.Page(context.TODO(), "gophers", 1, 10)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		c.Assert(err, check.IsNil)
	}
	c.Assert(countRuns(c, runs), check.Equals, 1)
}

func (s *pagerTestSuite) TestCallerCancellationDoesNotFailSharedSearch(c *check.C) {
	fixture := s.writeFixture(c, `{"results":{"bing":[{"title":"t","link":"https://example.com/","host":"example.com"}]}}`)
	agg := s.newAggregator(c, Config{
		Command: s.fakeSearch(c, fmt.Sprintf("sleep 1\ncp %q \"$out.json\"", fixture)),
	})
	pager := NewPager(agg, Request{})

	ctx, cancelFn := context.WithTimeout(context.TODO(), 100*time.Millisecond)
	defer cancelFn()

	waiterDone := make(chan error, 1)
	go func() {
		_, err := pager.Page(context.TODO(), "gophers", 1, 10)
		waiterDone <- err
	}()

	_, err := pager.Page(ctx, "gophers", 1, 10)
	c.Assert(errors.Is(err, context.DeadlineExceeded), check.Equals, true)

	c.Assert(<-waiterDone, check.IsNil)
}

func countRuns(c *check.C, path string) int {
	data, err := os.ReadFile(path)
	c.Assert(err, check.IsNil)

	return strings.Count(string(data), "run")
}
