package search_test

import (
	"context"
	"errors"
	"time"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/search"
	"github.com/mycok/webscout/search/mocks"
)

var _ = check.Suite(new(sessionTestSuite))

type sessionTestSuite struct {
	ctrl  *gomock.Controller
	pager *mocks.MockPager
}

func (s *sessionTestSuite) SetUpTest(c *check.C) {
	s.ctrl = gomock.NewController(c)
	s.pager = mocks.NewMockPager(s.ctrl)
}

func (s *sessionTestSuite) TearDownTest(c *check.C) {
	s.ctrl.Finish()
}

func (s *sessionTestSuite) TestNavigation(c *check.C) {
	first := &search.Page{Number: 1, Size: 2, HasNext: true}
	second := &search.Page{Number: 2, Size: 2, HasPrevious: true}

	gomock.InOrder(
		s.pager.EXPECT().Page(gomock.Any(), "gophers", 1, 2).Return(first, nil),
		s.pager.EXPECT().Page(gomock.Any(), "gophers", 2, 2).Return(second, nil),
		s.pager.EXPECT().Page(gomock.Any(), "gophers", 1, 2).Return(first, nil),
	)

	sess := search.NewSession(s.pager, 2)
	c.Assert(sess.Current(), check.IsNil)

	page, err := sess.Search(context.TODO(), "  gophers ")
	c.Assert(err, check.IsNil)
	c.Assert(page, check.Equals, first)

	// On the first page there is nothing before it.
	page, err = sess.Previous(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(page, check.Equals, first)

	page, err = sess.Next(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(page, check.Equals, second)

	// On the last page there is nothing after it.
	page, err = sess.Next(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(page, check.Equals, second)

	page, err = sess.Previous(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(page, check.Equals, first)
	c.Assert(sess.Current(), check.Equals, first)
}

func (s *sessionTestSuite) TestEmptyKeyword(c *check.C) {
	sess := search.NewSession(s.pager, 10)

	_, err := sess.Search(context.TODO(), "   ")
	c.Assert(errors.Is(err, search.ErrInvalidInput), check.Equals, true)
}

func (s *sessionTestSuite) TestNavigationWithoutQuery(c *check.C) {
	sess := search.NewSession(s.pager, 10)

	_, err := sess.Next(context.TODO())
	c.Assert(errors.Is(err, search.ErrInvalidInput), check.Equals, true)
	_, err = sess.Previous(context.TODO())
	c.Assert(errors.Is(err, search.ErrInvalidInput), check.Equals, true)
}

func (s *sessionTestSuite) TestFailedSearchKeepsCurrentPage(c *check.C) {
	first := &search.Page{Number: 1, Size: 10}
	errStore := errors.New("store down")

	gomock.InOrder(
		s.pager.EXPECT().Page(gomock.Any(), "a", 1, 10).Return(first, nil),
		s.pager.EXPECT().Page(gomock.Any(), "b", 1, 10).Return(nil, errStore),
	)

	sess := search.NewSession(s.pager, 10)
	_, err := sess.Search(context.TODO(), "a")
	c.Assert(err, check.IsNil)

	_, err = sess.Search(context.TODO(), "b")
	c.Assert(err, check.Equals, errStore)
	c.Assert(sess.Current(), check.Equals, first)
}

func (s *sessionTestSuite) TestConcurrentCallFailsFast(c *check.C) {
	entered := make(chan struct{})
	release := make(chan struct{})
	page := &search.Page{Number: 1, Size: 10}

	s.pager.EXPECT().Page(gomock.Any(), "slow", 1, 10).DoAndReturn(
		func(context.Context, string, int, int) (*search.Page, error) {
			close(entered)
			<-release
			return page, nil
		},
	)

	sess := search.NewSession(s.pager, 10)
	outcome := sess.Go(context.TODO(), func(ctx context.Context) (*search.Page, error) {
		return sess.Search(ctx, "slow")
	})

	select {
	case <-entered:
	case <-time.After(10 * time.Second):
		c.Fatal("search did not start")
	}

	_, err := sess.Search(context.TODO(), "other")
	c.Assert(err, check.Equals, search.ErrBusy)

	close(release)
	select {
	case res := <-outcome:
		c.Assert(res.Err, check.IsNil)
		c.Assert(res.Page, check.Equals, page)
	case <-time.After(10 * time.Second):
		c.Fatal("search did not complete")
	}
}
