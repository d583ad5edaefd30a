package crawler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/juju/clock/testclock"
	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/crawler/mocks"
)

var _ = check.Suite(new(linkFetcherTestSuite))

type linkFetcherTestSuite struct {
	urlGetter   *mocks.MockURLGetter
	netDetector *mocks.MockPrivateNetworkDetector
	politeness  *mocks.MockPoliteness
	clock       *testclock.Clock
}

func (s *linkFetcherTestSuite) SetUpTest(c *check.C) {
	ctrl := gomock.NewController(c)

	s.urlGetter = mocks.NewMockURLGetter(ctrl)
	s.netDetector = mocks.NewMockPrivateNetworkDetector(ctrl)
	s.politeness = mocks.NewMockPoliteness(ctrl)
	s.clock = testclock.NewClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
}

func (s *linkFetcherTestSuite) TestSkipsNonHTMLExtensions(c *check.C) {
	payload, rb := s.fetchLink(c, "http://example.com/bar.jpg")
	c.Assert(payload, check.IsNil)
	assertSkipped(c, rb, ErrFetch)
}

func (s *linkFetcherTestSuite) TestSkipsInvalidURLs(c *check.C) {
	payload, rb := s.fetchLink(c, "example.com/index.html")
	c.Assert(payload, check.IsNil)
	assertSkipped(c, rb, ErrFetch)
}

func (s *linkFetcherTestSuite) TestSkipsPrivateNetworks(c *check.C) {
	s.netDetector.EXPECT().IsNetworkPrivate("169.254.169.254").Return(true, nil)

	payload, rb := s.fetchLink(c, "http://169.254.169.254/latest/meta-data")
	c.Assert(payload, check.IsNil)
	assertSkipped(c, rb, ErrFetch)
}

func (s *linkFetcherTestSuite) TestSkipsRobotsDisallowedPages(c *check.C) {
	s.netDetector.EXPECT().IsNetworkPrivate("example.com").Return(false, nil)
	s.politeness.EXPECT().Allowed(gomock.Any(), gomock.Any()).Return(false, nil)

	payload, rb := s.fetchLink(c, "http://example.com/private")
	c.Assert(payload, check.IsNil)
	assertSkipped(c, rb, ErrFetch)
	assertSkipped(c, rb, ErrDisallowed)
}

func (s *linkFetcherTestSuite) TestSkipsNonSuccessStatus(c *check.C) {
	s.expectReachable("example.com")
	s.urlGetter.EXPECT().Do(gomock.Any()).Return(makeResponse(500, "text/html", "oops"), nil)

	payload, rb := s.fetchLink(c, "http://example.com/index.html")
	c.Assert(payload, check.IsNil)
	assertSkipped(c, rb, ErrFetch)
}

func (s *linkFetcherTestSuite) TestSkipsNonHTMLContentType(c *check.C) {
	s.expectReachable("example.com")
	s.urlGetter.EXPECT().Do(gomock.Any()).Return(makeResponse(200, "application/json", `{"a":1}`), nil)

	payload, rb := s.fetchLink(c, "http://example.com/list/products")
	c.Assert(payload, check.IsNil)
	assertSkipped(c, rb, ErrFetch)
}

func (s *linkFetcherTestSuite) TestSkipsTransportErrors(c *check.C) {
	s.expectReachable("example.com")
	s.urlGetter.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused"))

	payload, rb := s.fetchLink(c, "http://example.com/")
	c.Assert(payload, check.IsNil)
	assertSkipped(c, rb, ErrFetch)
}

func (s *linkFetcherTestSuite) TestFetchesPage(c *check.C) {
	s.expectReachable("example.com")
	s.urlGetter.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		c.Assert(req.URL.String(), check.Equals, "http://example.com:1234/index.html")
		c.Assert(req.Header.Get("User-Agent"), check.Equals, "test-agent")
		_, hasDeadline := req.Context().Deadline()
		c.Assert(hasDeadline, check.Equals, true)

		return makeResponse(200, "text/html; charset=utf-8", "hello"), nil
	})

	payload, rb := s.fetchLink(c, "http://example.com:1234/index.html")
	c.Assert(payload, check.NotNil)
	c.Assert(payload.RawContent.String(), check.Equals, "hello")
	c.Assert(payload.RetrievedAt.Equal(s.clock.Now()), check.Equals, true)
	c.Assert(rb.build(time.Time{}).Skipped, check.HasLen, 0)
}

func (s *linkFetcherTestSuite) expectReachable(host string) {
	s.netDetector.EXPECT().IsNetworkPrivate(host).Return(false, nil)
	s.politeness.EXPECT().Allowed(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *url.URL) (bool, error) { return u.Hostname() == host, nil },
	)
	s.politeness.EXPECT().Wait(gomock.Any(), gomock.Any()).Return(nil)
}

func (s *linkFetcherTestSuite) fetchLink(c *check.C, url string) (*crawlerPayload, *reportBuilder) {
	payload, rb := newTestPayload(url)

	f := newLinkFetcher(Config{
		URLGetter:              s.urlGetter,
		PrivateNetworkDetector: s.netDetector,
		Politeness:             s.politeness,
		Clock:                  s.clock,
		UserAgent:              "test-agent",
		FetchTimeout:           time.Second,
		MaxBodyBytes:           1024,
	})

	out, err := f.Process(context.TODO(), payload)
	c.Assert(err, check.IsNil)
	if out == nil {
		return nil, rb
	}

	c.Assert(out, check.FitsTypeOf, payload)

	return out.(*crawlerPayload), rb
}

func assertSkipped(c *check.C, rb *reportBuilder, target error) {
	rep := rb.build(time.Time{})
	c.Assert(rep.Skipped, check.HasLen, 1)
	c.Assert(errors.Is(rep.Skipped[0].Err, target), check.Equals, true, check.Commentf("got: %v", rep.Skipped[0].Err))
}

func makeResponse(code int, contentType, body string) *http.Response {
	resp := &http.Response{
		StatusCode: code,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	if contentType != "" {
		resp.Header.Set("Content-Type", contentType)
	}

	return resp
}
