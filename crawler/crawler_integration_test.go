package crawler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"time"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/crawler"
	"github.com/mycok/webscout/crawler/extract"
	"github.com/mycok/webscout/crawler/mocks"
	"github.com/mycok/webscout/crawler/polite"
	"github.com/mycok/webscout/crawler/privnet"
	"github.com/mycok/webscout/textindexer/index"
	memindex "github.com/mycok/webscout/textindexer/store/memory"
)

var _ = check.Suite(new(crawlerIntegrationTestSuite))

const goodPage = `<html>
<head><title>Gopher news</title></head>
<body>
<h1>Gophers everywhere</h1>
<p>Gophers were spotted   digging.</p>
<p>Nobody knows why.</p>
</body>
</html>`

type crawlerIntegrationTestSuite struct {
	srv *httptest.Server
}

func (s *crawlerIntegrationTestSuite) SetUpTest(c *check.C) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /secret\n")
	})
	mux.HandleFunc("/good", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, goodPage)
	})
	mux.HandleFunc("/secret", func(w http.ResponseWriter, _ *http.Request) {
		c.Error("robots rules were not honoured")
	})

	s.srv = httptest.NewServer(mux)
}

func (s *crawlerIntegrationTestSuite) TearDownTest(c *check.C) {
	s.srv.Close()
}

func (s *crawlerIntegrationTestSuite) newConfig(c *check.C, idx crawler.Indexer) crawler.Config {
	netDetector, err := privnet.NewDetectorFromCIDRs("169.254.0.0/16")
	c.Assert(err, check.IsNil)

	return crawler.Config{
		URLGetter:              s.srv.Client(),
		PrivateNetworkDetector: netDetector,
		Politeness: polite.NewPolicy(
			polite.NewRobotsCache(s.srv.Client(), crawler.DefaultUserAgent, nil, 0),
			polite.NewHostThrottle(time.Millisecond),
		),
		Extractor:         extract.NewSelector(),
		Indexer:           idx,
		NumOfFetchWorkers: 3,
	}
}

func (s *crawlerIntegrationTestSuite) TestCrawlIndexesAndReportsSkips(c *check.C) {
	idx, err := memindex.NewInMemoryIndex()
	c.Assert(err, check.IsNil)
	defer func() { _ = idx.Close() }()

	seeds := []string{
		s.srv.URL + "/good",
		s.srv.URL + "/missing",
		s.srv.URL + "/secret",
		"http://169.254.169.254/latest/meta-data",
	}

	rep, err := crawler.New(s.newConfig(c, idx)).Crawl(context.TODO(), seeds)
	c.Assert(err, check.IsNil)
	c.Assert(rep.Seeds, check.Equals, 4)
	c.Assert(rep.Indexed, check.DeepEquals, []string{s.srv.URL + "/good"})
	c.Assert(rep.Skipped, check.HasLen, 3)

	var skipped []string
	for _, sk := range rep.Skipped {
		c.Assert(errors.Is(sk.Err, crawler.ErrFetch), check.Equals, true, check.Commentf("%s: %v", sk.URL, sk.Err))
		skipped = append(skipped, sk.URL)
	}
	sort.Strings(skipped)
	c.Assert(skipped, check.DeepEquals, []string{
		"http://169.254.169.254/latest/meta-data",
		s.srv.URL + "/missing",
		s.srv.URL + "/secret",
	})

	it, err := idx.Search(index.Query{Type: index.QueryTypeMatch, Expression: "digging"})
	c.Assert(err, check.IsNil)
	c.Assert(it.Next(), check.Equals, true)
	doc := it.Document()
	c.Assert(doc.URL, check.Equals, s.srv.URL+"/good")
	c.Assert(doc.Title, check.Equals, "Gophers everywhere")
	c.Assert(doc.Content, check.Equals, "Gophers were spotted digging. Nobody knows why.")
	c.Assert(doc.RetrievedAt.IsZero(), check.Equals, false)
	c.Assert(it.Next(), check.Equals, false)
	c.Assert(it.Close(), check.IsNil)
}

func (s *crawlerIntegrationTestSuite) TestOneFailingSeedDoesNotAbortTheCrawl(c *check.C) {
	indexer := mocks.NewMockIndexer(gomock.NewController(c))
	indexer.EXPECT().Index(gomock.Any()).Times(1).Return(nil)

	seeds := []string{s.srv.URL + "/missing", s.srv.URL + "/good"}
	rep, err := crawler.New(s.newConfig(c, indexer)).Crawl(context.TODO(), seeds)
	c.Assert(err, check.IsNil)
	c.Assert(rep.Indexed, check.HasLen, 1)
	c.Assert(rep.Skipped, check.HasLen, 1)
	c.Assert(rep.Skipped[0].URL, check.Equals, s.srv.URL+"/missing")
}

func (s *crawlerIntegrationTestSuite) TestRecrawlWithDedupReplacesDocument(c *check.C) {
	idx, err := memindex.NewInMemoryIndex()
	c.Assert(err, check.IsNil)
	defer func() { _ = idx.Close() }()

	cfg := s.newConfig(c, idx)
	cfg.DedupByURL = true
	cr := crawler.New(cfg)

	for i := 0; i < 2; i++ {
		_, err = cr.Crawl(context.TODO(), []string{s.srv.URL + "/good"})
		c.Assert(err, check.IsNil)
	}

	it, err := idx.Search(index.Query{Type: index.QueryTypeMatch, Expression: "gophers"})
	c.Assert(err, check.IsNil)
	c.Assert(it.TotalCount(), check.Equals, uint64(1))
	c.Assert(it.Close(), check.IsNil)
}

func (s *crawlerIntegrationTestSuite) TestEmptySeedList(c *check.C) {
	indexer := mocks.NewMockIndexer(gomock.NewController(c))

	rep, err := crawler.New(s.newConfig(c, indexer)).Crawl(context.TODO(), nil)
	c.Assert(err, check.IsNil)
	c.Assert(rep.Indexed, check.HasLen, 0)
	c.Assert(rep.Skipped, check.HasLen, 0)
}
