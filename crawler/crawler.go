/*
Package crawler fetches seed pages, extracts their text and indexes them
through a three stage pipeline:
 1. fetch the page while honouring robots rules, per-host delays and the
    private network filter.
 2. extract a title and body text from the raw HTML.
 3. write one document per page into the text index.

A failure for one URL is logged and recorded in the Report; it never stops
the other URLs from being crawled.
*/
package crawler

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/pipeline"
)

const (
	// DefaultUserAgent identifies the crawler to remote servers.
	DefaultUserAgent = "webscout/1.0 (+https://github.com/mycok/webscout)"

	defaultFetchTimeout = 30 * time.Second
	defaultMaxBodyBytes = 10 << 20
)

// Config serves as a configuration object for the crawler.
type Config struct {
	URLGetter              URLGetter
	PrivateNetworkDetector PrivateNetworkDetector
	// Politeness is optional. When nil, pages are fetched without robots
	// checks or per-host delays.
	Politeness Politeness
	Extractor  Extractor
	Indexer    Indexer

	Clock  clock.Clock
	Logger *logrus.Entry

	UserAgent         string
	FetchTimeout      time.Duration
	MaxBodyBytes      int64
	NumOfFetchWorkers int

	// DedupByURL derives each document ID from its URL so that crawling a
	// page again replaces the previous document instead of adding a new one.
	DedupByURL bool
}

func (cfg *Config) applyDefaults() {
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		cfg.Logger = logrus.NewEntry(l)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.NumOfFetchWorkers <= 0 {
		cfg.NumOfFetchWorkers = runtime.NumCPU()
	}
}

// Crawler executes a web crawler pipeline.
type Crawler struct {
	p      *pipeline.Pipeline
	clock  clock.Clock
	logger *logrus.Entry
}

// New returns a crawler assembled from cfg. Unset optional fields receive
// their defaults.
func New(cfg Config) *Crawler {
	cfg.applyDefaults()

	return &Crawler{
		p:      assembleCrawlerPipeline(cfg),
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}
}

func assembleCrawlerPipeline(cfg Config) *pipeline.Pipeline {
	return pipeline.New(
		pipeline.NewFixedWorkerPool(newLinkFetcher(cfg), cfg.NumOfFetchWorkers),
		pipeline.NewFIFO(newTextExtractor(cfg.Extractor)),
		pipeline.NewFIFO(newTextIndexer(cfg.Indexer, cfg.DedupByURL)),
	)
}

// Crawl runs every seed URL through the pipeline and blocks until all of
// them have been indexed or skipped. The returned error is non-nil only when
// the pipeline itself fails or ctx is cancelled; per URL failures are
// reported through Report.Skipped.
func (c *Crawler) Crawl(ctx context.Context, seeds []string) (Report, error) {
	rb := newReportBuilder(c.logger, len(seeds), c.clock.Now())

	err := c.p.Execute(ctx, &seedSource{seeds: seeds, report: rb}, reportingSink{})
	if err == nil {
		err = ctx.Err()
	}

	return rb.build(c.clock.Now()), err
}
