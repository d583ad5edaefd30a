// Package app assembles the webscout components from a configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/config"
	"github.com/mycok/webscout/crawler"
	"github.com/mycok/webscout/crawler/extract"
	"github.com/mycok/webscout/crawler/polite"
	"github.com/mycok/webscout/crawler/privnet"
	"github.com/mycok/webscout/crawler/seeds"
	"github.com/mycok/webscout/search/external"
	"github.com/mycok/webscout/search/query"
	"github.com/mycok/webscout/service"
	"github.com/mycok/webscout/service/scheduler"
	"github.com/mycok/webscout/textindexer/store"
)

// App owns the text index and every component built on top of it. An App
// returned by NewExternal carries only the external search components.
type App struct {
	Config config.Config
	Logger *logrus.Entry

	Index      store.Index
	Scheduler  *scheduler.Scheduler
	Engine     *query.Engine
	Aggregator *external.Aggregator
	Engines    *external.Pager
}

// New opens the configured text index and wires the crawler, scheduler,
// query engine and external aggregator around it.
func New(cfg config.Config, logger *logrus.Entry) (*App, error) {
	a, err := newApp(cfg, logger)
	if err != nil {
		return nil, err
	}

	seedURLs, err := loadSeeds(cfg.Crawl)
	if err != nil {
		return nil, err
	}

	idx, err := store.Open(indexURI(cfg), a.Logger.WithField("service", "text-index"))
	if err != nil {
		return nil, fmt.Errorf("app: opening text index: %w", err)
	}
	a.Index = idx

	if err = multierror.Append(a.wireIndex(seedURLs), a.wireExternal()).ErrorOrNil(); err != nil {
		_ = idx.Close()

		return nil, err
	}

	return a, nil
}

// NewExternal wires only the external search aggregator and its pager.
// The text index is never opened, so a missing or unreachable index
// backend does not affect it.
func NewExternal(cfg config.Config, logger *logrus.Entry) (*App, error) {
	a, err := newApp(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err = a.wireExternal(); err != nil {
		return nil, err
	}

	return a, nil
}

func newApp(cfg config.Config, logger *logrus.Entry) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: invalid config: %w", err)
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &App{Config: cfg, Logger: logger}, nil
}

func (a *App) wireIndex(seedURLs []string) error {
	cfg := a.Config

	extractor, err := extract.New(cfg.Crawl.Extractor)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}

	netDetector, err := privnet.NewDetector()
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.Crawl.FetchTimeout.Duration}

	var robots *polite.RobotsCache
	if !cfg.Crawl.IgnoreRobots {
		robots = polite.NewRobotsCache(httpClient, cfg.Crawl.UserAgent, nil, cfg.Crawl.RobotsTTL.Duration).
			WithRequestTimeout(cfg.Crawl.FetchTimeout.Duration)
	}

	crawlLogger := a.Logger.WithField("service", "crawler")
	cr := crawler.New(crawler.Config{
		URLGetter:              httpClient,
		PrivateNetworkDetector: netDetector,
		Politeness:             polite.NewPolicy(robots, polite.NewHostThrottle(cfg.Crawl.Delay.Duration)),
		Extractor:              extractor,
		Indexer:                a.Index,
		Logger:                 crawlLogger,
		UserAgent:              cfg.Crawl.UserAgent,
		FetchTimeout:           cfg.Crawl.FetchTimeout.Duration,
		MaxBodyBytes:           cfg.Crawl.MaxBodyBytes,
		NumOfFetchWorkers:      cfg.Crawl.Workers,
		DedupByURL:             cfg.Crawl.DedupByURL,
	})

	var errs error

	a.Scheduler, err = scheduler.New(scheduler.Config{
		Crawler:         cr,
		Seeds:           seedURLs,
		Interval:        cfg.Crawl.Interval.Duration,
		ShutdownTimeout: cfg.Crawl.ShutdownTimeout.Duration,
		Logger:          a.Logger.WithField("service", "crawl-scheduler"),
	})
	if err != nil {
		errs = multierror.Append(errs, err)
	}

	a.Engine, err = query.New(query.Config{
		Index:            a.Index,
		DefaultPageSize:  cfg.Search.PageSize,
		MaxPageSize:      cfg.Search.MaxPageSize,
		MaxSummaryLength: cfg.Search.MaxSummaryLength,
		TitleBoost:       cfg.Search.TitleBoost,
		Logger:           a.Logger.WithField("service", "query-engine"),
	})
	if err != nil {
		errs = multierror.Append(errs, err)
	}

	return errs
}

func (a *App) wireExternal() error {
	cfg := a.Config

	var err error
	a.Aggregator, err = external.New(external.Config{
		Command:        cfg.External.Command,
		WorkDir:        cfg.External.WorkDir,
		Engine:         cfg.External.Engine,
		BaseName:       cfg.External.BaseName,
		Pages:          cfg.External.Pages,
		Filter:         cfg.External.Filter,
		Proxy:          cfg.External.Proxy,
		Timeout:        cfg.External.Timeout.Duration,
		KeepDuplicates: cfg.External.KeepDuplicates,
		Logger:         a.Logger.WithField("service", "external-search"),
	})
	if err != nil {
		return err
	}

	a.Engines = external.NewPager(a.Aggregator, external.Request{
		IgnoreDuplicates: cfg.External.IgnoreDuplicates,
	})

	return nil
}

// Close releases the text index, if one was opened.
func (a *App) Close() error {
	if a.Index == nil {
		return nil
	}

	return a.Index.Close()
}

// SeedWatcher returns a service that feeds seed file changes into the
// scheduler, or nil when no seed file is configured.
func (a *App) SeedWatcher() service.Service {
	if a.Config.Crawl.SeedFile == "" {
		return nil
	}

	return &seedWatcher{
		path:   a.Config.Crawl.SeedFile,
		static: a.Config.Crawl.Seeds,
		sched:  a.Scheduler,
		logger: a.Logger.WithField("service", "seed-watcher"),
	}
}

type seedWatcher struct {
	path   string
	static []string
	sched  *scheduler.Scheduler
	logger *logrus.Entry
}

func (w *seedWatcher) Name() string { return "seed-watcher" }

func (w *seedWatcher) Run(ctx context.Context) error {
	return seeds.Watch(ctx, w.path, w.logger, func(fromFile []string) {
		w.sched.SetSeeds(mergeSeeds(w.static, fromFile))
	})
}

func loadSeeds(cfg config.CrawlConfig) ([]string, error) {
	if cfg.SeedFile == "" {
		return mergeSeeds(cfg.Seeds, nil), nil
	}

	fromFile, err := seeds.Load(cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	return mergeSeeds(cfg.Seeds, fromFile), nil
}

// mergeSeeds concatenates seed lists, dropping repeated URLs.
func mergeSeeds(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string

	for _, list := range lists {
		for _, u := range list {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			merged = append(merged, u)
		}
	}

	return merged
}

// indexURI returns the configured text index URI, enabling synchronous
// updates for Elasticsearch when requested.
func indexURI(cfg config.Config) string {
	if !cfg.ESSyncUpdates {
		return cfg.TextIndexURI
	}

	u, err := url.Parse(cfg.TextIndexURI)
	if err != nil || u.Scheme != "es" {
		return cfg.TextIndexURI
	}

	q := u.Query()
	q.Set("sync", "true")
	u.RawQuery = q.Encode()

	return u.String()
}
