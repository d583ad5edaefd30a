package frontend

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/search"
	"github.com/mycok/webscout/search/external"
	"github.com/mycok/webscout/service/scheduler"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/webscout/service/frontend IndexSearcher,EngineSearcher,CrawlStats

// IndexSearcher runs searches against the local text index.
type IndexSearcher interface {
	Search(keyword string, pageNumber, pageSize int) (*search.Page, error)
}

// EngineSearcher runs searches through the external search engines.
type EngineSearcher interface {
	Search(ctx context.Context, req external.Request, pageNumber, pageSize int) (*search.Page, error)
}

// CrawlStats reports the crawl scheduler activity.
type CrawlStats interface {
	Stats() scheduler.Stats
}

// Config defines configurations for the front-end service.
type Config struct {
	// API for searching the local index.
	IndexSearcher IndexSearcher

	// API for searching external engines. Optional; when nil the engines
	// endpoint is not served.
	EngineSearcher EngineSearcher

	// API for reading crawl statistics. Optional; when nil the stats
	// endpoint is not served.
	CrawlStats CrawlStats

	// Address to listen for incoming requests.
	ListenAddr string

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.IndexSearcher == nil {
		err = multierror.Append(err, fmt.Errorf("index searcher not provided"))
	}

	if config.ListenAddr == "" {
		err = multierror.Append(err, fmt.Errorf("listen address not provided"))
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
