package scheduler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/crawler"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/webscout/service/scheduler Crawler

const (
	defaultInterval        = time.Hour
	defaultShutdownTimeout = 30 * time.Second
)

// Crawler runs one crawl over a list of seed URLs. *crawler.Crawler
// satisfies it.
type Crawler interface {
	Crawl(ctx context.Context, seeds []string) (crawler.Report, error)
}

// Config defines configurations for the crawl scheduler.
type Config struct {
	// The crawler that executes each cycle.
	Crawler Crawler

	// The seed URLs crawled on every cycle. They can be replaced while the
	// scheduler runs via SetSeeds.
	Seeds []string

	// The duration between subsequent crawl cycles. Defaults to one hour.
	Interval time.Duration

	// How long Stop waits for an in-flight cycle before abandoning it.
	// Defaults to 30 seconds.
	ShutdownTimeout time.Duration

	// A clock instance for generating time-related events. If not
	// specified, the default wall-clock will be used instead.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Crawler == nil {
		err = multierror.Append(err, fmt.Errorf("crawler not provided"))
	}

	if config.Interval < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for crawl interval, must be > 0"))
	} else if config.Interval == 0 {
		config.Interval = defaultInterval
	}

	if config.ShutdownTimeout < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for shutdown timeout, must be >= 0"))
	} else if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaultShutdownTimeout
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
