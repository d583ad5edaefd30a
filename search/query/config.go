package query

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/textindexer/index"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/webscout/search/query Index
//go:generate mockgen -package mocks -destination mocks/iterator.go github.com/mycok/webscout/textindexer/index Iterator

const (
	defaultPageSize         = 10
	defaultMaxPageSize      = 100
	defaultMaxSummaryLength = 256
)

// Index defines the subset of the text index API used by the engine.
type Index interface {
	// Name identifies the backing store.
	Name() string

	// Search performs a look up based on query and returns a result
	// iterator if successful or an error otherwise.
	Search(q index.Query) (index.Iterator, error)
}

// Config defines configurations for the query engine.
type Config struct {
	// API for searching the index store.
	Index Index

	// Page size used when a request does not specify one. Defaults to 10.
	DefaultPageSize int

	// Largest page size a request may ask for. Defaults to 100.
	MaxPageSize int

	// The maximum length, in characters, of the highlighted summary of
	// each result. Defaults to 256.
	MaxSummaryLength int

	// Weight of title matches relative to content matches. Defaults to
	// index.DefaultTitleBoost.
	TitleBoost float64

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Index == nil {
		err = multierror.Append(err, fmt.Errorf("index API not provided"))
	}

	if config.DefaultPageSize <= 0 {
		config.DefaultPageSize = defaultPageSize
	}

	if config.MaxPageSize <= 0 {
		config.MaxPageSize = defaultMaxPageSize
	}

	if config.DefaultPageSize > config.MaxPageSize {
		err = multierror.Append(err, fmt.Errorf("default page size %d exceeds max page size %d", config.DefaultPageSize, config.MaxPageSize))
	}

	if config.MaxSummaryLength <= 0 {
		config.MaxSummaryLength = defaultMaxSummaryLength
	}

	if config.TitleBoost < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for title boost, must be >= 0"))
	} else if config.TitleBoost == 0 {
		config.TitleBoost = index.DefaultTitleBoost
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
