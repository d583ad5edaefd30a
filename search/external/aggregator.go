/*
Package external searches through an external multi-engine search process.

Every call starts the process with the query as arguments, waits for it to
write its JSON output into a fresh directory, and flattens the per-engine
results into one list ranked by order of arrival.
*/
package external

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/search"
)

// Request describes one external search. Empty fields take the aggregator
// defaults.
type Request struct {
	Keyword          string
	Engine           string
	MaxPages         int
	FilterField      string
	IgnoreDuplicates bool
	Proxy            string
}

// Aggregator runs external searches.
type Aggregator struct {
	cfg Config
}

// New creates and returns a fully configured aggregator.
func New(config Config) (*Aggregator, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("external aggregator: config validation failed: %w", err)
	}

	return &Aggregator{cfg: config}, nil
}

// AggregateSearch runs the search process for req and returns the
// flattened results. It blocks until the process exits or times out.
func (a *Aggregator) AggregateSearch(ctx context.Context, req Request) ([]search.Result, error) {
	req, err := a.normalize(req)
	if err != nil {
		return nil, err
	}

	outDir, err := os.MkdirTemp(a.cfg.TempDir, "webscout-search-")
	if err != nil {
		return nil, fmt.Errorf("aggregate search: creating output directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(outDir) }()

	outputBase := filepath.Join(outDir, a.cfg.BaseName)
	argv := append(append([]string(nil), a.cfg.Command...), searchArgs(req, outputBase)...)

	logger := a.cfg.Logger.WithFields(logrus.Fields{
		"keyword": req.Keyword,
		"engine":  req.Engine,
		"pages":   req.MaxPages,
	})
	logger.Debug("starting external search")

	if err = a.runProcess(ctx, argv); err != nil {
		logger.WithField("err", err).Warn("external search process failed")

		return nil, fmt.Errorf("aggregate search: %w", err)
	}

	_, results, err := readOutput(outputBase + "." + outputFormat)
	if err != nil {
		return nil, fmt.Errorf("aggregate search: %w", err)
	}

	if !a.cfg.KeepDuplicates {
		results = dedupByLink(results)
	}

	logger.WithField("result_count", len(results)).Debug("completed external search")

	return results, nil
}

func (a *Aggregator) normalize(req Request) (Request, error) {
	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.Keyword == "" {
		return req, fmt.Errorf("aggregate search: %w: empty keyword", search.ErrInvalidInput)
	}

	if req.MaxPages < 0 {
		return req, fmt.Errorf("aggregate search: %w: pages %d", search.ErrInvalidInput, req.MaxPages)
	} else if req.MaxPages == 0 {
		req.MaxPages = a.cfg.Pages
	}

	if req.Engine == "" {
		req.Engine = a.cfg.Engine
	}

	if req.FilterField == "" {
		req.FilterField = a.cfg.Filter
	}

	if req.Proxy == "" {
		req.Proxy = a.cfg.Proxy
	}

	return req, nil
}
