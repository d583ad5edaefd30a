// Package query runs keyword searches against the text index and turns the
// ranked hits into result pages.
package query

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/search"
	"github.com/mycok/webscout/textindexer/index"
)

// Static and compile-time check to ensure Engine implements the
// search.Pager interface.
var _ search.Pager = (*Engine)(nil)

// Engine executes keyword queries against a text index.
type Engine struct {
	cfg Config
}

// New creates and returns a fully configured query engine.
func New(config Config) (*Engine, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("query engine: config validation failed: %w", err)
	}

	return &Engine{cfg: config}, nil
}

// Search runs keyword against the index and returns page pageNumber of the
// ranked results. Title matches weigh more than content matches. A keyword
// wrapped in double quotes is searched as an exact phrase.
//
// A zero page number selects the first page and a zero page size the
// configured default. Only the requested page is read from the index.
func (e *Engine) Search(keyword string, pageNumber, pageSize int) (*search.Page, error) {
	q, pageNumber, pageSize, err := e.buildQuery(keyword, pageNumber, pageSize)
	if err != nil {
		return nil, err
	}

	docsIt, err := e.cfg.Index.Search(q)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = docsIt.Close() }()

	terms := q.Expression
	summarizer := newMatchSummarizer(terms, e.cfg.MaxSummaryLength)
	highlighter := newMatchHighlighter(terms)
	engineName := e.cfg.Index.Name()

	items := make([]search.Result, 0, pageSize)
	for len(items) < pageSize && docsIt.Next() {
		doc := docsIt.Document()
		items = append(items, search.Result{
			Engine: engineName,
			Title:  displayTitle(doc),
			Link:   doc.URL,
			Host:   hostOf(doc.URL),
			Score:  docsIt.Score(),
			Summary: highlighter.Highlight(
				template.HTMLEscapeString(summarizer.Summary(doc.Content)),
			),
		})
	}

	if err = docsIt.Error(); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	total := docsIt.TotalCount()

	e.cfg.Logger.WithFields(logrus.Fields{
		"keyword": keyword,
		"page":    pageNumber,
		"total":   total,
	}).Debug("executed search query")

	return &search.Page{
		Query:       keyword,
		Number:      pageNumber,
		Size:        pageSize,
		Total:       total,
		HasPrevious: search.HasPrevious(pageNumber),
		HasNext:     search.HasNext(total, pageNumber, pageSize),
		Items:       items,
	}, nil
}

// Page implements search.Pager.
func (e *Engine) Page(ctx context.Context, keyword string, n, size int) (*search.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return e.Search(keyword, n, size)
}

func (e *Engine) buildQuery(keyword string, pageNumber, pageSize int) (index.Query, int, int, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return index.Query{}, 0, 0, fmt.Errorf("query: %w: empty keyword", search.ErrInvalidInput)
	}

	if pageNumber < 0 {
		return index.Query{}, 0, 0, fmt.Errorf("query: %w: page number %d", search.ErrInvalidInput, pageNumber)
	} else if pageNumber == 0 {
		pageNumber = 1
	}

	if pageSize < 0 || pageSize > e.cfg.MaxPageSize {
		return index.Query{}, 0, 0, fmt.Errorf("query: %w: page size %d", search.ErrInvalidInput, pageSize)
	} else if pageSize == 0 {
		pageSize = e.cfg.DefaultPageSize
	}

	q := index.Query{
		Type:       index.QueryTypeMatch,
		Expression: keyword,
		Offset:     uint64(pageNumber-1) * uint64(pageSize),
		TitleBoost: e.cfg.TitleBoost,
	}

	if len(keyword) > 1 && strings.HasPrefix(keyword, `"`) && strings.HasSuffix(keyword, `"`) {
		q.Type = index.QueryTypePhrase
		q.Expression = strings.TrimSpace(strings.Trim(keyword, `"`))
		if q.Expression == "" {
			return index.Query{}, 0, 0, fmt.Errorf("query: %w: empty phrase", search.ErrInvalidInput)
		}
	}

	return q, pageNumber, pageSize, nil
}

func displayTitle(doc *index.Document) string {
	if doc.Title != "" {
		return doc.Title
	}

	return doc.URL
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}

	return u.Hostname()
}
