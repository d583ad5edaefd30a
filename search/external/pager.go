package external

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mycok/webscout/search"
)

const defaultPageSize = 10

// Static and compile-time check to ensure Pager implements the
// search.Pager interface.
var _ search.Pager = (*Pager)(nil)

// Pager serves result pages for external searches. It keeps the results of
// the last request in memory so paging through them does not start the
// search process again. Identical requests in flight at the same time share
// one search process while different requests run concurrently.
type Pager struct {
	agg      *Aggregator
	base     Request
	inflight singleflight.Group

	mu      sync.Mutex
	lastReq *Request
	results []search.Result
}

// NewPager returns a pager that runs searches through agg. Every request
// inherits the non-keyword fields of base.
func NewPager(agg *Aggregator, base Request) *Pager {
	return &Pager{agg: agg, base: base}
}

// Page implements search.Pager using the pager's base request.
func (p *Pager) Page(ctx context.Context, keyword string, n, size int) (*search.Page, error) {
	req := p.base
	req.Keyword = keyword

	return p.Search(ctx, req, n, size)
}

// Search returns page n of the results for req. A zero page number selects
// the first page and a zero size selects pages of 10 results.
func (p *Pager) Search(ctx context.Context, req Request, n, size int) (*search.Page, error) {
	if n < 0 || size < 0 {
		return nil, fmt.Errorf("external pager: %w: page %d size %d", search.ErrInvalidInput, n, size)
	}
	if n == 0 {
		n = 1
	}
	if size == 0 {
		size = defaultPageSize
	}

	req, err := p.agg.normalize(req)
	if err != nil {
		return nil, err
	}

	results, err := p.resultsFor(ctx, req)
	if err != nil {
		return nil, err
	}

	page := search.Paginate(results, n, size)
	page.Query = req.Keyword

	return &page, nil
}

func (p *Pager) resultsFor(ctx context.Context, req Request) ([]search.Result, error) {
	p.mu.Lock()
	if p.lastReq != nil && *p.lastReq == req {
		results := p.results
		p.mu.Unlock()

		return results, nil
	}
	p.mu.Unlock()

	// The search outlives a caller that gives up waiting so that other
	// callers sharing it still get the results; the aggregator timeout
	// bounds it.
	searchCtx := context.WithoutCancel(ctx)
	resCh := p.inflight.DoChan(fmt.Sprintf("%#v", req), func() (interface{}, error) {
		results, err := p.agg.AggregateSearch(searchCtx, req)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.lastReq, p.results = &req, results
		p.mu.Unlock()

		return results, nil
	})

	select {
	case res := <-resCh:
		if res.Err != nil {
			return nil, res.Err
		}

		return res.Val.([]search.Result), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
