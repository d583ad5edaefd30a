package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/webscout/search Pager

// Pager is implemented by the sources a Session can navigate: the local
// query engine and the external aggregator pager.
type Pager interface {
	// Page runs keyword and returns page number n of its results.
	Page(ctx context.Context, keyword string, n, size int) (*Page, error)
}

// Outcome carries the result of an operation started with Session.Go.
type Outcome struct {
	Page *Page
	Err  error
}

// Session tracks the query and page a single user is looking at. It runs at
// most one operation at a time; overlapping calls fail with ErrBusy.
type Session struct {
	pager Pager
	size  int

	busy atomic.Bool

	mu      sync.Mutex
	keyword string
	current *Page
}

// NewSession returns a session that pages through pager's results size
// items at a time.
func NewSession(pager Pager, size int) *Session {
	return &Session{pager: pager, size: size}
}

// Search starts a new query and returns its first page.
func (s *Session) Search(ctx context.Context, keyword string) (*Page, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("search: %w: empty keyword", ErrInvalidInput)
	}

	return s.load(ctx, keyword, 1)
}

// Next moves to the following page. On the last page it returns the current
// page unchanged.
func (s *Session) Next(ctx context.Context) (*Page, error) {
	keyword, cur, err := s.state()
	if err != nil {
		return nil, err
	}
	if !cur.HasNext {
		return cur, nil
	}

	return s.load(ctx, keyword, cur.Number+1)
}

// Previous moves to the preceding page. On the first page it returns the
// current page unchanged.
func (s *Session) Previous(ctx context.Context) (*Page, error) {
	keyword, cur, err := s.state()
	if err != nil {
		return nil, err
	}
	if !cur.HasPrevious {
		return cur, nil
	}

	return s.load(ctx, keyword, cur.Number-1)
}

// Current returns the page last loaded, or nil before the first search.
func (s *Session) Current() *Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// Go runs op on its own goroutine and delivers the outcome on the returned
// channel, which receives exactly one value.
func (s *Session) Go(ctx context.Context, op func(context.Context) (*Page, error)) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		page, err := op(ctx)
		out <- Outcome{Page: page, Err: err}
	}()

	return out
}

func (s *Session) state() (string, *Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return "", nil, fmt.Errorf("search: %w: no active query", ErrInvalidInput)
	}

	return s.keyword, s.current, nil
}

func (s *Session) load(ctx context.Context, keyword string, n int) (*Page, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	page, err := s.pager.Page(ctx, keyword, n, s.size)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.keyword, s.current = keyword, page
	s.mu.Unlock()

	return page, nil
}
