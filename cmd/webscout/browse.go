package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mycok/webscout/search"
)

const browseHelp = "[n]ext, [p]revious, /<keyword> to search again, [q]uit"

// browse runs keyword through sess and then pages through the results as
// commands arrive on in. Searches run off the input loop, so a command
// that arrives while one is still running is answered with a busy notice.
func browse(ctx context.Context, sess *search.Session, keyword string, in io.Reader, p *printer) error {
	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	outcomes := make(chan search.Outcome)
	run := func(op func(context.Context) (*search.Page, error)) {
		resCh := sess.Go(ctx, op)
		go func() {
			select {
			case res := <-resCh:
				select {
				case outcomes <- res:
				case <-ctx.Done():
				}
			case <-ctx.Done():
			}
		}()
	}
	searchFor := func(keyword string) func(context.Context) (*search.Page, error) {
		return func(ctx context.Context) (*search.Page, error) {
			return sess.Search(ctx, keyword)
		}
	}

	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	run(searchFor(keyword))
	for {
		select {
		case <-ctx.Done():
			return nil
		case res := <-outcomes:
			if err := p.outcome(res); err != nil {
				return err
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			switch {
			case line == "":
			case line == "q":
				return nil
			case line == "n":
				run(sess.Next)
			case line == "p":
				run(sess.Previous)
			case strings.HasPrefix(line, "/"):
				run(searchFor(line[1:]))
			default:
				if err := p.notice(browseHelp); err != nil {
					return err
				}
			}
		}
	}
}

func (p *printer) outcome(res search.Outcome) error {
	switch {
	case errors.Is(res.Err, search.ErrBusy):
		return p.notice("A search is still running, wait for its results.")
	case res.Err != nil:
		return p.notice(fmt.Sprintf("Search failed: %v", res.Err))
	}

	if err := p.page(res.Page); err != nil {
		return err
	}

	return p.notice(browseHelp)
}

func (p *printer) notice(msg string) error {
	_, err := fmt.Fprintln(p.w, msg)

	return err
}
