package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/search"
	"github.com/mycok/webscout/search/mocks"
)

var _ = check.Suite(new(browseTestSuite))

type browseTestSuite struct{}

// syncBuffer lets the test read output while browse writes it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func waitForOutput(c *check.C, out *syncBuffer, want string) {
	waitForCount(c, out, want, 1)
}

func waitForCount(c *check.C, out *syncBuffer, want string, n int) {
	deadline := time.Now().Add(5 * time.Second)
	for strings.Count(out.String(), want) < n {
		if time.Now().After(deadline) {
			c.Fatalf("timed out waiting for %q; output so far:\n%s", want, out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func resultPage(keyword string, n int, hasNext bool, title string) *search.Page {
	return &search.Page{
		Query:       keyword,
		Number:      n,
		Size:        1,
		Total:       2,
		HasPrevious: n > 1,
		HasNext:     hasNext,
		Items:       []search.Result{{Engine: "memory", Title: title, Link: "https://example.com/" + title, Host: "example.com"}},
	}
}

func (s *browseTestSuite) TestNavigateResultPages(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	pager := mocks.NewMockPager(ctrl)
	gomock.InOrder(
		pager.EXPECT().Page(gomock.Any(), "gophers", 1, 1).Return(resultPage("gophers", 1, true, "Burrows"), nil),
		pager.EXPECT().Page(gomock.Any(), "gophers", 2, 1).Return(resultPage("gophers", 2, false, "Tunnels"), nil),
		pager.EXPECT().Page(gomock.Any(), "gophers", 1, 1).Return(resultPage("gophers", 1, true, "Burrows"), nil),
	)

	inR, inW := io.Pipe()
	out := new(syncBuffer)
	done := make(chan error, 1)
	go func() {
		done <- browse(context.TODO(), search.NewSession(pager, 1), "gophers", inR, newPrinter(out, true))
	}()

	waitForOutput(c, out, "Burrows")
	_, _ = io.WriteString(inW, "n\n")
	waitForOutput(c, out, "Tunnels")
	_, _ = io.WriteString(inW, "p\n")
	waitForCount(c, out, "Burrows", 2)
	_, _ = io.WriteString(inW, "q\n")

	c.Assert(<-done, check.IsNil)
	c.Assert(strings.Contains(out.String(), "Page 2 (2 results total), previous available\n"+browseHelp+"\n"), check.Equals, true)
}

func (s *browseTestSuite) TestCommandsWhileSearchingAreRejectedAsBusy(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	started := make(chan struct{})
	release := make(chan struct{})
	pager := mocks.NewMockPager(ctrl)
	pager.EXPECT().Page(gomock.Any(), "gophers", 1, 10).DoAndReturn(
		func(context.Context, string, int, int) (*search.Page, error) {
			close(started)
			<-release

			return resultPage("gophers", 1, false, "Burrows"), nil
		},
	)

	inR, inW := io.Pipe()
	out := new(syncBuffer)
	done := make(chan error, 1)
	go func() {
		done <- browse(context.TODO(), search.NewSession(pager, 10), "gophers", inR, newPrinter(out, true))
	}()

	<-started
	// A second search while the first is still loading never reaches the
	// pager.
	_, _ = io.WriteString(inW, "/rabbits\n")
	waitForOutput(c, out, "A search is still running")

	close(release)
	waitForOutput(c, out, "Burrows")

	// Closing the input ends the session.
	c.Assert(inW.Close(), check.IsNil)
	c.Assert(<-done, check.IsNil)
}

func (s *browseTestSuite) TestFailedSearchKeepsSessionOpen(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	pager := mocks.NewMockPager(ctrl)
	pager.EXPECT().Page(gomock.Any(), "gophers", 1, 10).Return(resultPage("gophers", 1, false, "Burrows"), nil)

	inR, inW := io.Pipe()
	out := new(syncBuffer)
	done := make(chan error, 1)
	go func() {
		done <- browse(context.TODO(), search.NewSession(pager, 10), "gophers", inR, newPrinter(out, true))
	}()

	waitForOutput(c, out, "Burrows")
	_, _ = io.WriteString(inW, "/   \n")
	waitForOutput(c, out, "Search failed: search: invalid input: empty keyword")
	_, _ = io.WriteString(inW, "help\n")
	waitForOutput(c, out, "Search failed: search: invalid input: empty keyword\n"+browseHelp+"\n")
	_, _ = io.WriteString(inW, "q\n")

	c.Assert(<-done, check.IsNil)
}
