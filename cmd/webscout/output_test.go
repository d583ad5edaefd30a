package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/urfave/cli/v2"
	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/crawler"
	"github.com/mycok/webscout/search"
)

var _ = check.Suite(new(printerTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type printerTestSuite struct{}

func (s *printerTestSuite) TestPageAsText(c *check.C) {
	var buf bytes.Buffer
	page := &search.Page{
		Query:       "gophers",
		Number:      2,
		Size:        2,
		Total:       5,
		HasPrevious: true,
		HasNext:     true,
		Items: []search.Result{
			{Engine: "memory", Title: "Burrows", Link: "https://a.example/burrows", Host: "a.example"},
			{Engine: "memory", Title: "Tunnels", Link: "https://b.example/tunnels", Host: "b.example"},
		},
	}

	c.Assert(newPrinter(&buf, true).page(page), check.IsNil)

	out := buf.String()
	c.Assert(out, check.Matches, "(?s)#\\s+TITLE\\s+HOST\\s+ENGINE\n3\\s+Burrows\\s+a.example\\s+memory.*")
	c.Assert(out, check.Matches, "(?s).*4\\s+Tunnels\\s+b.example\\s+memory.*")
	c.Assert(out, check.Matches, "(?s).*Page 2 \\(5 results total\\), previous available, next available\n")
}

func (s *printerTestSuite) TestEmptyPageAsText(c *check.C) {
	var buf bytes.Buffer

	c.Assert(newPrinter(&buf, true).page(&search.Page{Query: "nothing", Number: 1, Size: 10}), check.IsNil)
	c.Assert(buf.String(), check.Equals, "No results for \"nothing\".\n")
}

func (s *printerTestSuite) TestPageAsJSON(c *check.C) {
	var buf bytes.Buffer
	page := &search.Page{Query: "gophers", Number: 1, Size: 10, Total: 1, Items: []search.Result{{Title: "Burrows"}}}

	c.Assert(newPrinter(&buf, false).page(page), check.IsNil)

	var got search.Page
	c.Assert(json.Unmarshal(buf.Bytes(), &got), check.IsNil)
	c.Assert(&got, check.DeepEquals, page)
}

func (s *printerTestSuite) TestReport(c *check.C) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rep := crawler.Report{
		Seeds:      2,
		Indexed:    []string{"https://a.example"},
		Skipped:    []crawler.Skip{{URL: "https://b.example", Err: errors.New("fetch failed")}},
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
	}

	var text bytes.Buffer
	c.Assert(newPrinter(&text, true).report(rep), check.IsNil)
	c.Assert(text.String(), check.Matches, "(?s)Crawled 2 seeds in 1.5s: 1 indexed, 1 skipped.\nSKIPPED\\s+REASON\nhttps://b.example\\s+fetch failed\n")

	var raw bytes.Buffer
	c.Assert(newPrinter(&raw, false).report(rep), check.IsNil)

	var decoded struct {
		Skipped []struct {
			URL string `json:"url"`
			Err string `json:"err"`
		} `json:"skipped"`
	}
	c.Assert(json.Unmarshal(raw.Bytes(), &decoded), check.IsNil)
	c.Assert(decoded.Skipped, check.HasLen, 1)
	c.Assert(decoded.Skipped[0].Err, check.Equals, "fetch failed")
}

func (s *printerTestSuite) TestFlagOverrides(c *check.C) {
	app := newCLI()
	app.Commands = nil

	var captured string
	app.Action = func(*cli.Context) error {
		captured = appConfig.TextIndexURI

		return nil
	}

	err := app.Run([]string{"webscout", "--text-index-uri", "sqlite:///tmp/x.db", "--log-format", "json"})
	c.Assert(err, check.IsNil)
	c.Assert(captured, check.Equals, "sqlite:///tmp/x.db")
	c.Assert(appConfig.Log.Format, check.Equals, "json")
}

func (s *printerTestSuite) TestInvalidFlagValue(c *check.C) {
	app := newCLI()
	app.Commands = nil
	app.Action = func(*cli.Context) error { return nil }

	err := app.Run([]string{"webscout", "--extractor", "magic"})
	c.Assert(err, check.ErrorMatches, "(?s).*unknown extractor mode \"magic\".*")
}
