package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/mycok/webscout/crawler"
	"github.com/mycok/webscout/search"
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// printer renders command results as aligned text for terminals and as
// JSON otherwise.
type printer struct {
	w    io.Writer
	text bool
}

func newPrinter(w io.Writer, text bool) *printer {
	return &printer{w: w, text: text}
}

func (p *printer) page(page *search.Page) error {
	if !p.text {
		return p.json(page)
	}

	if len(page.Items) == 0 {
		_, err := fmt.Fprintf(p.w, "No results for %q.\n", page.Query)

		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tTITLE\tHOST\tENGINE\n")
	offset := (page.Number - 1) * page.Size
	for i, r := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", offset+i+1, r.Title, r.Host, r.Engine)
		fmt.Fprintf(tw, "\t%s\t\t\n", r.Link)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(p.w, "\nPage %d (%d results total)%s%s\n",
		page.Number, page.Total, navHint("previous", page.HasPrevious), navHint("next", page.HasNext))

	return err
}

func (p *printer) report(rep crawler.Report) error {
	if !p.text {
		return p.json(rep)
	}

	_, err := fmt.Fprintf(p.w, "Crawled %d seeds in %s: %d indexed, %d skipped.\n",
		rep.Seeds, rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond), len(rep.Indexed), len(rep.Skipped))
	if err != nil || len(rep.Skipped) == 0 {
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "SKIPPED\tREASON\n")
	for _, s := range rep.Skipped {
		fmt.Fprintf(tw, "%s\t%v\n", s.URL, s.Err)
	}

	return tw.Flush()
}

func (p *printer) json(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func navHint(label string, ok bool) string {
	if !ok {
		return ""
	}

	return ", " + label + " available"
}
