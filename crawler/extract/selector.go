package extract

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector extracts the first h1 (falling back to the title element) as
// the title and the text of every paragraph as the content.
type Selector struct{}

// NewSelector returns a Selector extractor.
func NewSelector() *Selector {
	return &Selector{}
}

// Extract implements Extractor.
func (Selector) Extract(_ string, r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, err
	}

	title := collapse(doc.Find("h1").First().Text())
	if title == "" {
		title = collapse(doc.Find("title").First().Text())
	}

	var blocks []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := collapse(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	return Page{
		Title:   title,
		Content: strings.Join(blocks, " "),
	}, nil
}
