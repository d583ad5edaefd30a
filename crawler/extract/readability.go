package extract

import (
	"io"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// Readability extracts the main article of the page, dropping navigation,
// sidebars and other boilerplate.
type Readability struct{}

// NewReadability returns a Readability extractor.
func NewReadability() *Readability {
	return &Readability{}
}

// Extract implements Extractor.
func (Readability) Extract(pageURL string, r io.Reader) (Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Page{}, err
	}

	article, err := readability.FromReader(r, u)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Title:   collapse(article.Title),
		Content: collapse(article.TextContent),
	}, nil
}
