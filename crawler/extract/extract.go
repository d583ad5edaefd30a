// Package extract turns raw HTML into the title and body text stored in
// the text index.
package extract

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Page holds the text extracted from a single HTML document.
type Page struct {
	Title   string
	Content string
}

// Extractor turns an HTML document into a Page.
type Extractor interface {
	Extract(pageURL string, r io.Reader) (Page, error)
}

// Supported extraction modes.
const (
	ModeSelector    = "selector"
	ModeMarkup      = "markup"
	ModeReadability = "readability"
)

var repeatedSpaceRegex = regexp.MustCompile(`\s+`)

// New returns the extractor for mode. An empty mode selects ModeSelector.
func New(mode string) (Extractor, error) {
	switch mode {
	case "", ModeSelector:
		return NewSelector(), nil
	case ModeMarkup:
		return NewMarkup(), nil
	case ModeReadability:
		return NewReadability(), nil
	default:
		return nil, fmt.Errorf("unsupported extraction mode %q", mode)
	}
}

// collapse trims s and squeezes internal whitespace runs into single spaces.
func collapse(s string) string {
	return strings.TrimSpace(repeatedSpaceRegex.ReplaceAllString(s, " "))
}
