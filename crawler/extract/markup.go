package extract

import (
	"bytes"
	"html"
	"io"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var titleRegex = regexp.MustCompile(`(?is)<title.*?>(.*?)</title>`)

// Markup strips every tag from the document and keeps the remaining text.
// The title comes from the title element.
type Markup struct {
	policyPool sync.Pool
}

// NewMarkup returns a Markup extractor.
func NewMarkup() *Markup {
	return &Markup{
		policyPool: sync.Pool{
			New: func() interface{} {
				return bluemonday.StrictPolicy()
			},
		},
	}
}

// Extract implements Extractor.
func (m *Markup) Extract(_ string, r io.Reader) (Page, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Page{}, err
	}

	policy := m.policyPool.Get().(*bluemonday.Policy)
	defer m.policyPool.Put(policy)

	var page Page
	// FindSubmatch yields nil or the full match plus one group.
	if match := titleRegex.FindSubmatch(raw); len(match) == 2 {
		page.Title = collapse(html.UnescapeString(policy.Sanitize(string(match[1]))))
	}

	// Drop the head so the title text is not repeated in the content.
	body := raw
	if end := bytes.Index(bytes.ToLower(raw), []byte("</head>")); end >= 0 {
		body = raw[end+len("</head>"):]
	}

	page.Content = collapse(html.UnescapeString(string(policy.SanitizeBytes(body))))

	return page, nil
}
