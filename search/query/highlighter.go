package query

import (
	"fmt"
	"regexp"
	"strings"
)

// matchHighlighter wraps every occurrence of the search terms in <em> tags.
type matchHighlighter struct {
	re *regexp.Regexp
}

func newMatchHighlighter(searchTerms string) *matchHighlighter {
	var alternatives []string
	for _, term := range strings.Fields(strings.Trim(searchTerms, `"`)) {
		alternatives = append(alternatives, regexp.QuoteMeta(term))
	}

	if len(alternatives) == 0 {
		return &matchHighlighter{}
	}

	return &matchHighlighter{
		re: regexp.MustCompile(fmt.Sprintf(`(?i)\b(?:%s)\b`, strings.Join(alternatives, "|"))),
	}
}

// Highlight returns text with every matched term wrapped in <em> tags.
func (h *matchHighlighter) Highlight(text string) string {
	if h.re == nil {
		return text
	}

	return h.re.ReplaceAllString(text, "<em>$0</em>")
}
