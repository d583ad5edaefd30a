package query

import (
	"strings"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(summarizerTestSuite))
var _ = check.Suite(new(highlighterTestSuite))

type summarizerTestSuite struct{}

func (s *summarizerTestSuite) TestSummaryKeepsMatchingSentencesInOrder(c *check.C) {
	content := "Gophers dig tunnels. Cats do not. The gopher sleeps. A gopher eats roots."

	got := newMatchSummarizer("gopher", 256).Summary(content)
	c.Assert(got, check.Equals, "The gopher sleeps. A gopher eats roots.")
}

func (s *summarizerTestSuite) TestSummaryMarksGapsBetweenSentences(c *check.C) {
	content := "The gopher digs. Cats do not. The gopher sleeps."

	got := newMatchSummarizer("gopher", 256).Summary(content)
	c.Assert(got, check.Equals, "The gopher digs.... The gopher sleeps.")
}

func (s *summarizerTestSuite) TestSummaryIsBounded(c *check.C) {
	content := "gopher " + strings.Repeat("ü", 500) + "."

	got := newMatchSummarizer("gopher", 20).Summary(content)
	c.Assert(got, check.Equals, "gopher "+strings.Repeat("ü", 13)+"...")
}

func (s *summarizerTestSuite) TestNoMatches(c *check.C) {
	c.Assert(newMatchSummarizer("gopher", 256).Summary("Nothing here."), check.Equals, "")
}

type highlighterTestSuite struct{}

func (s *highlighterTestSuite) TestSentenceHighlight(c *check.C) {
	testCases := []struct {
		input    string
		expected string
	}{
		{
			input:    "Test KEYWORD1",
			expected: "Test <em>KEYWORD1</em>",
		},
		{
			input:    "Data. KEYWORD2 lorem ipsum.KEYWORD1",
			expected: "Data. <em>KEYWORD2</em> lorem ipsum.<em>KEYWORD1</em>",
		},
		{
			input:    "keyword1 in lower case",
			expected: "<em>keyword1</em> in lower case",
		},
		{
			input:    "no match KEYWORD10",
			expected: "no match KEYWORD10",
		},
	}

	h := newMatchHighlighter("KEYWORD1 KEYWORD2")

	for i, tc := range testCases {
		c.Logf("spec %d", i)
		c.Assert(h.Highlight(tc.input), check.Equals, tc.expected)
	}
}

func (s *highlighterTestSuite) TestPhraseTermsAreHighlighted(c *check.C) {
	h := newMatchHighlighter(`"gopher news"`)
	c.Assert(h.Highlight("daily gopher news"), check.Equals, "daily <em>gopher</em> <em>news</em>")
}
