package query

import (
	"bufio"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

type matchedSentence struct {
	// Position of the sentence within the document content.
	position int

	text string

	// Ratio of matched terms to the total number of words in the sentence.
	matchRatio float32
}

// matchSummarizer builds a short excerpt from the sentences of a document
// that contain at least one search term.
type matchSummarizer struct {
	searchTerms []string

	// Maximum summary length in characters.
	maxSummaryLen int
}

func newMatchSummarizer(searchTerms string, maxSummaryLen int) *matchSummarizer {
	return &matchSummarizer{
		searchTerms:   strings.Fields(strings.Trim(searchTerms, `"`)),
		maxSummaryLen: maxSummaryLen,
	}
}

// Summary returns the best matching sentences of content in document order.
// Non-adjacent sentences are separated by an ellipsis.
func (s *matchSummarizer) Summary(content string) string {
	var sb strings.Builder

	lastPosition := -1
	for _, sentence := range s.sentencesForSummary(content) {
		if lastPosition != -1 && sentence.position-lastPosition != 1 {
			_, _ = sb.WriteString("...")
		}
		lastPosition = sentence.position

		_, _ = sb.WriteString(sentence.text)
		if !strings.HasSuffix(sentence.text, ".") {
			_ = sb.WriteByte('.')
		}
	}

	return strings.TrimSpace(sb.String())
}

func (s *matchSummarizer) sentencesForSummary(content string) []*matchedSentence {
	var matched []*matchedSentence

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	scanner.Split(scanSentence)

	for position := 0; scanner.Scan(); position++ {
		sentence := scanner.Text()
		if ratio := s.matchRatio(sentence); ratio > 0 {
			matched = append(matched, &matchedSentence{
				position:   position,
				text:       sentence,
				matchRatio: ratio,
			})
		}
	}

	// Higher quality matches claim the summary space first.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].matchRatio > matched[j].matchRatio
	})

	var summary []*matchedSentence
	for i, remaining := 0, s.maxSummaryLen; i < len(matched) && remaining > 0; i++ {
		textLen := utf8.RuneCountInString(matched[i].text)
		if textLen > remaining {
			matched[i].text = string([]rune(matched[i].text)[:remaining]) + "..."
			textLen = remaining
		}

		remaining -= textLen
		summary = append(summary, matched[i])
	}

	sort.Slice(summary, func(i, j int) bool {
		return summary[i].position < summary[j].position
	})

	return summary
}

func (s *matchSummarizer) matchRatio(sentence string) float32 {
	var wordCount, matchedCount int

	scanner := bufio.NewScanner(strings.NewReader(sentence))
	scanner.Split(bufio.ScanWords)

	for ; scanner.Scan(); wordCount++ {
		word := strings.TrimFunc(scanner.Text(), unicode.IsPunct)
		for _, term := range s.searchTerms {
			if strings.EqualFold(term, word) {
				matchedCount++

				break
			}
		}
	}

	if wordCount == 0 {
		return 0
	}

	return float32(matchedCount) / float32(wordCount)
}

// scanSentence is a bufio.SplitFunc that splits text into sentences ending
// in '.', '!' or '?'.
func scanSentence(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF {
		if len(data) == 0 {
			return 0, nil, nil
		}

		return len(data), data, nil
	}

	var seq [3]rune
	var index, skip int

	for i := 0; i < len(seq); i++ {
		if seq[i], skip = scanRune(data[index:]); skip < 0 {
			return 0, nil, nil
		}
		index += skip
	}

	for index < len(data) {
		if isSentenceBreak(seq) {
			return index - skip, data[:index-skip], nil
		}

		seq[0], seq[1] = seq[1], seq[2]
		if seq[2], skip = scanRune(data[index:]); skip < 0 {
			return 0, nil, nil
		}
		index += skip
	}

	return 0, nil, nil
}

// isSentenceBreak reports whether the middle rune of seq terminates a
// sentence.
func isSentenceBreak(seq [3]rune) bool {
	before := unicode.IsLower(seq[0]) || unicode.IsSymbol(seq[0]) ||
		unicode.IsNumber(seq[0]) || unicode.IsSpace(seq[0])

	terminator := seq[1] == '.' || seq[1] == '!' || seq[1] == '?'

	after := unicode.IsPunct(seq[2]) || unicode.IsSpace(seq[2]) ||
		unicode.IsSymbol(seq[2]) || unicode.IsNumber(seq[2]) ||
		unicode.IsUpper(seq[2])

	return before && terminator && after
}

func scanRune(data []byte) (rune, int) {
	if len(data) == 0 {
		return 0, -1
	}

	if data[0] < utf8.RuneSelf {
		return rune(data[0]), 1
	}

	r, size := utf8.DecodeRune(data)
	if size > 1 {
		return r, size
	}

	// Not valid UTF-8.
	return 0, -1
}
