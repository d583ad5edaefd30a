package crawler

import (
	"context"
	"errors"
	"io"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/crawler/extract"
	"github.com/mycok/webscout/crawler/mocks"
)

var _ = check.Suite(new(textExtractorTestSuite))

type textExtractorTestSuite struct {
	extractor *mocks.MockExtractor
}

func (s *textExtractorTestSuite) SetUpTest(c *check.C) {
	s.extractor = mocks.NewMockExtractor(gomock.NewController(c))
}

func (s *textExtractorTestSuite) TestFillsTitleAndContent(c *check.C) {
	payload, _ := newTestPayload("http://example.com")
	payload.RawContent.WriteString("<html>raw</html>")

	s.extractor.EXPECT().Extract("http://example.com", gomock.Any()).DoAndReturn(
		func(_ string, r io.Reader) (extract.Page, error) {
			raw, err := io.ReadAll(r)
			c.Assert(err, check.IsNil)
			c.Assert(string(raw), check.Equals, "<html>raw</html>")

			return extract.Page{Title: "A title", Content: "some content"}, nil
		},
	)

	out, err := newTextExtractor(s.extractor).Process(context.TODO(), payload)
	c.Assert(err, check.IsNil)
	c.Assert(out, check.Equals, payload)
	c.Assert(payload.Title, check.Equals, "A title")
	c.Assert(payload.TextContent, check.Equals, "some content")
}

func (s *textExtractorTestSuite) TestMissingTitleUsesPlaceholder(c *check.C) {
	payload, _ := newTestPayload("http://example.com")
	s.extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(extract.Page{Content: "body"}, nil)

	out, err := newTextExtractor(s.extractor).Process(context.TODO(), payload)
	c.Assert(err, check.IsNil)
	c.Assert(out, check.NotNil)
	c.Assert(payload.Title, check.Equals, "untitled")
}

func (s *textExtractorTestSuite) TestExtractionFailureIsSkipped(c *check.C) {
	payload, rb := newTestPayload("http://example.com")
	s.extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(extract.Page{}, errors.New("malformed"))

	out, err := newTextExtractor(s.extractor).Process(context.TODO(), payload)
	c.Assert(err, check.IsNil)
	c.Assert(out, check.IsNil)
	assertSkipped(c, rb, ErrExtract)
}
