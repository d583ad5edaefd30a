package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/crawler/mocks"
	"github.com/mycok/webscout/textindexer/index"
)

var _ = check.Suite(new(textIndexerTestSuite))

type textIndexerTestSuite struct {
	indexer *mocks.MockIndexer
}

func (s *textIndexerTestSuite) SetUpTest(c *check.C) {
	s.indexer = mocks.NewMockIndexer(gomock.NewController(c))
}

func (s *textIndexerTestSuite) TestWritesOneDocument(c *check.C) {
	retrievedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	payload, _ := newTestPayload("http://example.com")
	payload.Title = "A title"
	payload.TextContent = "some content"
	payload.RetrievedAt = retrievedAt

	s.indexer.EXPECT().Index(&index.Document{
		URL:         "http://example.com",
		Title:       "A title",
		Content:     "some content",
		RetrievedAt: retrievedAt,
	}).Return(nil)

	out, err := newTextIndexer(s.indexer, false).Process(context.TODO(), payload)
	c.Assert(err, check.IsNil)
	c.Assert(out, check.Equals, payload)
}

func (s *textIndexerTestSuite) TestDedupByURLUsesStableID(c *check.C) {
	payload, _ := newTestPayload("http://example.com")

	s.indexer.EXPECT().Index(gomock.Any()).DoAndReturn(func(doc *index.Document) error {
		c.Assert(doc.ID, check.Equals, DocumentIDForURL("http://example.com"))
		c.Assert(doc.ID, check.Not(check.Equals), uuid.Nil)
		return nil
	})

	_, err := newTextIndexer(s.indexer, true).Process(context.TODO(), payload)
	c.Assert(err, check.IsNil)
	c.Assert(DocumentIDForURL("http://example.com/other"), check.Not(check.Equals), DocumentIDForURL("http://example.com"))
}

func (s *textIndexerTestSuite) TestStoreFailureIsSkipped(c *check.C) {
	payload, rb := newTestPayload("http://example.com")
	s.indexer.EXPECT().Index(gomock.Any()).Return(fmt.Errorf("index: %w", index.ErrStoreUnavailable))

	out, err := newTextIndexer(s.indexer, false).Process(context.TODO(), payload)
	c.Assert(err, check.IsNil)
	c.Assert(out, check.IsNil)

	rep := rb.build(time.Time{})
	c.Assert(rep.Skipped, check.HasLen, 1)
	c.Assert(errors.Is(rep.Skipped[0].Err, index.ErrStoreUnavailable), check.Equals, true)
}
