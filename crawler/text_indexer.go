package crawler

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mycok/webscout/pipeline"
	"github.com/mycok/webscout/textindexer/index"
)

// Static and compile-time check to ensure textIndexer implements
// pipeline.Processor interface.
var _ pipeline.Processor = (*textIndexer)(nil)

type textIndexer struct {
	indexer    Indexer
	dedupByURL bool
}

func newTextIndexer(indexer Indexer, dedupByURL bool) *textIndexer {
	return &textIndexer{indexer: indexer, dedupByURL: dedupByURL}
}

// Process writes exactly one document per payload. Store failures are
// recorded as skips.
func (p *textIndexer) Process(ctx context.Context, payload pipeline.Payload) (pipeline.Payload, error) {
	cPayload, ok := payload.(*crawlerPayload)
	if !ok {
		return nil, nil
	}

	doc := &index.Document{
		URL:         cPayload.URL,
		Title:       cPayload.Title,
		Content:     cPayload.TextContent,
		RetrievedAt: cPayload.RetrievedAt,
	}
	if p.dedupByURL {
		doc.ID = DocumentIDForURL(cPayload.URL)
	}

	if err := p.indexer.Index(doc); err != nil {
		return skip(cPayload, fmt.Errorf("indexing: %w", err))
	}

	return cPayload, nil
}

// DocumentIDForURL returns the stable document ID used when documents are
// deduplicated by URL.
func DocumentIDForURL(rawURL string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(rawURL))
}
