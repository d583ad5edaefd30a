package crawler

import (
	"context"
	"fmt"

	"github.com/mycok/webscout/pipeline"
	"github.com/mycok/webscout/textindexer/index"
)

// Static and compile-time check to ensure textExtractor implements
// pipeline.Processor interface.
var _ pipeline.Processor = (*textExtractor)(nil)

type textExtractor struct {
	extractor Extractor
}

func newTextExtractor(extractor Extractor) *textExtractor {
	return &textExtractor{extractor: extractor}
}

// Process fills the payload title and text content from its raw HTML.
func (p *textExtractor) Process(ctx context.Context, payload pipeline.Payload) (pipeline.Payload, error) {
	cPayload, ok := payload.(*crawlerPayload)
	if !ok {
		return nil, nil
	}

	page, err := p.extractor.Extract(cPayload.URL, &cPayload.RawContent)
	if err != nil {
		return skip(cPayload, fmt.Errorf("%w: %v", ErrExtract, err))
	}

	cPayload.Title = page.Title
	if cPayload.Title == "" {
		cPayload.Title = index.UntitledPlaceholder
	}
	cPayload.TextContent = page.Content

	return cPayload, nil
}
