package crawler

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mycok/webscout/pipeline"
)

var (
	_ pipeline.Payload = (*crawlerPayload)(nil)

	payloadPool = sync.Pool{
		New: func() interface{} {
			return new(crawlerPayload)
		},
	}
)

type crawlerPayload struct {
	URL         string       // set by the source.
	RetrievedAt time.Time    // set by the link fetcher.
	RawContent  bytes.Buffer // set by the link fetcher.
	Title       string       // set by the text extractor.
	TextContent string       // set by the text extractor.

	report *reportBuilder
}

// Clone returns a deep-copy of the original payload.
func (p *crawlerPayload) Clone() pipeline.Payload {
	clone := payloadPool.Get().(*crawlerPayload)

	clone.URL = p.URL
	clone.RetrievedAt = p.RetrievedAt
	clone.Title = p.Title
	clone.TextContent = p.TextContent
	clone.report = p.report

	if _, err := io.Copy(&clone.RawContent, bytes.NewReader(p.RawContent.Bytes())); err != nil {
		panic(fmt.Sprintf("[BUG] error cloning payload raw content: %v", err))
	}

	return clone
}

// MarkAsProcessed resets the payload and returns it to the pool.
func (p *crawlerPayload) MarkAsProcessed() {
	p.URL = ""
	p.RetrievedAt = time.Time{}
	p.RawContent.Reset()
	p.Title = ""
	p.TextContent = ""
	p.report = nil

	payloadPool.Put(p)
}

// skip records err against the payload URL and drops the payload.
func skip(p *crawlerPayload, err error) (pipeline.Payload, error) {
	if p.report != nil {
		p.report.skip(p.URL, err)
	}

	return nil, nil
}
