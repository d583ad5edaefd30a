package crawler

import (
	"context"

	"github.com/mycok/webscout/pipeline"
)

// Static and compile-time check to ensure reportingSink implements
// pipeline.Sink interface.
var _ pipeline.Sink = (*reportingSink)(nil)

// reportingSink records every payload that made it through the indexer.
type reportingSink struct{}

func (reportingSink) Consume(_ context.Context, p pipeline.Payload) error {
	if cp, ok := p.(*crawlerPayload); ok && cp.report != nil {
		cp.report.indexed(cp.URL)
	}

	return nil
}
