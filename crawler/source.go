package crawler

import (
	"context"

	"github.com/mycok/webscout/pipeline"
)

// Static and compile-time check to ensure seedSource implements
// pipeline.Source interface.
var _ pipeline.Source = (*seedSource)(nil)

type seedSource struct {
	seeds  []string
	cur    int
	report *reportBuilder
}

func (s *seedSource) Next(context.Context) bool {
	if s.cur >= len(s.seeds) {
		return false
	}

	s.cur++

	return true
}

func (s *seedSource) Payload() pipeline.Payload {
	payload := payloadPool.Get().(*crawlerPayload)
	payload.URL = s.seeds[s.cur-1]
	payload.report = s.report

	return payload
}

func (s *seedSource) Error() error {
	return nil
}
