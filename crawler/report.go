package crawler

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Skip records a seed URL that was not indexed during a crawl.
type Skip struct {
	URL string
	Err error
}

// MarshalJSON renders the skip reason as a string.
func (s Skip) MarshalJSON() ([]byte, error) {
	var reason string
	if s.Err != nil {
		reason = s.Err.Error()
	}

	return json.Marshal(struct {
		URL string `json:"url"`
		Err string `json:"err"`
	}{URL: s.URL, Err: reason})
}

// Report summarizes a single crawl.
type Report struct {
	Seeds      int       `json:"seeds"`
	Indexed    []string  `json:"indexed"`
	Skipped    []Skip    `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type reportBuilder struct {
	mu     sync.Mutex
	logger *logrus.Entry
	rep    Report
}

func newReportBuilder(logger *logrus.Entry, seeds int, startedAt time.Time) *reportBuilder {
	return &reportBuilder{
		logger: logger,
		rep:    Report{Seeds: seeds, StartedAt: startedAt},
	}
}

func (b *reportBuilder) indexed(url string) {
	b.mu.Lock()
	b.rep.Indexed = append(b.rep.Indexed, url)
	b.mu.Unlock()
}

func (b *reportBuilder) skip(url string, err error) {
	b.logger.WithFields(logrus.Fields{
		"url": url,
		"err": err,
	}).Warn("skipping url")

	b.mu.Lock()
	b.rep.Skipped = append(b.rep.Skipped, Skip{URL: url, Err: err})
	b.mu.Unlock()
}

func (b *reportBuilder) build(finishedAt time.Time) Report {
	b.mu.Lock()
	defer b.mu.Unlock()

	rep := b.rep
	rep.FinishedAt = finishedAt

	return rep
}
