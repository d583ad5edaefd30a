// Package polite enforces robots exclusion rules and per-host request
// delays for the crawler.
package polite

import (
	"context"
	"net/url"

	"github.com/mycok/webscout/crawler"
)

// Static and compile-time check to ensure Policy implements
// crawler.Politeness interface.
var _ crawler.Politeness = (*Policy)(nil)

// Policy combines a robots cache and a host throttle.
type Policy struct {
	robots   *RobotsCache
	throttle *HostThrottle
}

// NewPolicy returns a policy. A nil robots cache disables robots checks and
// a nil throttle disables request spacing.
func NewPolicy(robots *RobotsCache, throttle *HostThrottle) *Policy {
	return &Policy{robots: robots, throttle: throttle}
}

// Allowed implements crawler.Politeness.
func (p *Policy) Allowed(ctx context.Context, u *url.URL) (bool, error) {
	if p.robots == nil {
		return true, nil
	}

	return p.robots.Allowed(ctx, u)
}

// Wait implements crawler.Politeness. The host's robots crawl delay wins
// over the configured delay when it is longer.
func (p *Policy) Wait(ctx context.Context, u *url.URL) error {
	if p.throttle == nil {
		return ctx.Err()
	}

	var crawlDelay = p.throttle.delay
	if p.robots != nil {
		if d := p.robots.CrawlDelay(ctx, u); d > crawlDelay {
			crawlDelay = d
		}
	}

	return p.throttle.Wait(ctx, u.Host, crawlDelay)
}
