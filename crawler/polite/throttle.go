package polite

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostThrottle spaces consecutive requests to the same host by at least a
// fixed delay.
type HostThrottle struct {
	delay time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostThrottle returns a throttle that waits delay between requests to
// the same host. A non-positive delay disables throttling.
func NewHostThrottle(delay time.Duration) *HostThrottle {
	return &HostThrottle{
		delay:    delay,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to host may be issued. A delay larger than
// the configured one, such as a robots crawl delay, permanently slows down
// the host.
func (t *HostThrottle) Wait(ctx context.Context, host string, delay time.Duration) error {
	if delay < t.delay {
		delay = t.delay
	}
	if delay <= 0 {
		return ctx.Err()
	}

	return t.limiter(host, delay).Wait(ctx)
}

func (t *HostThrottle) limiter(host string, delay time.Duration) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	lim, ok := t.limiters[host]
	if !ok {
		// A burst of one lets the first request through immediately.
		lim = rate.NewLimiter(rate.Every(delay), 1)
		t.limiters[host] = lim
	} else if every := rate.Every(delay); every < lim.Limit() {
		lim.SetLimit(every)
	}

	return lim
}
