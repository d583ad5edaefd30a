package polite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/temoto/robotstxt"
)

const (
	defaultRobotsTTL     = 24 * time.Hour
	defaultRobotsTimeout = 30 * time.Second
	maxRobotsBodyBytes   = 512 << 10
)

// Getter performs HTTP requests. *http.Client satisfies it.
type Getter interface {
	Do(req *http.Request) (*http.Response, error)
}

type robotsEntry struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

// RobotsCache fetches and caches the robots rules of each host.
type RobotsCache struct {
	getter    Getter
	userAgent string
	clock     clock.Clock
	ttl       time.Duration
	timeout   time.Duration

	mu      sync.Mutex
	entries map[string]robotsEntry
}

// NewRobotsCache returns a cache that evaluates rules for userAgent and
// refetches a host's robots.txt after ttl. A zero ttl selects one day.
func NewRobotsCache(getter Getter, userAgent string, clk clock.Clock, ttl time.Duration) *RobotsCache {
	if ttl <= 0 {
		ttl = defaultRobotsTTL
	}
	if clk == nil {
		clk = clock.WallClock
	}

	return &RobotsCache{
		getter:    getter,
		userAgent: userAgent,
		clock:     clk,
		ttl:       ttl,
		timeout:   defaultRobotsTimeout,
		entries:   make(map[string]robotsEntry),
	}
}

// WithRequestTimeout bounds each robots.txt download. A host that does not
// answer within d is treated like a host without a robots.txt file.
func (c *RobotsCache) WithRequestTimeout(d time.Duration) *RobotsCache {
	if d > 0 {
		c.timeout = d
	}

	return c
}

// Allowed reports whether the robots rules of u's host permit fetching u.
func (c *RobotsCache) Allowed(ctx context.Context, u *url.URL) (bool, error) {
	data, err := c.rules(ctx, u)
	if err != nil {
		return false, err
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return data.TestAgent(path, c.userAgent), nil
}

// CrawlDelay returns the crawl delay the host requests from our agent, or
// zero when it does not specify one.
func (c *RobotsCache) CrawlDelay(ctx context.Context, u *url.URL) time.Duration {
	data, err := c.rules(ctx, u)
	if err != nil {
		return 0
	}

	return data.FindGroup(c.userAgent).CrawlDelay
}

func (c *RobotsCache) rules(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	key := u.Scheme + "://" + u.Host
	now := c.clock.Now()

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Sub(entry.fetchedAt) < c.ttl {
		return entry.data, nil
	}

	data, err := c.fetch(ctx, key+"/robots.txt")
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = robotsEntry{data: data, fetchedAt: now}
	c.mu.Unlock()

	return data, nil
}

// fetch downloads a robots.txt file. Transport failures allow everything,
// matching how a missing file is treated; 5xx answers disallow everything.
func (c *RobotsCache) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	reqCtx, cancelFn := context.WithTimeout(ctx, c.timeout)
	defer cancelFn()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("robots request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.getter.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
	}

	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}
