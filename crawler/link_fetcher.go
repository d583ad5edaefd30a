package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/juju/clock"

	"github.com/mycok/webscout/pipeline"
)

var (
	// Static and compile-time check to ensure linkFetcher implements
	// pipeline.Processor interface.
	_ pipeline.Processor = (*linkFetcher)(nil)

	// Locate links that point to resources that don't serve html content.
	exclusionRegex = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|gif|ico|css|js|pdf|zip)$`)
)

// linkFetcher is the first stage of the crawler pipeline. It retrieves the
// page behind each seed URL into the payload's RawContent.
type linkFetcher struct {
	urlGetter    URLGetter
	netDetector  PrivateNetworkDetector
	politeness   Politeness
	clock        clock.Clock
	userAgent    string
	timeout      time.Duration
	maxBodyBytes int64
}

func newLinkFetcher(cfg Config) *linkFetcher {
	return &linkFetcher{
		urlGetter:    cfg.URLGetter,
		netDetector:  cfg.PrivateNetworkDetector,
		politeness:   cfg.Politeness,
		clock:        cfg.Clock,
		userAgent:    cfg.UserAgent,
		timeout:      cfg.FetchTimeout,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

func (p *linkFetcher) Process(ctx context.Context, payload pipeline.Payload) (pipeline.Payload, error) {
	cPayload, ok := payload.(*crawlerPayload)
	if !ok {
		return nil, nil
	}

	u, err := url.Parse(cPayload.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return skip(cPayload, fmt.Errorf("%w: invalid url %q", ErrFetch, cPayload.URL))
	}

	if exclusionRegex.MatchString(u.Path) {
		return skip(cPayload, fmt.Errorf("%w: not an html resource", ErrFetch))
	}

	if p.netDetector != nil {
		isPrivate, err := p.netDetector.IsNetworkPrivate(u.Hostname())
		if err != nil {
			return skip(cPayload, fmt.Errorf("%w: resolving host: %v", ErrFetch, err))
		}
		if isPrivate {
			return skip(cPayload, fmt.Errorf("%w: host resolves to a private network", ErrFetch))
		}
	}

	if p.politeness != nil {
		allowed, err := p.politeness.Allowed(ctx, u)
		if err != nil {
			return skip(cPayload, fmt.Errorf("%w: robots rules: %v", ErrFetch, err))
		}
		if !allowed {
			return skip(cPayload, fmt.Errorf("%w: %w", ErrFetch, ErrDisallowed))
		}

		if err = p.politeness.Wait(ctx, u); err != nil {
			return skip(cPayload, fmt.Errorf("%w: %v", ErrFetch, err))
		}
	}

	if err = p.fetch(ctx, cPayload); err != nil {
		return skip(cPayload, err)
	}

	return cPayload, nil
}

func (p *linkFetcher) fetch(ctx context.Context, cPayload *crawlerPayload) error {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, cPayload.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.urlGetter.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Only 2xx responses carry a page worth indexing.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	if contentType := resp.Header.Get("Content-Type"); !strings.Contains(contentType, "html") {
		return fmt.Errorf("%w: unsupported content type %q", ErrFetch, contentType)
	}

	if _, err = io.Copy(&cPayload.RawContent, io.LimitReader(resp.Body, p.maxBodyBytes)); err != nil {
		return fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}

	cPayload.RetrievedAt = p.clock.Now().UTC()

	return nil
}
