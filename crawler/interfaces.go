package crawler

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/mycok/webscout/crawler/extract"
	"github.com/mycok/webscout/textindexer/index"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/webscout/crawler URLGetter,PrivateNetworkDetector,Politeness,Extractor,Indexer

// URLGetter should be implemented by objects that can perform HTTP requests.
// *http.Client satisfies it.
type URLGetter interface {
	Do(req *http.Request) (*http.Response, error)
}

// PrivateNetworkDetector should be implemented by objects that can detect
// whether a host resolves to a private network address.
type PrivateNetworkDetector interface {
	IsNetworkPrivate(host string) (bool, error)
}

// Politeness should be implemented by objects that enforce robots rules and
// per-host request spacing.
type Politeness interface {
	// Allowed reports whether robots rules permit fetching u.
	Allowed(ctx context.Context, u *url.URL) (bool, error)

	// Wait blocks until a request to u's host may be issued.
	Wait(ctx context.Context, u *url.URL) error
}

// Extractor should be implemented by objects that turn raw HTML into a
// title and body text.
type Extractor interface {
	Extract(pageURL string, r io.Reader) (extract.Page, error)
}

// Indexer should be implemented by objects that can index documents
// produced by the crawler.
type Indexer interface {
	Index(doc *index.Document) error
}
