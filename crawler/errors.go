package crawler

import "errors"

var (
	// ErrFetch wraps every reason a page could not be retrieved.
	ErrFetch = errors.New("fetch failed")

	// ErrDisallowed marks pages excluded by the host's robots rules. It is
	// always reported together with ErrFetch.
	ErrDisallowed = errors.New("disallowed by robots rules")

	// ErrExtract wraps failures to parse a fetched page.
	ErrExtract = errors.New("extraction failed")
)
