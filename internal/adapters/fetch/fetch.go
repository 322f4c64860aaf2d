// Package fetch provides the two page-retrieval strategies used by the
// provider pipelines: a stateless HTTP fetcher for server-rendered pages
// and a headless-browser fetcher for pages populated by client-side
// script. Providers pick a strategy; nothing above this package knows
// which one is in use.
package fetch

import "context"

// Document is one successfully fetched page.
type Document struct {
	URL  string
	HTML string
}

// Options tunes a single fetch.
type Options struct {
	// WaitFor is a CSS selector that must become visible before the page
	// counts as loaded. Only the browser fetcher honors it; the wait is
	// bounded and a timeout is an ordinary *domain.FetchError.
	WaitFor string
}

type Fetcher interface {
	Fetch(ctx context.Context, url string, opts Options) (Document, error)

	// Close releases any held resources (browser processes). Safe to call
	// more than once.
	Close() error
}
