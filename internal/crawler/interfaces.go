package crawler

import "context"

// Fetcher retrieves a page body. Implementations return a *StatusError for
// non-2xx responses and must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*HTTPResponse, error)
	Close()
}

// SiteScraper crawls one site and returns its text corpus.
type SiteScraper interface {
	ScrapeSite(ctx context.Context, rootURL string, maxPages int) (*ScrapeResult, error)
}

// PageHook is called after each page record is appended to a crawl.
type PageHook func(page PageRecord, pageCount, maxPages int)
