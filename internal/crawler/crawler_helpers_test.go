package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/masahif/sitecorpus/internal/config"
)

func init() {
	// Disable slog output during testing
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	slog.SetDefault(logger)
}

// fakeSite is an in-memory Fetcher. URLs without a page answer 404.
type fakeSite struct {
	mu      sync.Mutex
	pages   map[string]string
	status  map[string]int
	fetches []string
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:  make(map[string]string),
		status: make(map[string]int),
	}
}

func (f *fakeSite) page(url, title string, links ...string) *fakeSite {
	f.pages[url] = htmlPage(title, links...)
	return f
}

func (f *fakeSite) fail(url string, code int) *fakeSite {
	f.status[url] = code
	return f
}

func (f *fakeSite) Fetch(ctx context.Context, url string) (*HTTPResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.fetches = append(f.fetches, url)
	body, ok := f.pages[url]
	code := f.status[url]
	f.mu.Unlock()

	if code != 0 {
		return nil, &StatusError{URL: url, StatusCode: code}
	}
	if !ok {
		return nil, &StatusError{URL: url, StatusCode: 404}
	}
	return &HTTPResponse{StatusCode: 200, Body: []byte(body), FinalURL: url}, nil
}

func (f *fakeSite) Close() {}

func (f *fakeSite) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetches...)
}

func (f *fakeSite) fetchCount(url string) int {
	n := 0
	for _, u := range f.fetched() {
		if u == url {
			n++
		}
	}
	return n
}

func htmlPage(title string, links ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>%s</title></head><body><main><h1>%s</h1><p>Welcome to %s.</p>", title, title, title)
	for _, link := range links {
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, link, link)
	}
	b.WriteString("</main></body></html>")
	return b.String()
}

func newTestScraper(t *testing.T, fetcher Fetcher, opts ...Option) *Scraper {
	t.Helper()
	cfg := config.DefaultConfig()
	return NewScraper(cfg, fetcher, opts...)
}

func pageURLs(result *ScrapeResult) []string {
	urls := make([]string, len(result.Pages))
	for i, p := range result.Pages {
		urls[i] = p.URL
	}
	return urls
}
