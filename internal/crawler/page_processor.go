package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/masahif/sitecorpus/internal/metrics"
	"github.com/masahif/sitecorpus/internal/parser"
)

// fetchDocument waits for the host's rate limit, fetches pageURL and parses it.
func (s *Scraper) fetchDocument(ctx context.Context, pass, pageURL string) (*parser.Document, error) {
	if err := s.limiter.Wait(ctx, pageURL); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		metrics.ObserveFetch(pass, pageURL, 0, time.Since(start), err)
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	metrics.ObserveFetch(pass, pageURL, len(resp.Body), time.Since(start), nil)
	if resp.Truncated {
		slog.Debug("Page body truncated", "url", pageURL, "bytes", len(resp.Body))
	}

	doc, err := parser.Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ExtractPage fetches pageURL and renders its text as a PageRecord. Any
// failure yields a record titled "Error" instead of an error, so a broken
// page still counts toward the crawl.
func (s *Scraper) ExtractPage(ctx context.Context, pageURL string) PageRecord {
	doc, err := s.fetchDocument(ctx, metrics.PassContent, pageURL)
	if err != nil {
		slog.Warn("Failed to extract page content", "url", pageURL, "error", err)
		metrics.ObservePage(pageURL, metrics.StatusError)
		return failedPage(pageURL, err)
	}

	content := parser.ExtractContent(doc)
	metrics.ObservePage(pageURL, metrics.StatusOK)

	return PageRecord{
		URL:     pageURL,
		Title:   content.Title,
		Content: content.Compose(pageURL),
	}
}

func failedPage(pageURL string, err error) PageRecord {
	return PageRecord{
		URL:     pageURL,
		Title:   ErrorTitle,
		Content: fmt.Sprintf("Error extracting content from %s: %s", pageURL, err),
	}
}
