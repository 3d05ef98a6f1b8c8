// Package crawler walks a single website depth-first and collects the text of
// each page it visits into a corpus.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/masahif/sitecorpus/internal/config"
	"github.com/masahif/sitecorpus/internal/metrics"
)

// Scraper crawls sites. It holds no per-crawl state, so one Scraper may serve
// concurrent ScrapeSite calls.
type Scraper struct {
	fetcher         Fetcher
	limiter         *RateLimiter
	defaultMaxPages int
	onPage          PageHook
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithPageHook registers fn to be called after each page is recorded.
func WithPageHook(fn PageHook) Option {
	return func(s *Scraper) {
		s.onPage = fn
	}
}

// WithRateLimiter replaces the limiter built from the configured request delay.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(s *Scraper) {
		s.limiter = limiter
	}
}

// NewFetcher builds the fetcher selected by cfg.Fetcher.
func NewFetcher(cfg *config.CrawlConfig) Fetcher {
	if cfg.Fetcher == config.FetcherColly {
		return NewCollyFetcher(cfg.UserAgent, cfg.RequestTimeout, cfg.MaxBodyBytes)
	}
	return NewHTTPClient(cfg.UserAgent, cfg.RequestTimeout, cfg.MaxBodyBytes)
}

// NewScraper creates a Scraper that fetches through fetcher. A nil fetcher is
// replaced by the one cfg selects.
func NewScraper(cfg *config.CrawlConfig, fetcher Fetcher, opts ...Option) *Scraper {
	if fetcher == nil {
		fetcher = NewFetcher(cfg)
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = config.DefaultConfig().MaxPages
	}

	s := &Scraper{
		fetcher:         fetcher,
		limiter:         NewRateLimiter(cfg.RequestDelay),
		defaultMaxPages: maxPages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the fetcher's resources.
func (s *Scraper) Close() {
	s.fetcher.Close()
}

// ScrapeSite crawls rootURL depth-first, visiting at most maxPages pages on
// the root's host, and returns every page's text. maxPages <= 0 uses the
// configured default. Page level failures are recorded in the result; only an
// invalid root URL or a cancelled ctx return an error.
func (s *Scraper) ScrapeSite(ctx context.Context, rootURL string, maxPages int) (*ScrapeResult, error) {
	if err := config.ValidateRootURL(rootURL); err != nil {
		metrics.ObserveScrapeRejected()
		return nil, fmt.Errorf("%w: %q", err, rootURL)
	}
	root, err := url.Parse(rootURL)
	if err != nil {
		metrics.ObserveScrapeRejected()
		return nil, fmt.Errorf("%w: %q", ErrInvalidRootURL, rootURL)
	}
	if maxPages <= 0 {
		maxPages = s.defaultMaxPages
	}

	job := newCrawlJob(root, maxPages)

	slog.Info("Starting site scrape", "url", job.rootURL, "max_pages", maxPages)
	metrics.ScrapeStarted()
	start := time.Now()

	if err := s.crawl(ctx, job); err != nil {
		metrics.ScrapeFinished(metrics.ScrapeCanceled)
		slog.Warn("Site scrape stopped", "url", job.rootURL, "page_count", job.pageCount, "error", err)
		return nil, err
	}

	metrics.ScrapeFinished(metrics.ScrapeCompleted)
	result := job.result()
	slog.Info("Site scrape completed",
		"url", job.rootURL,
		"page_count", result.PageCount,
		"failed_pages", result.FailedPages(),
		"duration", time.Since(start))
	return result, nil
}

// crawl runs the depth-first walk. It stops as soon as the page budget is
// spent; a page that spends the last unit of budget is never expanded.
func (s *Scraper) crawl(ctx context.Context, job *crawlJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.visit(ctx, job, job.rootURL)
	if job.exhausted() {
		return nil
	}

	var stack frontier
	stack.push(job.rootURL, s.ExtractInternalLinks(ctx, job, job.rootURL))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		link, parent, ok := stack.pop()
		if !ok {
			return nil
		}
		if !s.visit(ctx, job, link) {
			continue
		}
		if job.exhausted() {
			return nil
		}
		slog.Debug("Expanding page", "url", link, "parent", parent, "depth", stack.depth())
		stack.push(link, s.ExtractInternalLinks(ctx, job, link))
	}
}

// visit records pageURL unless the budget is spent or it was already seen.
// It reports whether a record was added.
func (s *Scraper) visit(ctx context.Context, job *crawlJob, pageURL string) bool {
	if job.exhausted() || job.isVisited(pageURL) {
		return false
	}
	job.markVisited(pageURL)

	page := s.ExtractPage(ctx, pageURL)
	job.pages = append(job.pages, page)
	slog.Info("Recorded page", "url", pageURL, "page_count", job.pageCount, "failed", page.Failed())

	if s.onPage != nil {
		s.onPage(page, job.pageCount, job.maxPages)
	}
	return true
}
