package crawler

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/masahif/sitecorpus/internal/metrics"
	"github.com/masahif/sitecorpus/internal/parser"
)

// MaxLinksPerPage caps how many links one page contributes to the crawl.
const MaxLinksPerPage = 15

// ExtractInternalLinks fetches pageURL again and returns up to MaxLinksPerPage
// links on the job's domain that the job has not visited yet, in document
// order. Failures yield no links.
func (s *Scraper) ExtractInternalLinks(ctx context.Context, job *crawlJob, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		slog.Warn("Failed to parse page URL for links", "url", pageURL, "error", err)
		return nil
	}

	doc, err := s.fetchDocument(ctx, metrics.PassLinks, pageURL)
	if err != nil {
		slog.Warn("Failed to extract links", "url", pageURL, "error", err)
		return nil
	}

	var links []string
	for _, link := range parser.ExtractLinks(doc, base) {
		if len(links) == MaxLinksPerPage {
			break
		}
		if !job.sameDomain(link) || job.isVisited(link) {
			continue
		}
		links = append(links, link)
	}

	metrics.ObserveLinks(len(links))
	slog.Debug("Extracted internal links", "url", pageURL, "links", len(links))
	return links
}
