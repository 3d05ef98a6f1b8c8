package crawler

import (
	"net/url"
	"strings"
)

// ErrorTitle is the title of the record kept for a page that could not be extracted.
const ErrorTitle = "Error"

// PageRecord is the extracted text of one visited page.
type PageRecord struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Failed reports whether the record stands in for a page that could not be extracted.
func (p PageRecord) Failed() bool {
	return p.Title == ErrorTitle && strings.HasPrefix(p.Content, "Error extracting content from ")
}

// ScrapeResult is everything one ScrapeSite call produced.
type ScrapeResult struct {
	Content        string       `json:"content"`
	PageCount      int          `json:"pageCount"`
	Pages          []PageRecord `json:"pages"`
	PagesProcessed int          `json:"pagesProcessed"`
}

// FailedPages counts records that stand in for failed extractions.
func (r *ScrapeResult) FailedPages() int {
	n := 0
	for _, p := range r.Pages {
		if p.Failed() {
			n++
		}
	}
	return n
}

// crawlJob is the mutable state of a single ScrapeSite call.
type crawlJob struct {
	rootURL   string
	domain    string
	maxPages  int
	visited   map[string]struct{}
	pageCount int
	pages     []PageRecord
}

func newCrawlJob(root *url.URL, maxPages int) *crawlJob {
	return &crawlJob{
		rootURL:  root.String(),
		domain:   root.Hostname(),
		maxPages: maxPages,
		visited:  make(map[string]struct{}),
	}
}

func (j *crawlJob) exhausted() bool {
	return j.pageCount >= j.maxPages
}

func (j *crawlJob) isVisited(pageURL string) bool {
	_, ok := j.visited[pageURL]
	return ok
}

// markVisited records pageURL against the page budget.
func (j *crawlJob) markVisited(pageURL string) {
	j.visited[pageURL] = struct{}{}
	j.pageCount++
}

func (j *crawlJob) sameDomain(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), j.domain)
}

func (j *crawlJob) result() *ScrapeResult {
	contents := make([]string, len(j.pages))
	for i, p := range j.pages {
		contents[i] = p.Content
	}
	pages := j.pages
	if pages == nil {
		pages = []PageRecord{}
	}
	return &ScrapeResult{
		Content:        strings.Join(contents, "\n\n"),
		PageCount:      j.pageCount,
		Pages:          pages,
		PagesProcessed: len(pages),
	}
}
