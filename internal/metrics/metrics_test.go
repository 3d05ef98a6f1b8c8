package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestObservePage(t *testing.T) {
	counter := pagesTotal.WithLabelValues("pages.test", StatusError)
	before := testutil.ToFloat64(counter)

	ObservePage("https://pages.test/a", StatusError)
	ObservePage("https://PAGES.test/b", StatusError)

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("Expected 2 error pages, got %f", got)
	}
}

func TestObserveFetch(t *testing.T) {
	errCounter := fetchErrorsTotal.WithLabelValues(PassLinks)
	bytesCounter := bytesTotal.WithLabelValues("fetch.test")
	errBefore := testutil.ToFloat64(errCounter)
	bytesBefore := testutil.ToFloat64(bytesCounter)

	ObserveFetch(PassLinks, "https://fetch.test/", 0, time.Millisecond, errors.New("boom"))
	ObserveFetch(PassLinks, "https://fetch.test/", 512, time.Millisecond, nil)

	if got := testutil.ToFloat64(errCounter) - errBefore; got != 1 {
		t.Errorf("Expected 1 fetch error, got %f", got)
	}
	if got := testutil.ToFloat64(bytesCounter) - bytesBefore; got != 512 {
		t.Errorf("Expected 512 bytes, got %f", got)
	}
}

func TestScrapeLifecycle(t *testing.T) {
	completed := scrapesTotal.WithLabelValues(ScrapeCompleted)
	before := testutil.ToFloat64(completed)
	activeBefore := testutil.ToFloat64(activeScrapes)

	ScrapeStarted()
	if got := testutil.ToFloat64(activeScrapes) - activeBefore; got != 1 {
		t.Errorf("Expected one active scrape, got %f", got)
	}
	ScrapeFinished(ScrapeCompleted)

	if got := testutil.ToFloat64(activeScrapes); got != activeBefore {
		t.Errorf("Expected active scrapes back to %f, got %f", activeBefore, got)
	}
	if got := testutil.ToFloat64(completed) - before; got != 1 {
		t.Errorf("Expected one completed scrape, got %f", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveHTTPRequest(http.MethodGet, "/healthz", http.StatusOK, 10*time.Millisecond)
	ObserveLinks(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"sitecorpus_http_requests_total", "sitecorpus_links_per_page"} {
		if !strings.Contains(body, name) {
			t.Errorf("Expected %s in metrics output", name)
		}
	}
}
