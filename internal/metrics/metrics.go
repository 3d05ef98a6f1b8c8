// Package metrics exposes Prometheus collectors for crawls and the HTTP service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Page outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Fetch passes.
const (
	PassContent = "content"
	PassLinks   = "links"
)

// Scrape outcomes.
const (
	ScrapeCompleted = "completed"
	ScrapeRejected  = "rejected"
	ScrapeCanceled  = "canceled"
)

var (
	pagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecorpus_pages_total",
			Help: "Pages recorded by crawls, labeled by site and status.",
		},
		[]string{"site", "status"},
	)

	fetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitecorpus_fetch_duration_seconds",
			Help:    "Histogram of page fetch latencies, labeled by pass.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"pass"},
	)

	fetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecorpus_fetch_errors_total",
			Help: "Failed page fetches, labeled by pass.",
		},
		[]string{"pass"},
	)

	bytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecorpus_bytes_total",
			Help: "Bytes of decoded page bodies, labeled by site.",
		},
		[]string{"site"},
	)

	linksPerPage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitecorpus_links_per_page",
			Help:    "Internal links kept per expanded page.",
			Buckets: []float64{0, 1, 2, 5, 10, 15},
		},
	)

	scrapesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecorpus_scrapes_total",
			Help: "Site scrapes, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	activeScrapes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitecorpus_active_scrapes",
			Help: "Number of site scrapes in progress.",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecorpus_http_requests_total",
			Help: "Total number of API requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitecorpus_http_request_duration_seconds",
			Help:    "Histogram of API request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
		},
		[]string{"method", "route"},
	)
)

// SanitizeSite reduces a URL to its lowercase hostname, or "unknown".
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage counts one recorded page.
func ObservePage(pageURL, status string) {
	pagesTotal.WithLabelValues(SanitizeSite(pageURL), status).Inc()
}

// ObserveFetch records the latency and outcome of one fetch.
func ObserveFetch(pass, pageURL string, bytes int, duration time.Duration, err error) {
	fetchDurationSeconds.WithLabelValues(pass).Observe(duration.Seconds())
	if err != nil {
		fetchErrorsTotal.WithLabelValues(pass).Inc()
		return
	}
	if bytes > 0 {
		bytesTotal.WithLabelValues(SanitizeSite(pageURL)).Add(float64(bytes))
	}
}

// ObserveLinks records how many links an expanded page contributed.
func ObserveLinks(n int) {
	linksPerPage.Observe(float64(n))
}

// ScrapeStarted marks a scrape as in progress.
func ScrapeStarted() {
	activeScrapes.Inc()
}

// ScrapeFinished counts a scrape outcome and clears it from the active gauge.
func ScrapeFinished(outcome string) {
	activeScrapes.Dec()
	scrapesTotal.WithLabelValues(outcome).Inc()
}

// ObserveScrapeRejected counts a scrape refused before it started.
func ObserveScrapeRejected() {
	scrapesTotal.WithLabelValues(ScrapeRejected).Inc()
}

// ObserveHTTPRequest records one API request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
