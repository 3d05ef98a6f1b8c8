package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"

	"golang.org/x/net/html/charset"
)

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// HTTPClient is the default Fetcher, built on net/http.
type HTTPClient struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// HTTPMetrics contains timing for a single fetch.
type HTTPMetrics struct {
	TTFB         time.Duration // Time to First Byte
	DownloadTime time.Duration // Total download time
}

// HTTPResponse is a fetched page with its body decoded to UTF-8.
type HTTPResponse struct {
	StatusCode  int
	Headers     http.Header
	Body        []byte
	ContentType string
	Truncated   bool   // Body was cut at the configured limit
	FinalURL    string // After following redirects
	Metrics     HTTPMetrics
}

// NewHTTPClient creates a fetcher that sends userAgent, gives up after timeout
// and reads at most maxBodyBytes of each body. maxBodyBytes <= 0 means no limit.
func NewHTTPClient(userAgent string, timeout time.Duration, maxBodyBytes int64) *HTTPClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return &HTTPClient{
		client:       client,
		userAgent:    userAgent,
		maxBodyBytes: maxBodyBytes,
	}
}

// Fetch performs a GET request and returns the body decoded to UTF-8 using the
// charset declared by the response or the document. Non-2xx statuses are
// returned as *StatusError.
func (h *HTTPClient) Fetch(ctx context.Context, url string) (*HTTPResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", acceptHTML)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	var metrics HTTPMetrics
	var firstByte time.Time
	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() {
			firstByte = time.Now()
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !firstByte.IsZero() {
		metrics.TTFB = firstByte.Sub(start)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	body, truncated, err := h.readBody(resp.Body, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	metrics.DownloadTime = time.Since(start)

	return &HTTPResponse{
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		Body:        body,
		ContentType: contentType,
		Truncated:   truncated,
		FinalURL:    resp.Request.URL.String(),
		Metrics:     metrics,
	}, nil
}

func (h *HTTPClient) readBody(r io.Reader, contentType string) ([]byte, bool, error) {
	if h.maxBodyBytes > 0 {
		// One extra byte tells a body of exactly the limit apart from a longer one.
		r = io.LimitReader(r, h.maxBodyBytes+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}
	truncated := h.maxBodyBytes > 0 && int64(len(raw)) > h.maxBodyBytes
	if truncated {
		raw = raw[:h.maxBodyBytes]
	}
	return decodeUTF8(raw, contentType), truncated, nil
}

// decodeUTF8 converts body to UTF-8. Bodies in an unknown encoding are
// returned unchanged.
func decodeUTF8(body []byte, contentType string) []byte {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == nil {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}

// Close releases idle connections.
func (h *HTTPClient) Close() {
	h.client.CloseIdleConnections()
}
