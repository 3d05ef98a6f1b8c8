package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher is a Fetcher backed by a gocolly collector. Charset detection
// and body limits are left to colly; a body that reaches the limit is
// reported as truncated.
type CollyFetcher struct {
	base         *colly.Collector
	maxBodyBytes int64
}

// NewCollyFetcher creates a colly based fetcher with the same knobs as NewHTTPClient.
func NewCollyFetcher(userAgent string, timeout time.Duration, maxBodyBytes int64) *CollyFetcher {
	opts := []colly.CollectorOption{
		colly.Async(false),
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.DetectCharset(),
		colly.ParseHTTPErrorResponse(),
	}
	if maxBodyBytes > 0 {
		opts = append(opts, colly.MaxBodySize(int(maxBodyBytes)))
	}
	c := colly.NewCollector(opts...)
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}
	return &CollyFetcher{base: c, maxBodyBytes: maxBodyBytes}
}

type collyOutcome struct {
	resp *HTTPResponse
	err  error
}

// Fetch visits url with a fresh clone of the base collector so concurrent
// calls do not share callbacks.
func (f *CollyFetcher) Fetch(ctx context.Context, url string) (*HTTPResponse, error) {
	collector := f.base.Clone()
	start := time.Now()

	var result *HTTPResponse
	var fetchErr error

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHTML)
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})
	collector.OnResponse(func(r *colly.Response) {
		result = &HTTPResponse{
			StatusCode:  r.StatusCode,
			Headers:     r.Headers.Clone(),
			Body:        append([]byte(nil), r.Body...),
			ContentType: r.Headers.Get("Content-Type"),
			FinalURL:    r.Request.URL.String(),
			Truncated:   f.maxBodyBytes > 0 && int64(len(r.Body)) >= f.maxBodyBytes,
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan collyOutcome, 1)
	go func() {
		err := collector.Visit(url)
		if err == nil {
			err = fetchErr
		}
		done <- collyOutcome{resp: result, err: err}
	}()

	var out collyOutcome
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case out = <-done:
	}

	if out.err != nil {
		return nil, fmt.Errorf("colly visit failed: %w", out.err)
	}
	if out.resp == nil {
		return nil, fmt.Errorf("colly visit failed: no response for %s", url)
	}
	if out.resp.StatusCode < 200 || out.resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: out.resp.StatusCode}
	}
	elapsed := time.Since(start)
	out.resp.Metrics = HTTPMetrics{DownloadTime: elapsed}
	return out.resp, nil
}

// Close is a no-op; colly owns its transport.
func (f *CollyFetcher) Close() {}
