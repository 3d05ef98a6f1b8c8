package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces out requests to the same host. A zero delay disables it.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	delay    time.Duration
}

// NewRateLimiter creates a limiter allowing one request per host every delay.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		delay:    delay,
	}
}

// Wait blocks until a request to rawURL's host may proceed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, rawURL string) error {
	if r == nil || r.delay <= 0 {
		return ctx.Err()
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL for rate limiting: %w", err)
	}

	return r.limiter(strings.ToLower(parsed.Hostname())).Wait(ctx)
}

func (r *RateLimiter) limiter(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, ok := r.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(r.delay), 1)
		r.limiters[host] = limiter
	}
	return limiter
}
