package crawler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/masahif/sitecorpus/internal/config"
)

// ErrInvalidRootURL is returned by ScrapeSite when the root URL cannot start a crawl.
var ErrInvalidRootURL = config.ErrInvalidRootURL

// StatusError reports a response whose status code is outside 2xx.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// IsStatus reports whether err carries a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
