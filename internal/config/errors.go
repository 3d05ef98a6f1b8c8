package config

import "errors"

var (
	// ErrInvalidRootURL is returned when the root URL is not an absolute http(s) URL
	ErrInvalidRootURL = errors.New("root_url must be an absolute http(s) URL")
	// ErrInvalidMaxPages is returned when the page budget is not greater than 0
	ErrInvalidMaxPages = errors.New("max_pages must be greater than 0")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("request_timeout must be greater than 0")
	// ErrInvalidBodyLimit is returned when max_body_bytes is not greater than 0
	ErrInvalidBodyLimit = errors.New("max_body_bytes must be greater than 0")
	// ErrUnknownFetcher is returned for a fetcher other than http or colly
	ErrUnknownFetcher = errors.New("fetcher must be one of: http, colly")
	// ErrUnknownFormat is returned for an output format other than text, json or markdown
	ErrUnknownFormat = errors.New("output_format must be one of: text, json, markdown")
	// ErrEmptyDatabasePath is returned when persistence is requested without a database path
	ErrEmptyDatabasePath = errors.New("database_path cannot be empty when integration_id is set")
)
