// Package config provides configuration management for the site crawler.
// It defines configuration structures and default values for crawl, storage,
// output, logging and service parameters.
package config

import (
	"net/url"
	"time"
)

// DefaultUserAgent is a desktop browser User-Agent. Many small-business sites
// serve a stripped page or a 403 to obvious bot agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher backends
const (
	FetcherHTTP  = "http"
	FetcherColly = "colly"
)

// Output formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// LogConfig controls the slog logger
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	File   string `mapstructure:"file" yaml:"file"`     // Optional log file, rotated by size
	Format string `mapstructure:"format" yaml:"format"` // json or text
}

// ServerConfig controls the HTTP service started by "sitecorpus serve"
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`                       // Listen address
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // Upper bound for a scrape request
}

// CrawlConfig holds crawler configuration
type CrawlConfig struct {
	// Crawl parameters
	RootURL        string        `mapstructure:"root_url" yaml:"root_url"`               // Site entry point
	MaxPages       int           `mapstructure:"max_pages" yaml:"max_pages"`             // Page budget per crawl
	RequestDelay   time.Duration `mapstructure:"request_delay" yaml:"request_delay"`     // Minimum delay between requests to one host (0=none)
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // HTTP request timeout
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`           // HTTP User-Agent header
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`   // Response bodies are truncated past this size
	Fetcher        string        `mapstructure:"fetcher" yaml:"fetcher"`                 // http or colly

	// Persistence
	DatabasePath  string `mapstructure:"database_path" yaml:"database_path"`   // Path to SQLite database file
	IntegrationID string `mapstructure:"integration_id" yaml:"integration_id"` // Owner of persisted content; empty disables persistence in the CLI

	// Output
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"` // text, json or markdown
	OutputPath   string `mapstructure:"output_path" yaml:"output_path"`     // Empty writes to stdout

	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *CrawlConfig {
	return &CrawlConfig{
		MaxPages:       10,
		RequestDelay:   0,
		RequestTimeout: 30 * time.Second,
		UserAgent:      DefaultUserAgent,
		MaxBodyBytes:   5 * 1024 * 1024,
		Fetcher:        FetcherHTTP,
		DatabasePath:   "./sitecorpus.db",
		OutputFormat:   FormatText,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 5 * time.Minute,
		},
	}
}

// Validate checks if the configuration is valid
func (c *CrawlConfig) Validate() error {
	// Note: RootURL is optional here - the serve command receives it per request

	if c.RootURL != "" {
		if err := ValidateRootURL(c.RootURL); err != nil {
			return err
		}
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RequestDelay < 0 {
		c.RequestDelay = 0
	}

	if c.MaxBodyBytes <= 0 {
		return ErrInvalidBodyLimit
	}

	switch c.Fetcher {
	case FetcherHTTP, FetcherColly:
	default:
		return ErrUnknownFetcher
	}

	switch c.OutputFormat {
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		return ErrUnknownFormat
	}

	if c.IntegrationID != "" && c.DatabasePath == "" {
		return ErrEmptyDatabasePath
	}

	return nil
}

// ValidateRootURL reports whether raw is an absolute http(s) URL with a host
func ValidateRootURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return ErrInvalidRootURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidRootURL
	}
	return nil
}
