// Package logging configures the process-wide slog logger.
// Logs go to stderr so that a crawl's corpus can be piped from stdout.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/masahif/sitecorpus/internal/config"
)

// Config represents the logging configuration
type Config struct {
	Level      slog.Level
	FilePath   string
	MaxSize    int64 // MB, 0 disables rotation
	MaxBackups int
	Console    bool
	JSON       bool
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		FilePath:   "",
		MaxSize:    50,
		MaxBackups: 3,
		Console:    true,
		JSON:       true,
	}
}

// FromLogConfig builds a Config from the log section of the crawl config
func FromLogConfig(lc config.LogConfig) Config {
	cfg := *DefaultConfig()
	cfg.Level = ParseLevel(lc.Level)
	cfg.FilePath = lc.File
	cfg.JSON = !strings.EqualFold(lc.Format, "text")
	return cfg
}

// ParseLevel converts a string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new logger with the given configuration
func NewLogger(cfg Config) (*slog.Logger, error) {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, os.Stderr)
	}

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		fileWriter, err := NewRotatingFileWriter(cfg.FilePath, cfg.MaxSize*1024*1024, cfg.MaxBackups)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, fileWriter)
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	writer := writers[0]
	if len(writers) > 1 {
		writer = io.MultiWriter(writers...)
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return slog.New(handler), nil
}

// SetDefault creates and sets a default logger with the given configuration
func SetDefault(cfg Config) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
