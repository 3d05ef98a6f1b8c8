// Package report renders a ScrapeResult for people and tools.
package report

import (
	"fmt"
	"io"

	"github.com/masahif/sitecorpus/internal/config"
	"github.com/masahif/sitecorpus/internal/crawler"
)

// Writer outputs a scrape result. It returns the number of bytes written.
type Writer interface {
	Write(result *crawler.ScrapeResult) (int, error)
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// New returns the Writer for format.
func New(format string, output io.Writer) (Writer, error) {
	switch format {
	case config.FormatText, "":
		return NewTextWriter(output), nil
	case config.FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case config.FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownFormat, format)
	}
}

// TextWriter writes the combined corpus exactly as a chatbot would ingest it.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs result.Content followed by a newline.
func (w *TextWriter) Write(result *crawler.ScrapeResult) (int, error) {
	return io.WriteString(w.output, result.Content+"\n")
}
