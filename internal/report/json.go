package report

import (
	"encoding/json"
	"io"

	"github.com/masahif/sitecorpus/internal/crawler"
)

// JSONWriter outputs the result in the same JSON shape the API returns.
type JSONWriter struct {
	baseWriter
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents nested values by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs result as one JSON document followed by a newline.
func (w *JSONWriter) Write(result *crawler.ScrapeResult) (int, error) {
	var data []byte
	var err error
	if w.indent != "" {
		data, err = json.MarshalIndent(result, "", w.indent)
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
