package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/masahif/sitecorpus/internal/crawler"
)

// MarkdownWriter outputs a human readable summary followed by every page.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs result in Markdown format.
func (w *MarkdownWriter) Write(result *crawler.ScrapeResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeSummary(md, result)
	w.writePages(md, result)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *crawler.ScrapeResult) {
	md.H1("Site Content Report")
	md.PlainText("")

	failed := result.FailedPages()
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Pages Crawled", strconv.Itoa(result.PageCount)},
			{"Pages Failed", strconv.Itoa(failed)},
			{"Corpus Size", strconv.Itoa(len(result.Content)) + " bytes"},
		},
	})
	md.PlainText("")

	if failed > 0 {
		md.Warningf("%d of %d pages could not be extracted.", failed, result.PageCount)
		md.PlainText("")
	}

	if len(result.Pages) == 0 {
		return
	}
	rows := make([][]string, len(result.Pages))
	for i, page := range result.Pages {
		status := "ok"
		if page.Failed() {
			status = "error"
		}
		rows[i] = []string{strconv.Itoa(i + 1), page.URL, page.Title, status}
	}
	md.H2("Pages")
	md.Table(markdown.TableSet{
		Header: []string{"#", "URL", "Title", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writePages(md *markdown.Markdown, result *crawler.ScrapeResult) {
	for _, page := range result.Pages {
		title := page.Title
		if title == "" {
			title = page.URL
		}
		md.H2(title)
		md.PlainText(page.URL)
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlight("text"), page.Content)
		md.PlainText("")
	}
}
