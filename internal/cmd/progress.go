package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/masahif/sitecorpus/internal/crawler"
)

// progress shows a terminal spinner on stderr while a crawl runs. A nil or
// disabled progress is a no-op.
type progress struct {
	spinner *spinner.Spinner
}

func newProgress(enabled bool) *progress {
	if !enabled {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriterFile(os.Stderr))
	return &progress{spinner: s}
}

func (p *progress) start(rootURL string) {
	if p.spinner == nil {
		return
	}
	p.spinner.Suffix = " crawling " + rootURL
	p.spinner.Start()
}

// onPage matches crawler.PageHook.
func (p *progress) onPage(page crawler.PageRecord, pageCount, maxPages int) {
	if p.spinner == nil {
		return
	}
	p.spinner.Lock()
	p.spinner.Suffix = fmt.Sprintf(" %d/%d %s", pageCount, maxPages, page.URL)
	p.spinner.Unlock()
}

func (p *progress) stop() {
	if p.spinner == nil {
		return
	}
	p.spinner.Stop()
}
