package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, body string) *Document {
	t.Helper()
	doc, err := Parse([]byte(body))
	require.NoError(t, err)
	return doc
}

func TestExtractContentMainSelector(t *testing.T) {
	doc := mustParse(t, `<html>
<head><title>Acme</title><meta name="description" content="Plumbing services"></head>
<body>
	<nav>
		<a href="/">Home</a>
		<a href="/services">Services</a>
		<a href="#top">Top</a>
	</nav>
	<div class="sidebar"><p>Sidebar promo</p></div>
	<main>
		<h1>Welcome</h1>
		<p>We fix   leaks.</p>
		<div class="card"><h3>Drains</h3><p>Unblocked fast.</p></div>
		<ul><li>24/7</li><li>Licensed</li></ul>
	</main>
	<footer><p>Copyright</p></footer>
	<script>track()</script>
</body>
</html>`)

	content := ExtractContent(doc)

	assert.Equal(t, "Acme", content.Title)
	assert.Equal(t, "Plumbing services", content.Description)
	assert.Equal(t, []string{"H1: Welcome", "H3: Drains"}, content.Headings)
	assert.Equal(t, []string{"Link: Home (/)", "Link: Services (/services)"}, content.NavLinks)
	assert.Equal(t, "## Welcome ##\nWe fix leaks.\n## Drains ##\nUnblocked fast.\n24/7\nLicensed", content.Main)

	// the source document is not mutated by extraction
	assert.Equal(t, 1, doc.Find("script").Length())
}

func TestExtractContentKeepsContainerText(t *testing.T) {
	doc := mustParse(t, `<html><body><main>
<ul><li>Web Design<ul><li>Landing pages</li></ul></li></ul>
<div class="card">Premium plan $49<p>Includes hosting</p></div>
<li><a href="/seo">SEO Audits</a><p>Monthly reports</p></li>
</main></body></html>`)

	content := ExtractContent(doc)

	assert.Equal(t, "Web Design\nLanding pages\nPremium plan $49\nIncludes hosting\nSEO Audits\nMonthly reports", content.Main)
}

func TestExtractContentSelectorPriority(t *testing.T) {
	doc := mustParse(t, `<html><body>
	<div class="pricing"><p>From $99</p></div>
	<article><p>Article body</p></article>
	</body></html>`)

	assert.Equal(t, "Article body", ExtractContent(doc).Main)
}

func TestExtractContentSkipsEmptySelector(t *testing.T) {
	doc := mustParse(t, `<html><body>
	<main></main>
	<section class="services"><div class="service">Boiler repair</div></section>
	</body></html>`)

	assert.Equal(t, "Boiler repair", ExtractContent(doc).Main)
}

func TestExtractContentFallbackWithoutChrome(t *testing.T) {
	doc := mustParse(t, `<html><body>
	<header><p>Header tagline</p></header>
	<div class="cookie-banner"><p>We use cookies</p></div>
	<section><h2>About us</h2><p>Family run since 1980.</p></section>
	<footer><p>Footer text</p></footer>
	</body></html>`)

	main := ExtractContent(doc).Main
	assert.Equal(t, "## About us ##\nFamily run since 1980.", main)
}

func TestExtractContentFallbackToBodyText(t *testing.T) {
	doc := mustParse(t, `<html><body><div>Just   some
	
	text</div></body></html>`)

	assert.Equal(t, "Just some\ntext", ExtractContent(doc).Main)
}

func TestCompose(t *testing.T) {
	content := PageContent{
		Title:       "Acme",
		Description: "Plumbers",
		Headings:    []string{"H1: Welcome"},
		NavLinks:    []string{"Link: Home (/)"},
		Main:        "## Welcome ##\nHello",
	}

	want := strings.Join([]string{
		"URL: https://acme.test/",
		"Title: Acme",
		"Description: Plumbers",
		"",
		"STRUCTURE:",
		"H1: Welcome",
		"",
		"NAVIGATION:",
		"Link: Home (/)",
		"",
		"MAIN CONTENT:",
		"## Welcome ##",
		"Hello",
	}, "\n")

	assert.Equal(t, want, content.Compose("https://acme.test/"))
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"spaces and tabs", "a  \t b", "a b"},
		{"blank lines dropped", "a\n\n  \nb", "a\nb"},
		{"trimmed lines", "  a  \n\tb\t", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWhitespace(tt.input))
		})
	}
}
