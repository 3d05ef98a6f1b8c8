package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	noiseSelector = "script, style, iframe, noscript, template, svg, " +
		".ad, .ads, .advert, .advertisement, .adsbygoogle, [id^='google_ads'], " +
		".sidebar, #sidebar, .widget-area"

	headingSelector = "h1, h2, h3, h4, h5, h6"

	navLinkSelector = "nav a[href], header a[href], [role='navigation'] a[href], " +
		".nav a[href], .navbar a[href], .menu a[href], .navigation a[href]"

	blockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, dt, dd, td, th, " +
		".card, .service, .item, .feature, .price, .plan, .testimonial"

	chromeSelector = "nav, header, footer, aside, .sidebar, #sidebar, " +
		".ad, .ads, .advertisement, .cookie, .cookies, .cookie-banner, .cookie-notice, " +
		"#cookie-banner, .social, .social-share, .share-buttons"
)

// mainSelectors are tried in order; the first one that yields text wins.
var mainSelectors = []string{
	"main",
	"article",
	"[role='main']",
	"#content",
	".content",
	".main-content",
	".services",
	".pricing",
	".features",
	".about",
	".products",
	".team",
	".faq",
}

// PageContent holds the sections extracted from one page.
type PageContent struct {
	Title       string
	Description string
	Headings    []string
	NavLinks    []string
	Main        string
}

// ExtractContent pulls title, description, heading outline, navigation links
// and main text out of doc. doc is left untouched.
func ExtractContent(doc *Document) PageContent {
	work := doc.Clone()
	work.Remove(noiseSelector)

	return PageContent{
		Title:       work.Title(),
		Description: work.MetaDescription(),
		Headings:    headingOutline(work),
		NavLinks:    navigationLinks(work),
		Main:        mainText(work),
	}
}

// Compose renders c as the plain-text page record stored for pageURL.
func (c PageContent) Compose(pageURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", pageURL)
	fmt.Fprintf(&b, "Title: %s\n", c.Title)
	fmt.Fprintf(&b, "Description: %s\n", c.Description)
	b.WriteString("\nSTRUCTURE:\n")
	b.WriteString(strings.Join(c.Headings, "\n"))
	b.WriteString("\n\nNAVIGATION:\n")
	b.WriteString(strings.Join(c.NavLinks, "\n"))
	b.WriteString("\n\nMAIN CONTENT:\n")
	b.WriteString(c.Main)
	return b.String()
}

func headingOutline(doc *Document) []string {
	var outline []string
	doc.Find(headingSelector).Each(func(_ int, s *goquery.Selection) {
		text := InlineText(s)
		if text == "" {
			return
		}
		outline = append(outline, fmt.Sprintf("H%d: %s", headingLevel(s.Get(0)), text))
	})
	return outline
}

func navigationLinks(doc *Document) []string {
	var links []string
	doc.Find(navLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		text := InlineText(s)
		if text == "" {
			text = collapse(s.AttrOr("title", s.AttrOr("aria-label", "")))
		}
		if text == "" {
			return
		}
		links = append(links, fmt.Sprintf("Link: %s (%s)", text, href))
	})
	return links
}

func mainText(doc *Document) string {
	for _, selector := range mainSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		if text := walkBlocks(sel); text != "" {
			return text
		}
	}

	body := doc.Clone()
	body.Remove(chromeSelector)
	if text := walkBlocks(body.Body()); text != "" {
		return text
	}
	return Text(doc.Body())
}

// walkBlocks emits the text of block-level nodes below sel in document order.
// A node that contains other block nodes contributes only its own text; the
// nested blocks are emitted on their own lines after it.
func walkBlocks(sel *goquery.Selection) string {
	var lines []string
	sel.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if level := headingLevel(s.Get(0)); level > 0 {
			if text := InlineText(s); text != "" {
				lines = append(lines, "## "+text+" ##")
			}
			return
		}
		if text := ownText(s); text != "" {
			lines = append(lines, text)
		}
	})
	return NormalizeWhitespace(strings.Join(lines, "\n"))
}

// ownText returns the inline text of s without the text of nested block nodes.
func ownText(s *goquery.Selection) string {
	if s.Find(blockSelector).Length() == 0 {
		return InlineText(s)
	}
	own := s.Clone()
	own.Find(blockSelector).Remove()
	return InlineText(own)
}

// NormalizeWhitespace collapses runs of spaces and tabs within each line and
// drops blank lines.
func NormalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = collapse(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
