package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skippedHrefPrefixes never point at another crawlable page.
var skippedHrefPrefixes = []string{"#", "javascript:", "mailto:", "tel:"}

// ExtractLinks returns the absolute http(s) target of every anchor in doc, in
// document order, resolved against pageURL. A URL is reported once.
func ExtractLinks(doc *Document, pageURL *url.URL) []string {
	var links []string
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, ok := ResolveHref(pageURL, href)
		if !ok {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

// ResolveHref turns an anchor href into an absolute http(s) URL. It reports
// false for empty, in-page, script, mail and phone links and for any other scheme.
func ResolveHref(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, prefix := range skippedHrefPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	var resolved *url.URL
	switch {
	case ref.IsAbs():
		resolved = ref
	case base == nil:
		return "", false
	default:
		resolved = base.ResolveReference(ref)
	}

	if !isAllowedScheme(resolved.Scheme) || resolved.Host == "" {
		return "", false
	}
	if ref.IsAbs() {
		return href, true
	}
	return resolved.String(), true
}

func isAllowedScheme(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https":
		return true
	}
	return false
}
