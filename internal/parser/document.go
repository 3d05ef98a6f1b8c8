// Package parser turns fetched HTML into the text and links the crawler stores.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML page that supports CSS selector queries.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from a UTF-8 HTML body.
func Parse(body []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Find returns every node matching selector in document order.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Remove detaches every node matching selector and reports how many were removed.
func (d *Document) Remove(selector string) int {
	sel := d.doc.Find(selector)
	n := sel.Length()
	sel.Remove()
	return n
}

// Body returns the <body> element, or the whole document when it has none.
func (d *Document) Body() *goquery.Selection {
	body := d.doc.Find("body").First()
	if body.Length() == 0 {
		return d.doc.Selection
	}
	return body
}

// Clone returns a deep copy that can be mutated without touching d.
func (d *Document) Clone() *Document {
	root := d.doc.Selection.Clone().Get(0)
	return &Document{doc: goquery.NewDocumentFromNode(root)}
}

// Title returns the whitespace-normalized text of the first <title>.
func (d *Document) Title() string {
	return collapse(d.doc.Find("title").First().Text())
}

// MetaDescription returns the content of <meta name="description">.
func (d *Document) MetaDescription() string {
	var desc string
	d.doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), "description") {
			return true
		}
		desc = collapse(s.AttrOr("content", ""))
		return false
	})
	return desc
}

// Text returns the readable text below sel with line breaks at block boundaries.
func Text(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	return NormalizeWhitespace(b.String())
}

// InlineText returns the text below sel on a single line.
func InlineText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	return collapse(b.String())
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.Br:
			b.WriteByte('\n')
			return
		}
	}

	block := isBlock(n)
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte('\n')
	} else if n.DataAtom == atom.Td || n.DataAtom == atom.Th {
		b.WriteByte(' ')
	}
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Dd,
		atom.Div, atom.Dl, atom.Dt, atom.Fieldset, atom.Figcaption, atom.Figure,
		atom.Footer, atom.Form, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5,
		atom.H6, atom.Header, atom.Hr, atom.Li, atom.Main, atom.Nav, atom.Ol,
		atom.P, atom.Pre, atom.Section, atom.Table, atom.Tr, atom.Ul, atom.Body:
		return true
	}
	return false
}

// headingLevel returns 1-6 for h1-h6 and 0 for anything else.
func headingLevel(n *html.Node) int {
	if n == nil || n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}
