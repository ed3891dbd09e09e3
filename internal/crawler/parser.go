package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Parser extracts crawlable links and basic page metadata from HTML.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
//  4. Standard library extension, well-maintained
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// ParseResult contains the information extracted from an HTML page.
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// Links contains all discovered, resolved URLs, in document order
	// and deduplicated.
	Links []string

	// TextLength is the length of the page's visible text content,
	// used by per-domain minimum-content filters.
	TextLength int
}

// followRels are the <link> rel values worth following: pagination and
// feed/canonical pointers often lead to listing pages that anchors miss.
var followRels = map[string]bool{
	"next":      true,
	"alternate": true,
	"canonical": true,
}

// NewParser creates a parser that resolves relative links against baseURL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse parses HTML content and extracts links and metadata.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{Links: make([]string, 0)}
	seen := make(map[string]bool)
	var textLen int

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			p.processElement(n, result, seen)
			if n.Data == "script" || n.Data == "style" {
				return
			}
		case html.TextNode:
			textLen += len(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	result.TextLength = textLen
	return result, nil
}

// processElement handles a single HTML element node.
func (p *Parser) processElement(n *html.Node, result *ParseResult, seen map[string]bool) {
	switch n.Data {
	case "title":
		if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		if href := getAttr(n, "href"); href != "" {
			p.addLink(href, result, seen)
		}

	case "link":
		rel := strings.ToLower(getAttr(n, "rel"))
		if !followRels[rel] {
			return
		}
		// Non-HTML alternates (RSS etc.) are filtered later by the
		// fetch content-type check.
		if href := getAttr(n, "href"); href != "" {
			p.addLink(href, result, seen)
		}
	}
}

// addLink resolves href against the base URL and appends it if new.
func (p *Parser) addLink(href string, result *ParseResult, seen map[string]bool) {
	resolved := p.resolveURL(href)
	if resolved == "" || seen[resolved] {
		return
	}
	seen[resolved] = true
	result.Links = append(result.Links, resolved)
}

// resolveURL resolves a relative URL against the base URL.
//
// Design decision: We resolve URLs rather than storing them as-is because:
//  1. Makes deduplication easier
//  2. Keeps queue keys unambiguous across pages
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		href == "#" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.baseURL.ResolveReference(u).String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
