// Package fetch - HTML metadata extraction and content selection.
package fetch

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// pageMeta holds head-level metadata, extracted before any stripping.
type pageMeta struct {
	Title       string
	Description string
	Favicon     string
	OGImage     string
	SiteName    string
}

// extractMeta reads title/description/favicon/og tags from the head.
// Must run before stripBoilerplate so removed nodes cannot hide tags.
func extractMeta(doc *html.Node) pageMeta {
	var meta pageMeta

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if meta.Title == "" && n.FirstChild != nil {
					meta.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name := attrValue(n, "name")
				property := attrValue(n, "property")
				content := attrValue(n, "content")
				switch {
				case name == "description" && meta.Description == "":
					meta.Description = strings.TrimSpace(content)
				case property == "og:description" && meta.Description == "":
					meta.Description = strings.TrimSpace(content)
				case property == "og:image" && meta.OGImage == "":
					meta.OGImage = strings.TrimSpace(content)
				case property == "og:site_name" && meta.SiteName == "":
					meta.SiteName = strings.TrimSpace(content)
				case property == "og:title" && meta.Title == "":
					meta.Title = strings.TrimSpace(content)
				}
			case "link":
				rel := strings.ToLower(attrValue(n, "rel"))
				if meta.Favicon == "" && (rel == "icon" || rel == "shortcut icon" || rel == "apple-touch-icon") {
					meta.Favicon = strings.TrimSpace(attrValue(n, "href"))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	return meta
}

// boilerplateTags are removed wholesale from the working tree.
var boilerplateTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"svg": true, "nav": true, "header": true, "footer": true,
	"aside": true, "form": true, "template": true,
}

// boilerplateMarkers flag ad and comment containers by class or id.
var boilerplateMarkers = []string{"advert", "comment", "sidebar", "cookie-banner"}

// stripBoilerplate removes non-content elements in place.
func stripBoilerplate(n *html.Node) {
	var c *html.Node
	for c = n.FirstChild; c != nil; {
		next := c.NextSibling
		if isBoilerplate(c) {
			n.RemoveChild(c)
		} else {
			stripBoilerplate(c)
		}
		c = next
	}
}

func isBoilerplate(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if boilerplateTags[n.Data] {
		return true
	}
	if attrValue(n, "aria-hidden") == "true" {
		return true
	}

	marker := strings.ToLower(attrValue(n, "class") + " " + attrValue(n, "id"))
	for _, m := range boilerplateMarkers {
		if strings.Contains(marker, m) {
			return true
		}
	}
	// "ad" needs token matching or it would swallow "header", "gradient" etc.
	for _, field := range strings.Fields(marker) {
		if field == "ad" || field == "ads" || strings.HasPrefix(field, "ad-") {
			return true
		}
	}
	return false
}

// contentClassNames are common main-content container class/id names,
// probed in order after the structural candidates.
var contentClassNames = []string{
	"content", "main-content", "article-body", "post-content",
	"entry-content", "post", "entry",
}

// selectContainer picks the best content container: the first
// candidate whose extracted text exceeds minChars, else the body.
func selectContainer(doc *html.Node, minChars int) *html.Node {
	candidates := make([]*html.Node, 0, 4)

	if n := findElement(doc, func(n *html.Node) bool { return n.Data == "main" }); n != nil {
		candidates = append(candidates, n)
	}
	if n := findElement(doc, func(n *html.Node) bool { return n.Data == "article" }); n != nil {
		candidates = append(candidates, n)
	}
	if n := findElement(doc, func(n *html.Node) bool { return attrValue(n, "role") == "main" }); n != nil {
		candidates = append(candidates, n)
	}
	for _, name := range contentClassNames {
		name := name
		n := findElement(doc, func(n *html.Node) bool {
			marker := strings.ToLower(attrValue(n, "class") + " " + attrValue(n, "id"))
			for _, field := range strings.Fields(marker) {
				if field == name {
					return true
				}
			}
			return false
		})
		if n != nil {
			candidates = append(candidates, n)
		}
	}

	for _, c := range candidates {
		if utf8.RuneCountInString(textContent(c)) > minChars {
			return c
		}
	}

	if body := findElement(doc, func(n *html.Node) bool { return n.Data == "body" }); body != nil {
		return body
	}
	return doc
}

// findElement returns the first element node matching the predicate.
func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

// textContent extracts whitespace-normalized plain text from a node.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			text := strings.TrimSpace(node.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return strings.TrimSpace(sb.String())
}

// attrValue returns the value of an attribute, or "".
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// truncateRunes caps s at max characters, never splitting a
// multi-byte character.
func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	seen := 0
	for i := range s {
		if seen == max {
			return s[:i]
		}
		seen++
	}
	return s
}
