// Package fetch - HTML to Markdown conversion.
package fetch

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var multiNewlinePattern = regexp.MustCompile(`\n{3,}`)

// toMarkdown converts an HTML subtree to simplified markdown: ATX
// headings, fenced code blocks, images stripped, useless links
// collapsed to their text, blank-line runs collapsed.
func toMarkdown(n *html.Node) string {
	var sb strings.Builder
	renderMarkdown(n, &sb, 0)

	out := sb.String()
	out = multiNewlinePattern.ReplaceAllString(out, "\n\n")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, "    ") { // keep code indentation
			lines[i] = strings.TrimRight(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func renderMarkdown(n *html.Node, sb *strings.Builder, depth int) {
	if depth > 60 {
		return
	}

	switch n.Type {
	case html.TextNode:
		text := strings.Join(strings.Fields(n.Data), " ")
		if text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "img":
			return // images stripped
		case "br":
			sb.WriteString("\n")
			return
		case "h1":
			sb.WriteString("\n\n# ")
		case "h2":
			sb.WriteString("\n\n## ")
		case "h3":
			sb.WriteString("\n\n### ")
		case "h4":
			sb.WriteString("\n\n#### ")
		case "h5":
			sb.WriteString("\n\n##### ")
		case "h6":
			sb.WriteString("\n\n###### ")
		case "p", "div", "section", "table", "ul", "ol", "blockquote":
			sb.WriteString("\n\n")
		case "li":
			sb.WriteString("\n- ")
		case "pre":
			sb.WriteString("\n\n```\n")
			// pre content keeps raw text, not markdown rendering
			sb.WriteString(strings.TrimRight(rawText(n), "\n"))
			sb.WriteString("\n```\n\n")
			return
		case "code":
			sb.WriteString("`")
		case "strong", "b":
			sb.WriteString("**")
		case "em", "i":
			sb.WriteString("*")
		case "a":
			if href := linkTarget(n); href != "" {
				sb.WriteString("[")
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderMarkdown(c, sb, depth+1)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			sb.WriteString("\n\n")
		case "code":
			trimTrailingSpace(sb)
			sb.WriteString("` ")
		case "strong", "b":
			trimTrailingSpace(sb)
			sb.WriteString("** ")
		case "em", "i":
			trimTrailingSpace(sb)
			sb.WriteString("* ")
		case "a":
			if href := linkTarget(n); href != "" {
				// trim the space the last text node appended so the
				// closing bracket hugs the link text
				trimTrailingSpace(sb)
				sb.WriteString("](" + href + ") ")
			}
		}
	}
}

// linkTarget returns the href worth keeping, or "" when the link
// should collapse to its text (bare, hash, or javascript: links).
func linkTarget(n *html.Node) string {
	href := strings.TrimSpace(attrValue(n, "href"))
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") {
		return ""
	}
	if textContent(n) == href {
		return "" // bare link, the text already is the URL
	}
	return href
}

// rawText extracts text preserving line structure, for code blocks.
func rawText(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		if node.Type == html.ElementNode && node.Data == "br" {
			sb.WriteString("\n")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return sb.String()
}

func trimTrailingSpace(sb *strings.Builder) {
	s := sb.String()
	trimmed := strings.TrimRight(s, " ")
	if len(trimmed) != len(s) {
		sb.Reset()
		sb.WriteString(trimmed)
	}
}
