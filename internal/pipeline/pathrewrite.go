package pipeline

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteBasePath prefixes root-relative links with the site base path, as
// needed when a site is served from a sub-path such as GitHub Pages'
// /{repo}/. If baseURL is empty or "/", returns the HTML unchanged.
//
// Rewrites:
//   - a[href]: root-relative links not already under the base path
//   - img[src]: root-relative images not already under the base path
//
// Does NOT rewrite:
//   - relative paths (resolved by the browser against the page)
//   - protocol-relative URLs (//host/path), absolute URLs, fragments
func RewriteBasePath(htmlContent, baseURL string) (string, error) {
	base := normalizeBase(baseURL)
	if base == "" {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, base)

	return renderHTML(doc, isFragment)
}

// RewriteBasePathTree applies RewriteBasePath to an already parsed tree.
func RewriteBasePathTree(n *html.Node, baseURL string) {
	if base := normalizeBase(baseURL); base != "" {
		rewriteNode(n, base)
	}
}

// WithBasePath returns a root-relative path prefixed with the base path.
// Other values, and paths already under the base, are returned unchanged.
func WithBasePath(p, baseURL string) string {
	base := normalizeBase(baseURL)
	if base == "" || !isRootRelative(p) || underBase(p, base) {
		return p
	}
	return base + p
}

// normalizeBase returns "/seg[/seg...]" or "" when no prefix applies.
// Absolute base URLs contribute their path only.
func normalizeBase(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		baseURL = u.Path
	}
	trimmed := strings.Trim(baseURL, "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	// Wrap nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteNode traverses the DOM and prefixes root-relative paths.
func rewriteNode(n *html.Node, base string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.A:
			rewriteAttr(n, "href", base)
		case atom.Img:
			rewriteAttr(n, "src", base)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, base)
	}
}

// rewriteAttr rewrites a single attribute if it's a root-relative path
// outside the base.
func rewriteAttr(n *html.Node, attrName, base string) {
	for i, attr := range n.Attr {
		if attr.Key != attrName {
			continue
		}
		if !isRootRelative(attr.Val) || underBase(attr.Val, base) {
			continue
		}
		n.Attr[i].Val = base + attr.Val
	}
}

// isRootRelative returns true for "/path" but not "//host/path".
func isRootRelative(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//")
}

// underBase reports whether p is the base itself or below it.
func underBase(p, base string) bool {
	return p == base || strings.HasPrefix(p, base+"/") ||
		strings.HasPrefix(p, base+"?") || strings.HasPrefix(p, base+"#")
}
