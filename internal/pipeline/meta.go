package pipeline

import (
	"strings"

	"github.com/alnah/go-ezsite/internal/dom"
	"golang.org/x/net/html"
)

// DefaultRobots is used when neither the page nor the site opts into indexing.
const DefaultRobots = "noindex, nofollow"

// Meta holds the page-level metadata rendered into the page head.
type Meta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Robots      string `yaml:"robots"`
}

// MetaSources are the fallbacks consulted after in-page metadata.
type MetaSources struct {
	FrontMatter Meta
	Site        Meta
	Indexable   bool
}

// ExtractMeta resolves page metadata. In-page values come from a
// {prefix}-meta element or a <param ve-config> carrying title, description
// or robots attributes; front matter and site config follow. Title falls back
// to the {prefix}-header label and then the first h1-h3; description to the
// first paragraph. The {prefix}-meta element is removed from the tree.
func ExtractMeta(root *html.Node, prefix string, src MetaSources) Meta {
	metaTag := prefix + "-meta"
	var inPage Meta

	for _, n := range dom.FindAll(root, func(n *html.Node) bool {
		if dom.IsElement(n, metaTag) {
			return true
		}
		_, ok := dom.Attr(n, "ve-config")
		return ok && dom.IsElement(n, "param")
	}) {
		inPage.Title = firstNonEmpty(inPage.Title, dom.AttrOr(n, "title"))
		inPage.Description = firstNonEmpty(inPage.Description, dom.AttrOr(n, "description"))
		inPage.Robots = firstNonEmpty(inPage.Robots, dom.AttrOr(n, "robots"))
		if dom.IsElement(n, metaTag) {
			dom.Remove(n)
		}
	}

	m := Meta{
		Title:       firstNonEmpty(inPage.Title, src.FrontMatter.Title, src.Site.Title),
		Description: firstNonEmpty(inPage.Description, src.FrontMatter.Description, src.Site.Description),
		Robots:      firstNonEmpty(inPage.Robots, src.FrontMatter.Robots, src.Site.Robots),
	}

	if m.Title == "" {
		if h := dom.Find(root, dom.ByTag(prefix+"-header")); h != nil {
			m.Title = firstNonEmpty(dom.AttrOr(h, "label"), dom.AttrOr(h, "title"))
		}
	}
	if m.Title == "" {
		if h := dom.Find(root, dom.ByTag("h1", "h2", "h3")); h != nil {
			m.Title = collapseSpace(dom.TextContent(h))
		}
	}
	if m.Description == "" {
		if p := dom.Find(root, dom.ByTag("p")); p != nil {
			m.Description = collapseSpace(dom.TextContent(p))
		}
	}
	if m.Robots == "" && !src.Indexable {
		m.Robots = DefaultRobots
	}
	return m
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
