package restructure

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-ezsite/internal/dom"
	"github.com/alnah/go-ezsite/internal/headline"
)

var (
	componentLine  = regexp.MustCompile(`^\s*\.\w+-\w+`)
	imageAttrsText = regexp.MustCompile(`^\s*\{([^}]*)\}\s*$`)
	paramTag       = regexp.MustCompile(`^\w+-\w+`)
)

// ConvertElements is the final pass: entity links, bare images, component
// paragraphs and param placeholders become custom elements.
func ConvertElements(root *html.Node, opts Options, rep *Report) {
	opts = opts.withDefaults()
	rep = ensure(rep)
	convertAnchors(root, opts, rep)
	if opts.ConvertImages {
		convertImages(root, opts, rep)
	}
	convertComponentBlocks(root, opts, rep)
	convertParams(root, rep)
}

func convertAnchors(root *html.Node, opts Options, rep *Report) {
	for _, a := range dom.FindAll(root, dom.ByTag("a")) {
		href := dom.AttrOr(a, "href")
		if href == "" || strings.HasPrefix(href, "mailto:") {
			continue
		}
		u, err := url.Parse(href)
		if err != nil {
			continue
		}
		var path []string
		for _, seg := range strings.Split(u.Path, "/") {
			if seg != "" {
				path = append(path, seg)
			}
		}
		if len(path) == 0 {
			continue
		}
		if path[0] == "zoom" {
			dom.AddClass(a, "zoom")
			dom.SetAttr(a, "rel", "nofollow")
			continue
		}
		if qid := path[len(path)-1]; headline.IsQID(qid) {
			box := dom.NewElement(opts.component("entity-infobox"), html.Attribute{Key: "qid", Val: qid})
			dom.MoveChildren(box, a)
			dom.ReplaceWith(a, box)
			rep.Components++
		}
	}
}

func convertImages(root *html.Node, opts Options, rep *Report) {
	for _, img := range dom.FindAll(root, dom.ByTag("img")) {
		if img.Parent == nil || dom.HasClass(img.Parent, "card") {
			continue
		}
		el := dom.NewElement(opts.component("image"),
			html.Attribute{Key: "src", Val: dom.AttrOr(img, "src")},
			html.Attribute{Key: "alt", Val: dom.AttrOr(img, "alt")},
		)
		dom.AddClass(el, dom.Classes(img)...)

		para := img.Parent
		attrs, sole := imageParagraph(para, img)
		if attrs != nil {
			applyPresentation(el, attrs)
			for _, v := range attrs.Values {
				if attrName.MatchString(v.Key) {
					dom.SetAttr(el, v.Key, v.Val)
				}
			}
		}
		if !hasAlignment(el) {
			dom.SetAttr(el, "left", "")
		}

		if sole {
			carryIdentity(para, el)
			dom.ReplaceWith(para, el)
		} else {
			dom.ReplaceWith(img, el)
		}
		rep.Components++
	}
}

// imageParagraph reports whether img is the only content of p, optionally
// followed by a "{attrs}" text, and returns those attributes.
func imageParagraph(p, img *html.Node) (*headline.Attrs, bool) {
	if !dom.IsElement(p, "p") {
		return nil, false
	}
	var attrs *headline.Attrs
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c == img, dom.IsBlank(c):
		case c.Type == html.TextNode && attrs == nil && imageAttrsText.MatchString(c.Data):
			attrs = headline.Parse(imageAttrsText.FindStringSubmatch(c.Data)[1], headline.Options{})
		default:
			return nil, false
		}
	}
	return attrs, true
}

func hasAlignment(el *html.Node) bool {
	for _, k := range []string{"full", "right"} {
		if _, ok := dom.Attr(el, k); ok || dom.HasClass(el, k) {
			return true
		}
	}
	return false
}

// convertComponentBlocks turns paragraphs and blockquotes whose text starts
// with ".tag-name" into that element; a following list becomes its body.
func convertComponentBlocks(root *html.Node, opts Options, rep *Report) {
	for _, n := range dom.FindAll(root, dom.ByTag("p", "blockquote")) {
		if !attached(root, n) || !componentLine.MatchString(dom.TextContent(n)) {
			continue
		}
		if dom.IsElement(n, "p") && dom.Closest(n.Parent, dom.ByTag("blockquote")) != nil {
			continue
		}

		lines := strings.Split(strings.TrimSpace(blockHTML(n)), "\n")
		a := parseComponentHeadline(html.UnescapeString(stripTags(lines[0])))
		if a.Tag == "" {
			continue
		}
		el := buildElement(a)
		body := listBody{items: append(append([]string(nil), a.Args...), groupItems(lines[1:])...), html: true}
		if ul := buildList(body, opts, rep, el); ul != nil {
			el.AppendChild(ul)
		}
		if next := dom.NextElement(n); dom.IsElement(next, "ul") {
			dom.Append(el, next)
			applyItemClasses(next)
		}
		carryIdentity(n, el)
		dom.ReplaceWith(n, el)
		rep.Components++
	}
}

// blockHTML returns the inner HTML of a paragraph, or of the paragraphs of a
// blockquote joined by newlines.
func blockHTML(n *html.Node) string {
	if dom.IsElement(n, "p") {
		return dom.InnerHTML(n)
	}
	var parts []string
	for _, c := range dom.Children(n) {
		parts = append(parts, dom.InnerHTML(c))
	}
	return strings.Join(parts, "\n")
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(s string) string { return tagPattern.ReplaceAllString(s, "") }

// convertParams turns <param tag-name a="b"> into <tag-name a="b">. The
// ve-config param is page configuration and stays.
func convertParams(root *html.Node, rep *Report) {
	for _, p := range dom.FindAll(root, dom.ByTag("param")) {
		tag := ""
		for _, a := range p.Attr {
			if a.Key == "ve-config" || strings.HasPrefix(a.Key, "data-") || strings.HasPrefix(a.Key, "aria-") {
				continue
			}
			if paramTag.MatchString(a.Key) {
				tag = a.Key
				break
			}
		}
		if tag == "" {
			continue
		}
		el := dom.NewElement(tag)
		for _, a := range p.Attr {
			if a.Key != tag {
				el.Attr = append(el.Attr, a)
			}
		}
		dom.ReplaceWith(p, el)
		rep.Components++
	}
}

// carryIdentity keeps the positional id of a replaced segment.
func carryIdentity(from, to *html.Node) {
	for _, k := range []string{"data-id", "id"} {
		if v, ok := dom.Attr(from, k); ok {
			if _, has := dom.Attr(to, k); !has {
				dom.SetAttr(to, k, v)
			}
		}
	}
	if dom.HasClass(from, "segment") {
		dom.AddClass(to, "segment")
	}
}
