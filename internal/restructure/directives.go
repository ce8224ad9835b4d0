package restructure

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-ezsite/internal/dom"
	"github.com/alnah/go-ezsite/internal/headline"
)

var (
	pipeSeparator = regexp.MustCompile(`\s+\|\s+`)
	attrName      = regexp.MustCompile(`^[A-Za-z_:][-A-Za-z0-9_:.]*$`)
	liClassSuffix = regexp.MustCompile(`\{(?:\.|class=)([^}]+)\}`)
)

// directive is one parsed inline or fenced pseudo-component.
type directive struct {
	attrs *headline.Attrs
	body  listBody
}

// listBody holds list item sources. HTML items come from rendered
// paragraphs; the others are raw text from code.
type listBody struct {
	items []string
	html  bool
}

// RewriteDirectives interprets inline code in paragraphs, list items and
// headings, and fenced code in a reserved language, as component directives.
func RewriteDirectives(root *html.Node, opts Options, rep *Report) {
	opts = opts.withDefaults()
	rep = ensure(rep)
	for _, code := range dom.FindAll(root, dom.ByTag("code")) {
		if attached(root, code) {
			rewriteDirective(root, code, opts, rep)
		}
	}
}

func rewriteDirective(root, code *html.Node, opts Options, rep *Report) {
	parent := code.Parent
	fenced := dom.IsElement(parent, "pre")
	switch {
	case fenced:
		if !opts.reserved(codeLanguage(code, parent)) {
			return
		}
	case dom.IsElement(parent, "p", "li"), dom.IsHeading(parent):
	default:
		return
	}

	var d directive
	if fenced {
		d = parseFenced(dom.TextContent(code))
	} else {
		d = parseInline(dom.TextContent(code))
	}
	wrapper := directiveWrapper(code, parent, fenced)

	switch {
	case d.attrs.Tag != "":
		el := buildElement(d.attrs)
		if ul := buildList(d.body, opts, rep, el); ul != nil {
			el.AppendChild(ul)
		}
		placeComponent(root, wrapper, el)
	case d.attrs.HasPresentation() && d.attrs.Len() == 0 && len(d.body.items) == 0:
		applyPresentation(mergeTarget(code, parent, wrapper), d.attrs)
		dom.Remove(wrapper)
	default:
		return
	}
	rep.Directives++
}

func codeLanguage(code, pre *html.Node) string {
	for _, n := range []*html.Node{code, pre} {
		for _, c := range dom.Classes(n) {
			if lang, ok := strings.CutPrefix(c, "language-"); ok {
				return lang
			}
		}
	}
	return ""
}

// parseInline splits code text on newlines and " | ": the first line is the
// headline, the rest are list items following any quoted arguments.
func parseInline(text string) directive {
	var lines []string
	for _, l := range strings.Split(pipeSeparator.ReplaceAllString(text, "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return directive{attrs: &headline.Attrs{}}
	}
	a := headline.Parse(lines[0], headline.Options{})
	items := append(append([]string(nil), a.Args...), lines[1:]...)
	return directive{attrs: a, body: listBody{items: items}}
}

// parseFenced reads the first line as a component headline and the rest as
// a markdown list.
func parseFenced(text string) directive {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	a := parseComponentHeadline(lines[0])
	items := append(append([]string(nil), a.Args...), groupItems(lines[1:])...)
	return directive{attrs: a, body: listBody{items: items}}
}

// parseComponentHeadline accepts a leading ".tag-name" as the tag.
func parseComponentHeadline(line string) *headline.Attrs {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, ".") {
		word, rest, _ := strings.Cut(line[1:], " ")
		if headline.IsCustomElementName(word) {
			a := headline.Parse(rest, headline.Options{})
			a.Tag = word
			return a
		}
	}
	return headline.Parse(line, headline.Options{})
}

// groupItems builds list items: "- " starts an item, other lines continue
// the previous one.
func groupItems(lines []string) []string {
	var items []string
	for _, l := range lines {
		t := strings.TrimSpace(l)
		switch {
		case t == "":
		case t == "-":
			items = append(items, "")
		case strings.HasPrefix(t, "- "):
			items = append(items, strings.TrimSpace(t[2:]))
		case len(items) == 0:
			items = append(items, t)
		default:
			items[len(items)-1] += " " + t
		}
	}
	return items
}

// directiveWrapper returns the node a directive replaces.
func directiveWrapper(code, parent *html.Node, fenced bool) *html.Node {
	if fenced {
		return parent
	}
	if dom.IsElement(dom.PrevElement(code), "img", "a", "em", "strong") {
		return code
	}
	if dom.IsElement(parent, "p") && dom.OwnText(parent) == "" && len(dom.Children(parent)) == 1 {
		return parent
	}
	return code
}

// mergeTarget picks the element receiving class/style/id of a tagless
// directive.
func mergeTarget(code, parent, wrapper *html.Node) *html.Node {
	prev := dom.PrevElement(code)
	switch {
	case dom.IsElement(prev, "em", "strong"):
		dom.Rename(prev, "span")
		return prev
	case dom.IsElement(prev, "a", "img"):
		return prev
	case dom.IsElement(parent, "li") && parent.Parent != nil:
		return parent.Parent
	case wrapper.Parent != nil:
		return wrapper.Parent
	}
	return parent
}

func applyPresentation(target *html.Node, a *headline.Attrs) {
	if a.ID != "" {
		dom.SetAttr(target, "id", a.ID)
	}
	dom.AddClass(target, a.Classes...)
	if a.Style != "" {
		dom.SetAttr(target, "style", a.Style)
	}
}

// placeComponent swaps wrapper for el. A page keeps a single header and
// footer: a new one replaces the existing element of the same tag.
func placeComponent(root, wrapper, el *html.Node) {
	if _, kind, ok := strings.Cut(el.Data, "-"); ok && (kind == "header" || kind == "footer") {
		existing := dom.Find(root, func(n *html.Node) bool {
			return dom.IsElement(n, el.Data) && n != el
		})
		if existing != nil {
			dom.ReplaceWith(existing, el)
			dom.Remove(wrapper)
			return
		}
	}
	dom.ReplaceWith(wrapper, el)
}

// buildElement creates the custom element described by a.
func buildElement(a *headline.Attrs) *html.Node {
	el := dom.NewElement(a.Tag)
	if a.ID != "" {
		dom.SetAttr(el, "id", a.ID)
	}
	if len(a.Classes) > 0 {
		dom.SetAttr(el, "class", a.Class())
	}
	if a.Style != "" {
		dom.SetAttr(el, "style", a.Style)
	}
	for _, v := range a.Values {
		if attrName.MatchString(v.Key) {
			dom.SetAttr(el, v.Key, v.Val)
		}
	}
	return el
}

// buildList renders body items into a list element, or returns nil.
func buildList(body listBody, opts Options, rep *Report, owner *html.Node) *html.Node {
	if len(body.items) == 0 {
		return nil
	}
	var ul *html.Node
	if opts.InlineRenderer != nil {
		ul = renderList(body.items, opts.InlineRenderer)
		if ul == nil {
			rep.diag(ErrUnresolvedListBody, owner, "")
		}
	}
	if ul == nil {
		ul = plainList(body)
	}
	applyItemClasses(ul)
	return ul
}

func renderList(items []string, r InlineRenderer) *html.Node {
	var sb strings.Builder
	for _, it := range items {
		sb.WriteString("- ")
		sb.WriteString(it)
		sb.WriteString("\n")
	}
	out, err := r.RenderMarkdown(sb.String())
	if err != nil {
		return nil
	}
	nodes, err := dom.ParseFragment(out, nil)
	if err != nil {
		return nil
	}
	for _, n := range nodes {
		if dom.IsElement(n, "ul", "ol") {
			return n
		}
	}
	return nil
}

func plainList(body listBody) *html.Node {
	ul := dom.NewElement("ul")
	for _, it := range body.items {
		li := dom.NewElement("li")
		if body.html {
			if nodes, err := dom.ParseFragment(it, li); err == nil {
				for _, n := range nodes {
					li.AppendChild(n)
				}
			}
		} else {
			li.AppendChild(dom.NewText(it))
		}
		ul.AppendChild(li)
	}
	return ul
}

// applyItemClasses moves a trailing "{.a,b}" or "{class=a,b}" of each list
// item into its class list.
func applyItemClasses(list *html.Node) {
	for _, li := range dom.FindAll(list, dom.ByTag("li")) {
		m := liClassSuffix.FindStringSubmatch(dom.TextContent(li))
		if m == nil {
			continue
		}
		for _, c := range strings.Split(m[1], ",") {
			dom.AddClass(li, strings.TrimSpace(c))
		}
		_ = dom.SetInnerHTML(li, strings.TrimSpace(strings.Replace(dom.InnerHTML(li), m[0], "", 1)))
	}
}

func attached(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}
