package restructure

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-ezsite/internal/dom"
)

var anchorIDPattern = regexp.MustCompile(`^\{#([\w.:-]+)\}$`)

// ApplyAnchorIDs consumes top-level "{#identifier}" paragraphs: the
// identifier becomes the id of the nearest preceding paragraph and the
// directive paragraph is removed.
func ApplyAnchorIDs(root *html.Node, rep *Report) {
	rep = ensure(rep)
	for _, n := range dom.Children(root) {
		if !dom.IsElement(n, "p") {
			continue
		}
		m := anchorIDPattern.FindStringSubmatch(strings.TrimSpace(dom.TextContent(n)))
		if m == nil {
			continue
		}
		if target := precedingParagraph(n); target != nil {
			dom.SetAttr(target, "id", m[1])
		} else {
			rep.diag(ErrDanglingAnchorID, n, m[1])
		}
		dom.Remove(n)
	}
}

// precedingParagraph stops at headings so ids never cross a section boundary.
func precedingParagraph(n *html.Node) *html.Node {
	for s := dom.PrevElement(n); s != nil; s = dom.PrevElement(s) {
		switch {
		case dom.IsElement(s, "p"):
			return s
		case dom.IsHeading(s):
			return nil
		}
	}
	return nil
}

type openSection struct {
	node  *html.Node
	level int
}

type sectionBuilder struct {
	opts Options
	rep  *Report
	root *html.Node
	open []openSection
}

// BuildSections regroups the flat children of root into nested section
// elements, one per heading. Content before the first heading stays at the
// root. Section data-ids are assigned as sections are attached.
func BuildSections(root *html.Node, opts Options, rep *Report) {
	b := &sectionBuilder{opts: opts.withDefaults(), rep: ensure(rep), root: root}

	var nodes []*html.Node
	for c := root.FirstChild; c != nil; c = root.FirstChild {
		root.RemoveChild(c)
		nodes = append(nodes, c)
	}

	current := root
	var consumed *html.Node
	for i, n := range nodes {
		if n == consumed {
			continue
		}
		level := dom.HeadingLevel(n)
		if level == 0 {
			current.AppendChild(n)
			continue
		}
		consumed = headingParam(nodes[i+1:])
		current = b.openSection(n, level, consumed)
	}
}

// headingParam returns the param element immediately following a heading.
func headingParam(rest []*html.Node) *html.Node {
	for _, n := range rest {
		if dom.IsBlank(n) {
			continue
		}
		if dom.IsElement(n, "param") {
			return n
		}
		return nil
	}
	return nil
}

func (b *sectionBuilder) openSection(heading *html.Node, level int, param *html.Node) *html.Node {
	sec := dom.NewElement("section")
	dom.AddClass(sec, b.opts.SectionClassPrefix+strconv.Itoa(level))
	dom.AddClass(sec, dom.Classes(heading)...)
	if param != nil {
		dom.AddClass(sec, dom.Classes(param)...)
	}
	dom.RemoveAttr(heading, "class")
	if id, ok := dom.Attr(heading, "id"); ok {
		dom.SetAttr(sec, "id", id)
		dom.RemoveAttr(heading, "id")
	}
	if !(b.opts.PruneEmptyHeadings && strings.TrimSpace(dom.InnerHTML(heading)) == "") {
		sec.AppendChild(heading)
	}

	for len(b.open) > 0 && b.open[len(b.open)-1].level >= level {
		b.open = b.open[:len(b.open)-1]
	}
	parent := b.root
	if n := len(b.open); n > 0 && b.open[n-1].level == level-1 {
		parent = b.open[n-1].node
	}
	b.open = append(b.open, openSection{node: sec, level: level})

	parent.AppendChild(sec)
	dom.SetAttr(sec, "data-id", positionalID(b.root, sec))
	b.rep.Sections++
	return sec
}

// positionalID joins the 1-based index of n among same-tag siblings at every
// level between root (exclusive) and n.
func positionalID(root, n *html.Node) string {
	var parts []string
	for el := n; el != nil && el != root && el.Parent != nil; el = el.Parent {
		idx := 1
		for s := el.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode && s.Data == el.Data {
				idx++
			}
		}
		parts = append(parts, strconv.Itoa(idx))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// RecomputeIDs recomputes the data-id of every section below root from the
// current tree shape. Restructure assigns ids as it nests; call this after
// moving, adding or removing sections in an already restructured tree.
func RecomputeIDs(root *html.Node) {
	for _, sec := range dom.FindAll(root, dom.ByTag("section")) {
		dom.SetAttr(sec, "data-id", positionalID(root, sec))
	}
}

// AssignSegmentIDs numbers the content children of every section
// ({sectionId}.{i}) and of the root preamble (0.{i}). Explicit ids are kept.
func AssignSegmentIDs(root *html.Node, opts Options, rep *Report) {
	opts = opts.withDefaults()
	rep = ensure(rep)
	assignSegments(root, "0", opts, rep)
	for _, sec := range dom.FindAll(root, dom.ByTag("section")) {
		if id := dom.AttrOr(sec, "data-id"); id != "" {
			assignSegments(sec, id, opts, rep)
		}
	}
}

func assignSegments(container *html.Node, prefix string, opts Options, rep *Report) {
	i := 0
	for _, c := range dom.Children(container) {
		if !isSegment(c, opts) {
			continue
		}
		i++
		id := prefix + "." + strconv.Itoa(i)
		dom.SetAttr(c, "data-id", id)
		if _, ok := dom.Attr(c, "id"); !ok {
			dom.SetAttr(c, "id", id)
		}
		dom.AddClass(c, "segment")
		rep.Segments++
	}
}

func isSegment(n *html.Node, opts Options) bool {
	switch {
	case dom.IsHeading(n), dom.IsElement(n, "param", "section"):
		return false
	case opts.SkipComponentSegments && (dom.IsElement(n, "style", "script") || opts.isComponent(n)):
		return false
	}
	return true
}

// MoveFooters moves every *-footer element to the end of root.
func MoveFooters(root *html.Node) {
	for _, f := range dom.FindAll(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && strings.HasSuffix(n.Data, "-footer")
	}) {
		dom.Append(root, f)
	}
}

func ensure(rep *Report) *Report {
	if rep == nil {
		return &Report{}
	}
	return rep
}
