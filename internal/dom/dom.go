// Package dom provides small helpers over golang.org/x/net/html nodes.
//
// The restructuring passes build and move nodes instead of concatenating
// serialized HTML, so every helper here works on *html.Node directly.
// Helpers never panic on detached nodes: removing or replacing a node without
// a parent is a no-op.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// IsElement reports whether n is an element with one of the given tags.
// With no tags it reports whether n is an element at all.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// HeadingLevel returns the level of an h1-h6 element, or 0.
func HeadingLevel(n *html.Node) int {
	if n == nil || n.Type != html.ElementNode || len(n.Data) != 2 || n.Data[0] != 'h' {
		return 0
	}
	if n.Data[1] < '1' || n.Data[1] > '6' {
		return 0
	}
	return int(n.Data[1] - '0')
}

// ---------------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------------

// Attr returns the value of key and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the value of key, or "" when absent.
func AttrOr(n *html.Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// SetAttr sets key to val, keeping the position of an existing attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes key from n.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// ---------------------------------------------------------------------------
// Classes
// ---------------------------------------------------------------------------

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	return strings.Fields(AttrOr(n, "class"))
}

// HasClass reports whether n carries class c.
func HasClass(n *html.Node, c string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, have := range Classes(n) {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass appends classes not already present.
func AddClass(n *html.Node, classes ...string) {
	list := Classes(n)
	for _, c := range classes {
		if c == "" || containsString(list, c) {
			continue
		}
		list = append(list, c)
	}
	SetClasses(n, list)
}

// RemoveClass drops the given classes.
func RemoveClass(n *html.Node, classes ...string) {
	list := Classes(n)
	out := list[:0]
	for _, c := range list {
		if !containsString(classes, c) {
			out = append(out, c)
		}
	}
	SetClasses(n, out)
}

// SetClasses replaces the class attribute; an empty list removes it.
func SetClasses(n *html.Node, classes []string) {
	if len(classes) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(classes, " "))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

// Children returns the element children of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// PrevElement returns the closest preceding element sibling.
func PrevElement(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// NextElement returns the closest following element sibling.
func NextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// FindAll returns the descendants of n (excluding n) matching pred, in
// document order. The result is a snapshot: callers may mutate the tree
// while iterating it.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// Find returns the first descendant of n matching pred.
func Find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			return c
		}
		if found := Find(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// ByTag returns a predicate matching elements with one of tags.
func ByTag(tags ...string) func(*html.Node) bool {
	return func(n *html.Node) bool { return IsElement(n, tags...) }
}

// IsHeading matches h1-h6 elements.
func IsHeading(n *html.Node) bool {
	return HeadingLevel(n) > 0
}

// Closest returns n or its nearest ancestor matching pred.
func Closest(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if pred(p) {
			return p
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mutation
// ---------------------------------------------------------------------------

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Append detaches child and appends it to parent.
func Append(parent, child *html.Node) {
	Remove(child)
	parent.AppendChild(child)
}

// InsertBefore detaches n and inserts it before ref.
func InsertBefore(ref, n *html.Node) {
	if ref.Parent == nil {
		return
	}
	Remove(n)
	ref.Parent.InsertBefore(n, ref)
}

// ReplaceWith puts repl where old was and detaches old.
func ReplaceWith(old, repl *html.Node) {
	if old == nil || old.Parent == nil || old == repl {
		return
	}
	Remove(repl)
	old.Parent.InsertBefore(repl, old)
	old.Parent.RemoveChild(old)
}

// MoveChildren moves every child of src to the end of dst.
func MoveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = src.FirstChild {
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// Rename turns n into a different element, keeping children and attributes.
func Rename(n *html.Node, tag string) {
	tag = strings.ToLower(tag)
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// Clone deep-copies n. The copy is detached.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(Clone(ch))
	}
	return c
}

// ---------------------------------------------------------------------------
// Text and serialization
// ---------------------------------------------------------------------------

// TextContent concatenates the text of n and its descendants.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(TextContent(c))
	}
	return sb.String()
}

// OwnText concatenates the trimmed direct text children of n.
func OwnText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(c.Data))
		}
	}
	return sb.String()
}

// OuterHTML renders n and its descendants.
func OuterHTML(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

// ParseFragment parses s in the context of parent. A nil parent means body.
func ParseFragment(s string, parent *html.Node) ([]*html.Node, error) {
	ctx := parent
	if ctx == nil || ctx.Type != html.ElementNode {
		ctx = &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	}
	return html.ParseFragment(strings.NewReader(s), ctx)
}

// SetInnerHTML replaces the children of n with the parsed fragment s.
// On a parse error n is left unchanged.
func SetInnerHTML(n *html.Node, s string) error {
	nodes, err := ParseFragment(s, n)
	if err != nil {
		return err
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// IsBlank reports whether n is a whitespace-only text node or a comment.
func IsBlank(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return strings.TrimSpace(n.Data) == ""
	case html.CommentNode:
		return true
	}
	return false
}

// SoleElementChild returns the only element child of n when n has no other
// meaningful content (non-blank text).
func SoleElementChild(n *html.Node) *html.Node {
	var only *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsBlank(c) {
			continue
		}
		if c.Type != html.ElementNode || only != nil {
			return nil
		}
		only = c
	}
	return only
}
