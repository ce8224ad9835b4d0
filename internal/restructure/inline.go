package restructure

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-ezsite/internal/dom"
	"github.com/alnah/go-ezsite/internal/headline"
)

var (
	footnoteRefPattern = regexp.MustCompile(`\[\^([\w-]+)\]`)
	footnoteDefPattern = regexp.MustCompile(`\[\^([\w-]+)\]:`)
)

// markedSpanPattern matches ==text=={attrs}. The text never holds "==", so
// a plain highlight earlier in the block is not swallowed.
var markedSpanPattern = regexp.MustCompile(`==((?:[^=]|=[^=])+?)==\\?\{([^}]*)\}`)

// Inline code is swapped for these markers while the text rewriters run so
// directive source is never rewritten.
const (
	codeMaskOpen  = "\uE010"
	codeMaskClose = "\uE011"
)

var codeMaskPattern = regexp.MustCompile(codeMaskOpen + `(\d+)` + codeMaskClose)

// RewriteFootnoteRefs replaces every [^id] not followed by ':' with a
// superscript reference anchor. Repeated ids each get their own anchor.
func RewriteFootnoteRefs(s string) string {
	var sb strings.Builder
	last := 0
	for _, m := range footnoteRefPattern.FindAllStringSubmatchIndex(s, -1) {
		if m[1] < len(s) && s[m[1]] == ':' {
			continue
		}
		id := s[m[2]:m[3]]
		sb.WriteString(s[last:m[0]])
		fmt.Fprintf(&sb, `<sup><a id="fnRef:%[1]s" href="#fn:%[1]s" class="footnote-ref" role="doc-noteref">%[1]s</a></sup>`, id)
		last = m[1]
	}
	if last == 0 {
		return s
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// RewriteMarkedSpans replaces ==text=={attrs} with an entity infobox when the
// attributes name a QID, and with a trigger element otherwise.
func RewriteMarkedSpans(s, prefix string) string {
	out, _ := rewriteMarkedSpans(s, prefix)
	return out
}

func rewriteMarkedSpans(s, prefix string) (string, int) {
	n := 0
	out := markedSpanPattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := markedSpanPattern.FindStringSubmatch(match)
		attrs := headline.Parse(html.UnescapeString(sub[2]), headline.Options{EntityShorthand: true})
		attrs.Tag = prefix + "-trigger"
		if attrs.Has("qid") {
			attrs.Tag = prefix + "-entity-infobox"
		}
		n++
		return openTag(attrs) + sub[1] + "</" + attrs.Tag + ">"
	})
	return out, n
}

// RewriteFootnoteDefs converts a paragraph body that starts with [^id]: into
// an ordered footnote list. It returns "" and 0 for any other input.
func RewriteFootnoteDefs(s string) (string, int) {
	s = strings.TrimSpace(s)
	matches := footnoteDefPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 || matches[0][0] != 0 {
		return "", 0
	}

	var sb strings.Builder
	sb.WriteString(`<ol class="footnotes">`)
	for i, m := range matches {
		end := len(s)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		id := s[m[2]:m[3]]
		text := strings.TrimSpace(s[m[1]:end])
		fmt.Fprintf(&sb, `<li id="fn:%[1]s" role="doc-endnote"><p>%[2]s<a href="#fnRef:%[1]s" class="reversefootnote" role="doc-backlink" title="Jump back to footnote %[1]s in the text">↩</a></p></li>`, id, text)
	}
	sb.WriteString(`</ol>`)
	return sb.String(), len(matches)
}

// RewriteInline runs the footnote reference, marked span and footnote
// definition rewriters, in that order, over every text block below root.
func RewriteInline(root *html.Node, opts Options, rep *Report) {
	opts = opts.withDefaults()
	rep = ensure(rep)
	blocks := dom.FindAll(root, func(n *html.Node) bool {
		if dom.IsElement(n, "p") || dom.IsHeading(n) {
			return true
		}
		// List items and cells that hold paragraphs are handled through them.
		return dom.IsElement(n, "li", "td", "th", "dt", "dd") && dom.Find(n, dom.ByTag("p")) == nil
	})
	for _, el := range blocks {
		// A rewritten outer item detaches the items nested in it.
		if attached(root, el) {
			rewriteBlock(el, opts, rep)
		}
	}
}

func rewriteBlock(el *html.Node, opts Options, rep *Report) {
	text := dom.TextContent(el)
	if !strings.Contains(text, "[^") && !strings.Contains(text, "==") {
		return
	}

	codes := maskCode(el)
	src := dom.InnerHTML(el)
	out := RewriteFootnoteRefs(src)
	out, spans := rewriteMarkedSpans(out, opts.ComponentPrefix)
	rep.Directives += spans

	if dom.IsElement(el, "p") {
		if list, n := RewriteFootnoteDefs(out); n > 0 {
			if nodes, err := dom.ParseFragment(list, nil); err == nil {
				for _, node := range nodes {
					dom.InsertBefore(el, node)
					unmaskCode(node, codes)
				}
				dom.Remove(el)
				rep.Footnotes += n
				return
			}
		}
	}
	if out != src {
		if err := dom.SetInnerHTML(el, out); err != nil {
			rep.diag(err, el, "inline rewrite")
		}
	}
	unmaskCode(el, codes)
}

func maskCode(el *html.Node) []*html.Node {
	codes := dom.FindAll(el, dom.ByTag("code"))
	for i, c := range codes {
		dom.ReplaceWith(c, dom.NewText(codeMaskOpen+strconv.Itoa(i)+codeMaskClose))
	}
	return codes
}

func unmaskCode(el *html.Node, codes []*html.Node) {
	if len(codes) == 0 {
		return
	}
	texts := dom.FindAll(el, func(n *html.Node) bool {
		return n.Type == html.TextNode && strings.Contains(n.Data, codeMaskOpen)
	})
	for _, t := range texts {
		last := 0
		for _, m := range codeMaskPattern.FindAllStringSubmatchIndex(t.Data, -1) {
			i, _ := strconv.Atoi(t.Data[m[2]:m[3]])
			if i >= len(codes) {
				continue
			}
			if m[0] > last {
				t.Parent.InsertBefore(dom.NewText(t.Data[last:m[0]]), t)
			}
			t.Parent.InsertBefore(codes[i], t)
			last = m[1]
		}
		if last == 0 {
			continue
		}
		if last < len(t.Data) {
			t.Parent.InsertBefore(dom.NewText(t.Data[last:]), t)
		}
		dom.Remove(t)
	}
}

// openTag renders the start tag for a resolved headline.
func openTag(a *headline.Attrs) string {
	s := dom.OuterHTML(buildElement(a))
	return strings.TrimSuffix(s, "</"+a.Tag+">")
}
