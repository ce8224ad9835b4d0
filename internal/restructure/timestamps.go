package restructure

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-ezsite/internal/dom"
)

// cuePattern matches a first line holding nothing but a media timestamp,
// optionally a range: "1:05", "00:01:30", "00:01:30.500 --> 00:01:34".
var cuePattern = regexp.MustCompile(
	`^\d{1,2}:\d{2}(?::\d{2})?(?:[.,]\d{1,3})?(?:\s*(?:-->|-|–)\s*\d{1,2}:\d{2}(?::\d{2})?(?:[.,]\d{1,3})?)?$`)

// AnnotateTimestamps turns media-cue paragraphs into annotated ones:
//
//	00:01:30            -> data-head
//	What is said here   -> content
//	Q220 Q1747689       -> data-qids
//	related-id          -> data-related
//	further lines       -> content
//
// Content lines keep their inline markup. A trailing inline code directive
// is kept after the content.
func AnnotateTimestamps(root *html.Node) {
	for _, p := range dom.FindAll(root, dom.ByTag("p")) {
		lines := splitLines(p)
		directive := popDirective(&lines)
		if len(lines) < 2 || !cuePattern.MatchString(lines[0].text()) {
			continue
		}

		dom.SetAttr(p, "data-head", lines[0].text())
		if len(lines) > 2 {
			dom.SetAttr(p, "data-qids", lines[2].text())
		}
		if len(lines) > 3 {
			dom.SetAttr(p, "data-related", lines[3].text())
		}

		body := []cueLine{lines[1]}
		if len(lines) > 4 {
			body = append(body, lines[4:]...)
		}
		dom.RemoveChildren(p)
		for i, l := range body {
			if i > 0 {
				p.AppendChild(dom.NewText("\n"))
			}
			for _, n := range l.trimmed() {
				p.AppendChild(n)
			}
		}
		if directive != nil {
			p.AppendChild(directive)
		}
	}
}

// cueLine is one source line of a paragraph.
type cueLine []*html.Node

func (l cueLine) text() string {
	var sb strings.Builder
	for _, n := range l {
		sb.WriteString(dom.TextContent(n))
	}
	return strings.TrimSpace(sb.String())
}

// trimmed drops the surrounding whitespace of the line's edge text nodes.
func (l cueLine) trimmed() cueLine {
	out := make(cueLine, 0, len(l))
	for i, n := range l {
		if n.Type == html.TextNode {
			data := n.Data
			if i == 0 {
				data = strings.TrimLeft(data, " \t")
			}
			if i == len(l)-1 {
				data = strings.TrimRight(data, " \t")
			}
			if data == "" {
				continue
			}
			n = dom.NewText(data)
		}
		out = append(out, n)
	}
	return out
}

// splitLines groups the children of p by the newlines in their text without
// touching the tree. Split text is copied; elements are shared. Blank
// trailing lines are dropped.
func splitLines(p *html.Node) []cueLine {
	lines := []cueLine{nil}
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode || !strings.Contains(c.Data, "\n") {
			lines[len(lines)-1] = append(lines[len(lines)-1], c)
			continue
		}
		for i, part := range strings.Split(c.Data, "\n") {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part != "" {
				lines[len(lines)-1] = append(lines[len(lines)-1], dom.NewText(part))
			}
		}
	}
	for len(lines) > 0 && lines[len(lines)-1].text() == "" && !hasElement(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// popDirective removes a last line made of a single inline code element.
func popDirective(lines *[]cueLine) *html.Node {
	ls := *lines
	if len(ls) == 0 {
		return nil
	}
	var code *html.Node
	for _, n := range ls[len(ls)-1] {
		switch {
		case n.Type == html.TextNode && strings.TrimSpace(n.Data) == "":
		case code == nil && dom.IsElement(n, "code"):
			code = n
		default:
			return nil
		}
	}
	if code != nil {
		*lines = ls[:len(ls)-1]
	}
	return code
}

func hasElement(l cueLine) bool {
	for _, n := range l {
		if n.Type == html.ElementNode {
			return true
		}
	}
	return false
}
