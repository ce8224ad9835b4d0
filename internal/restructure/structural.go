package restructure

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-ezsite/internal/dom"
)

// Structural markers recognized on sections.
const (
	markerCards   = "cards"
	markerTabs    = "tabs"
	markerColumns = "mcol"
	markerWrapper = "wrapper"
)

// PostProcess rewrites sections marked cards, tabs or mcol into their
// component structure. Already converted subtrees are left alone, so running
// it twice is a no-op.
func PostProcess(root *html.Node, opts Options, rep *Report) {
	opts = opts.withDefaults()
	rep = ensure(rep)
	for _, sec := range dom.FindAll(root, dom.ByTag("section")) {
		if !attached(root, sec) {
			continue
		}
		markers := activeMarkers(sec)
		switch {
		case len(markers) > 1:
			rep.diag(ErrOverlappingMarkers, sec, strings.Join(markers, ", "))
		case len(markers) == 0:
		case markers[0] == markerCards:
			buildCards(sec)
		case markers[0] == markerTabs:
			buildTabs(sec, opts)
		case markers[0] == markerColumns:
			buildColumns(sec)
		}
	}
}

func activeMarkers(sec *html.Node) []string {
	wrapped := dom.HasClass(sec, markerWrapper)
	var out []string
	if dom.HasClass(sec, markerCards) && !wrapped {
		out = append(out, markerCards)
	}
	if dom.HasClass(sec, markerTabs) {
		out = append(out, markerTabs)
	}
	if dom.HasClass(sec, markerColumns) && !wrapped {
		out = append(out, markerColumns)
	}
	return out
}

func buildCards(sec *html.Node) {
	cards := dom.Children(sec)
	if len(cards) > 0 && dom.IsHeading(cards[0]) {
		cards = cards[1:]
	}
	if len(cards) == 0 {
		return
	}

	dom.RemoveClass(sec, markerCards)
	wrapper := dom.NewElement("section", html.Attribute{Key: "class", Val: markerCards + " " + markerWrapper})
	for _, card := range cards {
		dom.Append(wrapper, card)
		dom.AddClass(card, "card")
		if h := dom.Find(card, dom.IsHeading); h != nil {
			dom.Remove(h)
		}
		for _, p := range dom.FindAll(card, dom.ByTag("p")) {
			if only := dom.SoleElementChild(p); dom.IsElement(only, "img", "a") {
				dom.ReplaceWith(p, only)
			}
		}
	}
	sec.AppendChild(wrapper)
}

// buildTabs replaces sec with a tab group holding one tab and one panel per
// child section. The section's own heading and intro stay in front of it.
func buildTabs(sec *html.Node, opts Options) {
	var panels []*html.Node
	for _, c := range dom.Children(sec) {
		if dom.IsElement(c, "section") {
			panels = append(panels, c)
		}
	}
	if len(panels) == 0 || sec.Parent == nil {
		return
	}

	group := dom.NewElement(opts.TabGroupTag, append([]html.Attribute(nil), sec.Attr...)...)
	for i, p := range panels {
		tab := dom.NewElement(opts.TabTag,
			html.Attribute{Key: "slot", Val: "nav"},
			html.Attribute{Key: "panel", Val: tabKey(i)},
		)
		if h := firstHeading(p); h != nil {
			for c := h.FirstChild; c != nil; c = c.NextSibling {
				tab.AppendChild(dom.Clone(c))
			}
		}
		group.AppendChild(tab)
	}
	for i, p := range panels {
		panel := dom.NewElement(opts.TabPanelTag, html.Attribute{Key: "name", Val: tabKey(i)})
		dom.MoveChildren(panel, p)
		dom.Remove(p)
		group.AppendChild(panel)
	}

	for c := sec.FirstChild; c != nil; c = sec.FirstChild {
		sec.RemoveChild(c)
		sec.Parent.InsertBefore(c, sec)
	}
	dom.ReplaceWith(sec, group)
}

func tabKey(i int) string { return "tab" + strconv.Itoa(i+1) }

func firstHeading(sec *html.Node) *html.Node {
	for _, c := range dom.Children(sec) {
		if dom.IsHeading(c) {
			return c
		}
	}
	return nil
}

func buildColumns(sec *html.Node) {
	var cols []*html.Node
	for _, c := range dom.Children(sec) {
		if dom.IsElement(c, "section") {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return
	}

	dom.RemoveClass(sec, markerColumns)
	wrapper := dom.NewElement("section", html.Attribute{Key: "class", Val: markerColumns + " " + markerWrapper})
	for i, c := range cols {
		dom.Append(wrapper, c)
		dom.AddClass(c, "col-"+strconv.Itoa(i+1))
	}
	sec.AppendChild(wrapper)
}
