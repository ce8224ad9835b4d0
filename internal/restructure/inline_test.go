package restructure

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/alnah/go-ezsite/internal/dom"
)

// ---------------------------------------------------------------------------
// TestRewriteFootnoteRefs
// ---------------------------------------------------------------------------

func TestRewriteFootnoteRefs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single reference",
			input: "Text[^a].",
			want:  `Text<sup><a id="fnRef:a" href="#fn:a" class="footnote-ref" role="doc-noteref">a</a></sup>.`,
		},
		{
			name:  "reference at end of input",
			input: "end[^n1]",
			want:  `end<sup><a id="fnRef:n1" href="#fn:n1" class="footnote-ref" role="doc-noteref">n1</a></sup>`,
		},
		{
			name:  "definition marker is left alone",
			input: "[^a]: definition",
			want:  "[^a]: definition",
		},
		{
			name:  "no references",
			input: "plain [link] text",
			want:  "plain [link] text",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RewriteFootnoteRefs(tt.input); got != tt.want {
				t.Errorf("RewriteFootnoteRefs(%q) =\n%s\nwant\n%s", tt.input, got, tt.want)
			}
		})
	}
}

func TestRewriteFootnoteRefs_RepeatedIDsNotDeduplicated(t *testing.T) {
	t.Parallel()

	got := RewriteFootnoteRefs("x[^a] y[^a]")
	if n := strings.Count(got, `id="fnRef:a"`); n != 2 {
		t.Errorf("reference anchors = %d, want 2", n)
	}
}

// ---------------------------------------------------------------------------
// TestRewriteMarkedSpans
// ---------------------------------------------------------------------------

func TestRewriteMarkedSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "qid becomes entity infobox",
			input: `==Rome==\{Q220}`,
			want:  `<ez-entity-infobox qid="Q220">Rome</ez-entity-infobox>`,
		},
		{
			name:  "class only becomes trigger",
			input: `==Rome==\{.highlight}`,
			want:  `<ez-trigger class="highlight">Rome</ez-trigger>`,
		},
		{
			name:  "unescaped brace and coordinates",
			input: `See ==the forum=={12.49,41.89 .place} today`,
			want:  `See <ez-trigger class="place" zoomto="12.49,41.89">the forum</ez-trigger> today`,
		},
		{
			name:  "plain highlight is untouched",
			input: `==just marked==`,
			want:  `==just marked==`,
		},
		{
			name:  "earlier plain highlight stays outside the span",
			input: `plain ==a== then ==Rome=={Q220}`,
			want:  `plain ==a== then <ez-entity-infobox qid="Q220">Rome</ez-entity-infobox>`,
		},
		{
			name:  "single equals sign inside the text",
			input: `==x=1=={.eq}`,
			want:  `<ez-trigger class="eq">x=1</ez-trigger>`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RewriteMarkedSpans(tt.input, "ez"); got != tt.want {
				t.Errorf("RewriteMarkedSpans(%q) =\n%s\nwant\n%s", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRewriteFootnoteDefs
// ---------------------------------------------------------------------------

func TestRewriteFootnoteDefs(t *testing.T) {
	t.Parallel()

	got, n := RewriteFootnoteDefs("[^a]: First note\n[^b]: Second note")
	want := `<ol class="footnotes">` +
		`<li id="fn:a" role="doc-endnote"><p>First note<a href="#fnRef:a" class="reversefootnote" role="doc-backlink" title="Jump back to footnote a in the text">↩</a></p></li>` +
		`<li id="fn:b" role="doc-endnote"><p>Second note<a href="#fnRef:b" class="reversefootnote" role="doc-backlink" title="Jump back to footnote b in the text">↩</a></p></li>` +
		`</ol>`
	if n != 2 {
		t.Errorf("definitions = %d, want 2", n)
	}
	if got != want {
		t.Errorf("RewriteFootnoteDefs =\n%s\nwant\n%s", got, want)
	}
}

func TestRewriteFootnoteDefs_NotADefinition(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"Text [^a]: later", "no footnotes", ""} {
		if got, n := RewriteFootnoteDefs(in); got != "" || n != 0 {
			t.Errorf("RewriteFootnoteDefs(%q) = %q, %d", in, got, n)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRewriteInline
// ---------------------------------------------------------------------------

func TestRewriteInline_FootnoteRoundTrip(t *testing.T) {
	t.Parallel()

	root := parseRoot(t, "<p>Text[^a] more[^b].</p>\n<p>[^a]: First note\n[^b]: Second note</p>")
	rep := &Report{}
	RewriteInline(root, DefaultOptions(), rep)

	for _, id := range []string{"fnRef:a", "fnRef:b", "fn:a", "fn:b"} {
		id := id
		if dom.Find(root, func(n *html.Node) bool { return dom.AttrOr(n, "id") == id }) == nil {
			t.Errorf("no element with id %q", id)
		}
	}
	ol := findTag(root, "ol")
	if ol == nil {
		t.Fatal("footnote list not built")
	}
	items := dom.FindAll(ol, func(n *html.Node) bool { return dom.IsElement(n, "li") })
	if len(items) != 2 {
		t.Fatalf("footnote items = %d, want 2", len(items))
	}
	for i, id := range []string{"a", "b"} {
		back := dom.Find(items[i], func(n *html.Node) bool { return dom.HasClass(n, "reversefootnote") })
		if back == nil || dom.AttrOr(back, "href") != "#fnRef:"+id {
			t.Errorf("item %d back-link = %v", i, back)
		}
	}
	if rep.Footnotes != 2 {
		t.Errorf("Report.Footnotes = %d, want 2", rep.Footnotes)
	}
}

func TestRewriteInline_KeepsCodeVerbatim(t *testing.T) {
	t.Parallel()

	root := parseRoot(t, `<p>use <code>==x=={.y}</code> here ==Rome=={Q220}</p>`)
	RewriteInline(root, DefaultOptions(), nil)

	code := findTag(root, "code")
	if code == nil || dom.TextContent(code) != "==x=={.y}" {
		t.Fatalf("code changed: %v", dom.OuterHTML(findTag(root, "p")))
	}
	box := findTag(root, "ez-entity-infobox")
	if box == nil || dom.TextContent(box) != "Rome" {
		t.Errorf("marked span not rewritten: %s", dom.OuterHTML(findTag(root, "p")))
	}
	if got := dom.TextContent(findTag(root, "p")); got != "use ==x=={.y} here Rome" {
		t.Errorf("paragraph text = %q", got)
	}
}

func TestRewriteInline_ListItems(t *testing.T) {
	t.Parallel()

	root := parseRoot(t, `<ul><li>tight[^x]</li><li><p>loose[^y]</p></li></ul>`)
	RewriteInline(root, DefaultOptions(), nil)

	refs := dom.FindAll(root, func(n *html.Node) bool { return dom.HasClass(n, "footnote-ref") })
	if len(refs) != 2 {
		t.Errorf("references = %d, want 2", len(refs))
	}
}

func TestRewriteInline_NestedListCountedOnce(t *testing.T) {
	t.Parallel()

	root := parseRoot(t, `<ul><li>outer ==Rome=={Q220}<ul><li>inner ==Paris=={Q90}</li></ul></li></ul>`)
	rep := &Report{}
	RewriteInline(root, DefaultOptions(), rep)

	boxes := dom.FindAll(root, dom.ByTag("ez-entity-infobox"))
	if len(boxes) != 2 {
		t.Fatalf("infoboxes = %d, want 2: %s", len(boxes), dom.InnerHTML(root))
	}
	if rep.Directives != 2 {
		t.Errorf("Report.Directives = %d, want 2", rep.Directives)
	}
}
