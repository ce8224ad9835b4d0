package restructure

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/alnah/go-ezsite/internal/dom"
)

func listTexts(n *html.Node) []string {
	var out []string
	for _, li := range dom.FindAll(n, dom.ByTag("li")) {
		out = append(out, dom.TextContent(li))
	}
	return out
}

// ---------------------------------------------------------------------------
// TestRewriteDirectives - inline code
// ---------------------------------------------------------------------------

func TestRewriteDirectives_TagReplacesParagraph(t *testing.T) {
	t.Parallel()

	root := parseRoot(t, `<section><h1>T</h1><p><code>ez-image src="x.jpg" #fig .wide full</code></p></section>`)
	rep := &Report{}
	RewriteDirectives(root, DefaultOptions(), rep)

	img := findTag(root, "ez-image")
	if img == nil {
		t.Fatalf("component not created: %s", dom.OuterHTML(root))
	}
	if !dom.IsElement(img.Parent, "section") {
		t.Errorf("component parent = <%s>, want <section>", img.Parent.Data)
	}
	want := []html.Attribute{
		{Key: "id", Val: "fig"},
		{Key: "class", Val: "wide"},
		{Key: "src", Val: "x.jpg"},
		{Key: "full", Val: ""},
	}
	if diff := cmp.Diff(want, img.Attr); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
	if findTag(root, "p") != nil {
		t.Error("wrapper paragraph kept")
	}
	if rep.Directives != 1 {
		t.Errorf("Report.Directives = %d, want 1", rep.Directives)
	}
}

func TestRewriteDirectives_PipeArguments(t *testing.T) {
	t.Parallel()

	root := parseRoot(t, `<p><code>ez-menu "Start" | Home | About us</code></p>`)
	RewriteDirectives(root, DefaultOptions(), nil)

	menu := findTag(root, "ez-menu")
	if menu == nil {
		t.Fatal("component not created")
	}
	if diff := cmp.Diff([]string{"Start", "Home", "About us"}, listTexts(menu)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestRewriteDirectives_ClassMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, root *html.Node)
	}{
		{
			name:  "own paragraph merges onto section",
			input: `<section class="section-2"><h2>X</h2><p><code>.cards</code></p><p>a</p></section>`,
			check: func(t *testing.T, root *html.Node) {
				sec := findTag(root, "section")
				if !dom.HasClass(sec, "cards") {
					t.Errorf("section class = %q", dom.AttrOr(sec, "class"))
				}
				if got := len(dom.FindAll(root, dom.ByTag("p"))); got != 1 {
					t.Errorf("paragraphs = %d, want 1", got)
				}
			},
		},
		{
			name:  "emphasis becomes span",
			input: `<p>some <em>word</em><code>.red :color:red</code> text</p>`,
			check: func(t *testing.T, root *html.Node) {
				p := findTag(root, "p")
				want := `some <span class="red" style="color:red">word</span> text`
				if got := dom.InnerHTML(p); got != want {
					t.Errorf("paragraph = %q, want %q", got, want)
				}
			},
		},
		{
			name:  "link receives id",
			input: `<p>see <a href="/x">x</a><code>#target</code></p>`,
			check: func(t *testing.T, root *html.Node) {
				if got := dom.AttrOr(findTag(root, "a"), "id"); got != "target" {
					t.Errorf("link id = %q", got)
				}
			},
		},
		{
			name:  "list item merges onto list",
			input: `<ul><li>one <code>.steps</code></li></ul>`,
			check: func(t *testing.T, root *html.Node) {
				if !dom.HasClass(findTag(root, "ul"), "steps") {
					t.Errorf("list = %s", dom.OuterHTML(findTag(root, "ul")))
				}
				if findTag(root, "code") != nil {
					t.Error("directive code kept")
				}
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := parseRoot(t, tt.input)
			RewriteDirectives(root, DefaultOptions(), nil)
			tt.check(t, root)
		})
	}
}

func TestRewriteDirectives_FailOpen(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`<p>call <code>fmt.Println</code> now</p>`,
		`<p>see <code>#include &lt;stdio.h&gt;</code></p>`,
		`<pre><code class="language-go">ez-image src="x"</code></pre>`,
		`<div><code>ez-image</code></div>`,
	}
	for _, in := range inputs {
		root := parseRoot(t, in)
		before := dom.InnerHTML(root)
		RewriteDirectives(root, DefaultOptions(), nil)
		if got := dom.InnerHTML(root); got != before {
			t.Errorf("input changed:\n%s\n->\n%s", before, got)
		}
	}
}

func TestRewriteDirectives_HeaderReplacesExisting(t *testing.T) {
	t.Parallel()

	root := parseRoot(t, `<ez-header label="old"></ez-header><h1>A</h1><p><code>ez-header label="new"</code></p>`)
	RewriteDirectives(root, DefaultOptions(), nil)

	headers := dom.FindAll(root, dom.ByTag("ez-header"))
	if len(headers) != 1 {
		t.Fatalf("headers = %d, want 1", len(headers))
	}
	if got := dom.AttrOr(headers[0], "label"); got != "new" {
		t.Errorf("label = %q, want new", got)
	}
	if dom.Children(root)[0] != headers[0] {
		t.Error("header moved from its original position")
	}
	if findTag(root, "p") != nil {
		t.Error("wrapper paragraph kept")
	}
}

// ---------------------------------------------------------------------------
// TestRewriteDirectives - fenced code
// ---------------------------------------------------------------------------

func TestRewriteDirectives_Fenced(t *testing.T) {
	t.Parallel()

	root := parseRoot(t, "<pre><code class=\"language-ezsite\">.ez-gallery .wide\n- one\n- two\n  continued\n-\n</code></pre>")
	RewriteDirectives(root, DefaultOptions(), nil)

	g := findTag(root, "ez-gallery")
	if g == nil {
		t.Fatalf("component not created: %s", dom.InnerHTML(root))
	}
	if findTag(root, "pre") != nil {
		t.Error("pre wrapper kept")
	}
	if !dom.HasClass(g, "wide") {
		t.Errorf("class = %q", dom.AttrOr(g, "class"))
	}
	if diff := cmp.Diff([]string{"one", "two continued", ""}, listTexts(g)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestRewriteDirectives_InlineRenderer(t *testing.T) {
	t.Parallel()

	var gotSrc string
	opts := DefaultOptions()
	opts.InlineRenderer = InlineRendererFunc(func(src string) (string, error) {
		gotSrc = src
		return "<ul>\n<li><strong>bold</strong> {.hot}</li>\n</ul>\n", nil
	})
	root := parseRoot(t, "<pre><code class=\"language-juncture\">ez-list\n- **bold** {.hot}\n</code></pre>")
	RewriteDirectives(root, opts, nil)

	if gotSrc != "- **bold** {.hot}\n" {
		t.Errorf("renderer input = %q", gotSrc)
	}
	li := findTag(root, "li")
	if li == nil || !dom.HasClass(li, "hot") {
		t.Fatalf("item = %s", dom.InnerHTML(root))
	}
	if got := dom.InnerHTML(li); got != "<strong>bold</strong>" {
		t.Errorf("item content = %q", got)
	}
}

func TestRewriteDirectives_RendererFailureFallsBack(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.InlineRenderer = InlineRendererFunc(func(string) (string, error) {
		return "", errors.New("boom")
	})
	root := parseRoot(t, "<pre><code class=\"language-ezsite\">ez-list\n- item\n</code></pre>")
	rep := &Report{}
	RewriteDirectives(root, opts, rep)

	if diff := cmp.Diff([]string{"item"}, listTexts(root)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if len(rep.Diagnostics) != 1 || !errors.Is(rep.Diagnostics[0], ErrUnresolvedListBody) {
		t.Errorf("diagnostics = %v", rep.Diagnostics)
	}
}
