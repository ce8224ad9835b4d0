package ezsite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

// newTestConverter creates a Converter logging to the test output.
func newTestConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	conv, err := NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	return conv
}

// fakeResolver answers from a fixed table.
type fakeResolver map[string]Entity

func (f fakeResolver) Resolve(_ context.Context, qid string) (Entity, error) {
	e, ok := f[qid]
	if !ok {
		return Entity{}, errors.New("unknown entity " + qid)
	}
	return e, nil
}

// ---------------------------------------------------------------------------
// TestNewConverter
// ---------------------------------------------------------------------------

func TestNewConverter(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		conv := newTestConverter(t)
		if conv.cfg.timeout != defaultTimeout {
			t.Errorf("timeout = %v, want %v", conv.cfg.timeout, defaultTimeout)
		}
		if conv.enricher != nil {
			t.Error("enrichment should be off by default")
		}
		if conv.sanitizer != nil {
			t.Error("sanitizing should be off by default")
		}
		if conv.css == "" {
			t.Error("default style not loaded")
		}
	})

	t.Run("invalid asset path", func(t *testing.T) {
		t.Parallel()
		if _, err := NewConverter(WithAssetPath("/nonexistent/abc123xyz")); !errors.Is(err, ErrInvalidAssetPath) {
			t.Errorf("NewConverter() error = %v, want ErrInvalidAssetPath", err)
		}
	})

	t.Run("unknown style", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.Assets.Style = "nonexistent-xyz"
		if _, err := NewConverter(WithConfig(cfg)); !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("NewConverter() error = %v, want ErrStyleNotFound", err)
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.Assets.Template = "nonexistent-xyz"
		if _, err := NewConverter(WithConfig(cfg)); !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("NewConverter() error = %v, want ErrTemplateNotFound", err)
		}
	})

	t.Run("entities enabled", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.Entities.Enabled = true
		if conv := newTestConverter(t, WithConfig(cfg)); conv.enricher == nil {
			t.Error("enricher should be configured")
		}
	})

	t.Run("timeout must be positive", func(t *testing.T) {
		t.Parallel()
		defer func() {
			if recover() == nil {
				t.Error("WithTimeout(0) should panic")
			}
		}()
		WithTimeout(0)
	})
}

// ---------------------------------------------------------------------------
// TestConverter_Convert
// ---------------------------------------------------------------------------

func TestConverter_Convert_InputValidation(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{name: "empty", input: Input{}, wantErr: ErrEmptyInput},
		{name: "both sources", input: Input{Markdown: "# a", HTML: "<h1>a</h1>"}, wantErr: ErrConflictingInput},
		{name: "broken front matter", input: Input{Markdown: "---\ntitle: [unclosed\n---\nbody\n"}, wantErr: ErrFrontMatter},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := conv.Convert(context.Background(), tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Convert() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConverter_Convert_Page(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Site.Title = "Travel Notes"
	cfg.Site.BaseURL = "/notes"
	cfg.Site.Owner = "alice"
	cfg.Site.Components = StringList{"/components/ez-map.js"}

	conv := newTestConverter(t, WithConfig(cfg))

	md := "---\ntitle: Paris\nlang: fr\n---\n" +
		"# Paris\n\nCity of ==light==.\n\n## Gallery {.cards}\n\n### Louvre\n\n" +
		"![Louvre](/img/louvre.jpg)\n\n### Orsay\n\n[Orsay](/orsay/)\n"

	res, err := conv.Convert(context.Background(), Input{Markdown: md, Path: "paris.md"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	page := string(res.HTML)
	for _, want := range []string{
		`<html lang="fr">`,
		"<title>Paris</title>",
		`<meta name="robots" content="noindex, nofollow">`,
		`"url":"https://alice.github.io/notes/"`,
		`src="/notes/components/ez-map.js"`,
		`class="section-1"`,
		"<mark>light</mark>",
		`class="cards`,
		`href="/notes/orsay/"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}

	if !strings.Contains(page, res.Body) {
		t.Error("page should embed the restructured body")
	}
	wantMeta := Meta{Title: "Paris", Description: "City of light.", Robots: "noindex, nofollow"}
	if diff := cmp.Diff(wantMeta, res.Meta); diff != "" {
		t.Errorf("Meta mismatch (-want +got):\n%s", diff)
	}
	if res.Report.Sections != 4 {
		t.Errorf("Report.Sections = %d, want 4", res.Report.Sections)
	}
}

func TestConverter_Convert_Fragment(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)

	res, err := conv.Convert(context.Background(), Input{
		HTML:     `<h2>Intro</h2><p>Text</p>`,
		Fragment: true,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if string(res.HTML) != res.Body {
		t.Errorf("fragment HTML = %q, want body %q", res.HTML, res.Body)
	}
	if strings.Contains(res.Body, "<html") {
		t.Error("fragment should not be assembled into a page")
	}
	if !strings.HasPrefix(res.Body, `<section class="section-2"`) {
		t.Errorf("Body = %q, want a level 2 section", res.Body)
	}
}

func TestConverter_Convert_ContentOptions(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Content.ComponentPrefix = "ve"
	cfg.Content.SectionClassPrefix = "level-"
	cfg.Output.Fragment = true

	conv := newTestConverter(t, WithConfig(cfg))
	res, err := conv.Convert(context.Background(), Input{Markdown: "# A\n\nSee ==Rome=={Q220}.\n"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	for _, want := range []string{`class="level-1"`, `<ve-entity-infobox qid="Q220">Rome</ve-entity-infobox>`} {
		if !strings.Contains(res.Body, want) {
			t.Errorf("Body = %q, want to contain %q", res.Body, want)
		}
	}
}

func TestConverter_Convert_EntityEnrichment(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, WithEntityResolver(fakeResolver{
		"Q90": {ID: "Q90", Label: "Paris", Description: "capital of France"},
	}))

	res, err := conv.Convert(context.Background(), Input{
		Markdown: "# Cities\n\n==Paris=={Q90} and ==Atlantis=={Q999999}.\n",
		Fragment: true,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(res.Body, `description="capital of France"`) {
		t.Errorf("Body = %q, want enriched infobox", res.Body)
	}
	if res.Report.Enriched != 1 {
		t.Errorf("Report.Enriched = %d, want 1", res.Report.Enriched)
	}
	if res.Report.Err() == nil {
		t.Error("unresolved entity should be reported")
	}
}

func TestConverter_Convert_Sanitize(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Content.Sanitize = true
	cfg.Output.Fragment = true

	conv := newTestConverter(t, WithConfig(cfg))
	res, err := conv.Convert(context.Background(), Input{
		Markdown: "# A\n\n<script>alert(1)</script>\n\n<p onclick=\"x()\">ok</p>\n",
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	for _, exclude := range []string{"<script", "onclick"} {
		if strings.Contains(res.Body, exclude) {
			t.Errorf("Body = %q, should not contain %q", res.Body, exclude)
		}
	}
}

func TestConverter_Convert_Includes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	includes := filepath.Join(dir, "_includes")
	if err := os.MkdirAll(includes, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	header := `<header><a href="{{ site.baseurl }}/">Home</a></header>`
	if err := os.WriteFile(filepath.Join(includes, "header.html"), []byte(header), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Site.BaseURL = "/repo"
	conv := newTestConverter(t, WithConfig(cfg), WithAssetPath(dir))

	res, err := conv.Convert(context.Background(), Input{Markdown: "# A\n"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(string(res.HTML), `<header><a href="/repo/">Home</a></header>`) {
		t.Errorf("page missing substituted header include")
	}
}

func TestConverter_Convert_CodeKeepsEquality(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)

	tests := []struct {
		name     string
		markdown string
		want     []string
	}{
		{
			name:     "fenced block",
			markdown: "```go\nif a == b || c == d {\n}\n```\n",
		},
		{
			name:     "code spans",
			markdown: "`a == b` and `c == d`\n",
			want:     []string{"<code>a == b</code>", "<code>c == d</code>"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := conv.Convert(context.Background(), Input{Markdown: tt.markdown, Fragment: true})
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if strings.Contains(res.Body, "<mark>") {
				t.Errorf("Body = %q, code should not be highlighted", res.Body)
			}
			if got := strings.Count(res.Body, "=="); got != 2 {
				t.Errorf("Body = %q, has %d equality operators, want 2", res.Body, got)
			}
			for _, want := range tt.want {
				if !strings.Contains(res.Body, want) {
					t.Errorf("Body = %q, want to contain %q", res.Body, want)
				}
			}
		})
	}
}

func TestConverter_Convert_CanceledContext(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, WithTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := conv.Convert(ctx, Input{Markdown: "# A\n"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestComponentNames(t *testing.T) {
	t.Parallel()

	got := componentNames([]string{"/components/ez-map.js?v=2", "https://cdn.example.com/EZ-Image.mjs", "/js/main.js"})
	if diff := cmp.Diff([]string{"ez-map", "ez-image"}, got); diff != "" {
		t.Errorf("componentNames() mismatch (-want +got):\n%s", diff)
	}
}

func TestSiteURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		site SiteConfig
		want string
	}{
		{name: "absolute base", site: SiteConfig{BaseURL: "https://example.com/"}, want: "https://example.com/"},
		{name: "owner and base", site: SiteConfig{Owner: "alice", BaseURL: "/notes"}, want: "https://alice.github.io/notes/"},
		{name: "owner and repo", site: SiteConfig{Owner: "alice", Repo: "notes"}, want: "https://alice.github.io/notes/"},
		{name: "user site", site: SiteConfig{Owner: "alice"}, want: "https://alice.github.io/"},
		{name: "unknown", site: SiteConfig{}, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := siteURL(tt.site); got != tt.want {
				t.Errorf("siteURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
