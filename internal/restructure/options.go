package restructure

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/net/html"
)

// Diagnostic kinds. Restructure never fails; problems are reported instead.
var (
	ErrOverlappingMarkers = errors.New("section carries more than one structural marker")
	ErrDanglingAnchorID   = errors.New("anchor id has no preceding paragraph")
	ErrUnresolvedListBody = errors.New("directive list body could not be rendered")
)

// InlineRenderer renders a markdown snippet (typically a list) to HTML.
type InlineRenderer interface {
	RenderMarkdown(src string) (string, error)
}

// InlineRendererFunc adapts a function to InlineRenderer.
type InlineRendererFunc func(src string) (string, error)

// RenderMarkdown calls f(src).
func (f InlineRendererFunc) RenderMarkdown(src string) (string, error) { return f(src) }

// Options select the behavioral variants of the restructuring run.
type Options struct {
	// ComponentPrefix names generated elements: {prefix}-image, {prefix}-trigger, ...
	ComponentPrefix string
	// SectionClassPrefix is joined with the heading level: "section-2".
	SectionClassPrefix string

	PruneEmptyHeadings    bool
	SkipComponentSegments bool
	MoveFooters           bool
	AnnotateTimestamps    bool
	ConvertImages         bool

	// ReservedLanguages are fenced-code languages read as directives.
	ReservedLanguages []string

	TabGroupTag string
	TabTag      string
	TabPanelTag string

	// InlineRenderer renders directive list bodies. Nil renders plain text.
	InlineRenderer InlineRenderer
}

// DefaultOptions returns the options used by the site generator.
func DefaultOptions() Options {
	return Options{
		ComponentPrefix:       "ez",
		SectionClassPrefix:    "section-",
		PruneEmptyHeadings:    true,
		SkipComponentSegments: true,
		MoveFooters:           true,
		AnnotateTimestamps:    true,
		ConvertImages:         true,
		ReservedLanguages:     []string{"ezsite", "juncture"},
		TabGroupTag:           "sl-tab-group",
		TabTag:                "sl-tab",
		TabPanelTag:           "sl-tab-panel",
	}
}

// withDefaults fills unset names so a zero Options still produces valid tags.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ComponentPrefix == "" {
		o.ComponentPrefix = d.ComponentPrefix
	}
	if o.SectionClassPrefix == "" {
		o.SectionClassPrefix = d.SectionClassPrefix
	}
	if o.TabGroupTag == "" {
		o.TabGroupTag = d.TabGroupTag
	}
	if o.TabTag == "" {
		o.TabTag = d.TabTag
	}
	if o.TabPanelTag == "" {
		o.TabPanelTag = d.TabPanelTag
	}
	if o.ReservedLanguages == nil {
		o.ReservedLanguages = d.ReservedLanguages
	}
	return o
}

func (o Options) component(name string) string {
	return o.ComponentPrefix + "-" + name
}

func (o Options) isComponent(n *html.Node) bool {
	return n.Type == html.ElementNode && strings.HasPrefix(n.Data, o.ComponentPrefix+"-")
}

func (o Options) reserved(lang string) bool {
	for _, l := range o.ReservedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Diagnostic records a non-fatal problem found while restructuring.
type Diagnostic struct {
	Err    error
	Where  string // data-id, id or tag of the node involved
	Detail string
}

func (d Diagnostic) Error() string {
	if d.Detail == "" {
		return fmt.Sprintf("%s: %v", d.Where, d.Err)
	}
	return fmt.Sprintf("%s: %v: %s", d.Where, d.Err, d.Detail)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Report summarizes one restructuring run.
type Report struct {
	Sections    int
	Segments    int
	Directives  int
	Footnotes   int
	Components  int
	Diagnostics []Diagnostic
}

func (r *Report) diag(err error, n *html.Node, detail string) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Err: err, Where: describe(n), Detail: detail})
}

// Err joins the diagnostics into one error, or nil.
func (r *Report) Err() error {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	errs := make([]error, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		errs[i] = d
	}
	return multierr.Combine(errs...)
}

func describe(n *html.Node) string {
	if n == nil {
		return "document"
	}
	for _, k := range []string{"data-id", "id"} {
		for _, a := range n.Attr {
			if a.Key == k && a.Val != "" {
				return n.Data + "[" + k + "=" + a.Val + "]"
			}
		}
	}
	return n.Data
}
