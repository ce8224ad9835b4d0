// Package restructure rebuilds the flat HTML produced by the markdown
// converter into the section tree used by ezsite pages.
//
// Restructure runs every pass in a fixed order over one in-memory tree:
//
//  1. ApplyAnchorIDs: "{#id}" paragraphs become ids of the paragraph before them
//  2. BuildSections: headings open nested sections with positional data-ids
//  3. AnnotateTimestamps: media cue paragraphs get data-head/data-qids
//  4. RewriteInline: footnote references, marked spans, footnote definitions
//  5. RewriteDirectives: inline and fenced code directives
//  6. AssignSegmentIDs: content blocks get {section}.{n} ids
//  7. PostProcess: cards, tabs and mcol sections
//  8. ConvertElements: entity links, images, component paragraphs, params
//  9. MoveFooters
//
// The passes are synchronous and never fail. Anything that could not be
// interpreted is left in place and, where useful, reported as a Diagnostic.
package restructure

import (
	"golang.org/x/net/html"
)

// Restructure rewrites the children of root in place.
func Restructure(root *html.Node, opts Options) *Report {
	opts = opts.withDefaults()
	rep := &Report{}

	ApplyAnchorIDs(root, rep)
	BuildSections(root, opts, rep)
	if opts.AnnotateTimestamps {
		AnnotateTimestamps(root)
	}
	RewriteInline(root, opts, rep)
	RewriteDirectives(root, opts, rep)
	AssignSegmentIDs(root, opts, rep)
	PostProcess(root, opts, rep)
	ConvertElements(root, opts, rep)
	if opts.MoveFooters {
		MoveFooters(root)
	}
	return rep
}
