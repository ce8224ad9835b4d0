package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to an HTML fragment using goldmark (pure Go).
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions,
// heading attributes and syntax highlighting.
func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // CSS classes for smaller HTML and external stylesheet control
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // Section ids come from heading ids
			parser.WithAttribute(),     // "# Title {.cards #id}" classes feed the section tree
		),
		goldmark.WithRendererOptions(
			// Pages embed components and <param> elements as raw HTML.
			html.WithUnsafe(),
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// MarkdownRenderer runs the preprocessing, Goldmark and placeholder restore
// stages as one step.
type MarkdownRenderer struct {
	Preprocessor MarkdownPreprocessor
	Converter    HTMLConverter
}

// NewMarkdownRenderer creates a MarkdownRenderer with the default stages.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		Preprocessor: &CommonMarkPreprocessor{},
		Converter:    NewGoldmarkConverter(),
	}
}

// Render converts markdown to an HTML fragment with placeholders restored.
func (r *MarkdownRenderer) Render(ctx context.Context, markdown string) (string, error) {
	content := r.Preprocessor.PreprocessMarkdown(ctx, markdown)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := r.Converter.ToHTML(ctx, content)
	if err != nil {
		return "", err
	}
	return RestorePlaceholders(out), nil
}

// RenderMarkdown renders a directive list body. It satisfies the
// restructuring pass's inline renderer contract.
func (r *MarkdownRenderer) RenderMarkdown(src string) (string, error) {
	return r.Render(context.Background(), src)
}
