package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"
)

// ErrPageRender indicates the page template could not be executed.
var ErrPageRender = errors.New("page template rendering failed")

// siteBaseURL matches the Liquid-style {{ site.baseurl }} used by includes.
var siteBaseURL = regexp.MustCompile(`\{\{\s*site\.baseurl\s*\}\}`)

// SEO is the JSON-LD WebSite record emitted in the page head.
type SEO struct {
	Context     string `json:"@context"`
	Type        string `json:"@type"`
	Name        string `json:"name,omitempty"`
	Headline    string `json:"headline,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// NewSEO returns the WebSite record for a page.
func NewSEO(meta Meta, url string) SEO {
	return SEO{
		Context:     "https://schema.org",
		Type:        "WebSite",
		Name:        meta.Title,
		Headline:    meta.Title,
		Description: meta.Description,
		URL:         url,
	}
}

// PageData holds everything the page template renders.
type PageData struct {
	Lang        string
	Title       string
	Description string
	Robots      string
	CSS         template.CSS
	SEO         SEO
	Components  []string
	Header      template.HTML
	Body        template.HTML
	Footer      template.HTML
}

// PageAssembler renders complete pages from a parsed template.
type PageAssembler struct {
	tmpl *template.Template
}

// NewPageAssembler creates a PageAssembler from template content.
// Returns error if the template cannot be parsed.
func NewPageAssembler(tmplContent string) (*PageAssembler, error) {
	tmpl, err := template.New("page").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	return &PageAssembler{tmpl: tmpl}, nil
}

// Assemble executes the page template with data.
func (a *PageAssembler) Assemble(ctx context.Context, data *PageData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("%w: no page data", ErrPageRender)
	}

	// Check for cancellation
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if data.Lang == "" {
		data.Lang = "en"
	}

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return buf.String(), nil
}

// SanitizeCSS prepares stylesheet content for inlining in a <style> block.
func SanitizeCSS(css string) template.CSS {
	// Escape </ sequences to prevent closing the style tag prematurely
	return template.CSS(strings.ReplaceAll(css, "</", `<\/`))
}

// SubstituteSiteVars replaces {{ site.baseurl }} in an include with the
// normalized base path ("" when the site is served from the root).
func SubstituteSiteVars(include, baseURL string) string {
	return siteBaseURL.ReplaceAllLiteralString(include, normalizeBase(baseURL))
}
