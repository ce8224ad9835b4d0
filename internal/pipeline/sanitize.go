package pipeline

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// customElement matches autonomous custom element names such as ez-image.
var customElement = regexp.MustCompile(`^[a-z][a-z0-9]*-[a-z0-9-]*$`)

// componentAttrs are the attributes components read from their host element.
var componentAttrs = []string{
	"qid", "zoomto", "src", "alt", "left", "right", "full", "caption",
	"label", "title", "type", "center", "zoom", "name", "panel", "slot",
	"href", "description", "robots", "ve-config",
}

// HTMLSanitizer cleans raw HTML before restructuring.
type HTMLSanitizer interface {
	Sanitize(htmlContent string) string
}

// PolicySanitizer removes scripts, event handlers and unknown attributes from
// raw HTML embedded in pages while keeping components and their attributes.
type PolicySanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds the sanitizing policy. extraAttrs are allowed on custom
// elements and <param> in addition to the built-in component attributes;
// sites use them for the element-name attributes of their params.
func NewSanitizer(extraAttrs ...string) *PolicySanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowElements("mark", "section", "param")
	p.AllowElementsMatching(customElement)
	p.AllowAttrs("class", "id", "style", "role", "title").Globally()
	p.AllowDataAttributes()
	p.AllowAttrs("href", "rel").OnElements("a")

	attrs := append(append([]string{}, componentAttrs...), extraAttrs...)
	p.AllowAttrs(attrs...).OnElementsMatching(customElement)
	p.AllowAttrs(attrs...).OnElements("param")

	return &PolicySanitizer{policy: p}
}

// Sanitize applies the policy to htmlContent.
func (s *PolicySanitizer) Sanitize(htmlContent string) string {
	return s.policy.Sanitize(htmlContent)
}
