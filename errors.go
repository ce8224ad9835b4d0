package ezsite

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyInput       = errors.New("markdown or HTML content is required")
	ErrConflictingInput = errors.New("markdown and HTML content are mutually exclusive")
	ErrFrontMatter      = errors.New("invalid front matter")
	ErrHTMLConversion   = errors.New("HTML conversion failed")
	ErrHTMLParse        = errors.New("HTML parsing failed")
	ErrPageRender       = errors.New("page rendering failed")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrIncludeNotFound  = errors.New("include not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
