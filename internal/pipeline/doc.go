// Package pipeline implements the Markdown-to-page stages around restructuring.
//
// Stages, in the order the converter runs them:
//   - Markdown preprocessing (line normalization, highlight and footnote placeholders)
//   - Markdown to HTML fragment conversion via Goldmark
//   - Optional raw HTML sanitizing (bluemonday)
//   - Page metadata extraction with front matter and site fallbacks
//   - Base path rewriting of root-relative links for sub-path hosting
//   - Page assembly from an html/template with inlined CSS and JSON-LD
//
// Section building and component conversion live in internal/restructure,
// which operates on the parsed fragment between conversion and assembly.
package pipeline
