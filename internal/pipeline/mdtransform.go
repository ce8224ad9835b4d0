package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Placeholders use Unicode Private Use Area characters. They pass through
// Goldmark unchanged and are restored by RestorePlaceholders after conversion.
const (
	MarkStartPlaceholder     = "\uE000" // ==highlight== start
	MarkEndPlaceholder       = "\uE001" // ==highlight== end
	FootnoteStartPlaceholder = "\uE002" // [^ of a footnote marker
	FootnoteEndPlaceholder   = "\uE003" // ] of a footnote marker
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Highlight syntax ==text==, optionally followed by an attribute block
	highlightPattern = regexp.MustCompile(`==(.*?)==(\\?\{)?`)

	// Footnote marker [^id]; the definition form [^id]: shares the prefix
	footnotePattern = regexp.MustCompile(`\[\^([^\]\s]+)\]`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown applies all transformations to prepare Markdown for
// conversion. Fenced code blocks and code spans pass through unchanged.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	return mapProse(content, func(prose string) string {
		prose = mapOutsideCodeSpans(prose, func(text string) string {
			return convertHighlights(protectFootnotes(text))
		})
		return compressBlankLines(prose)
	})
}

// mapProse applies fn to the runs of lines outside fenced code blocks.
// An unclosed fence runs to the end of the document.
func mapProse(content string, fn func(string) string) string {
	var out, prose strings.Builder
	flush := func() {
		out.WriteString(fn(prose.String()))
		prose.Reset()
	}

	fence := ""
	for _, line := range strings.SplitAfter(content, "\n") {
		switch {
		case fence != "":
			out.WriteString(line)
			if closesFence(line, fence) {
				fence = ""
			}
		case openingFence(line) != "":
			flush()
			fence = openingFence(line)
			out.WriteString(line)
		default:
			prose.WriteString(line)
		}
	}
	flush()
	return out.String()
}

// openingFence returns the ``` or ~~~ run opening a fenced block, or "".
func openingFence(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" || (trimmed[0] != '`' && trimmed[0] != '~') {
		return ""
	}
	n := runLength(trimmed, trimmed[0])
	if n < 3 {
		return ""
	}
	// A backtick fence cannot carry backticks in its info string.
	if trimmed[0] == '`' && strings.ContainsRune(trimmed[n:], '`') {
		return ""
	}
	return trimmed[:n]
}

// closesFence reports whether line ends the block opened by fence.
func closesFence(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= len(fence) && runLength(trimmed, fence[0]) == len(trimmed)
}

// mapOutsideCodeSpans applies fn to the text between backtick code spans.
// A backtick run without a closing run of the same length is literal text.
func mapOutsideCodeSpans(s string, fn func(string) string) string {
	var out, text strings.Builder
	for {
		start := strings.IndexByte(s, '`')
		if start < 0 {
			break
		}
		if start > 0 && s[start-1] == '\\' {
			text.WriteString(s[:start+1])
			s = s[start+1:]
			continue
		}
		n := runLength(s[start:], '`')
		end := closingRun(s[start+n:], n)
		if end < 0 {
			text.WriteString(s[:start+n])
			s = s[start+n:]
			continue
		}
		text.WriteString(s[:start])
		out.WriteString(fn(text.String()))
		text.Reset()
		span := start + n + end + n
		out.WriteString(s[start:span])
		s = s[span:]
	}
	text.WriteString(s)
	out.WriteString(fn(text.String()))
	return out.String()
}

// closingRun returns the offset of the first run of exactly n backticks.
func closingRun(s string, n int) int {
	for i := 0; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		m := runLength(s[i:], '`')
		if m == n {
			return i
		}
		i += m
	}
	return -1
}

func runLength(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// protectFootnotes hides [^id] markers from Goldmark, which would otherwise
// read "[^id]: url" lines as link reference definitions and drop them.
func protectFootnotes(content string) string {
	return footnotePattern.ReplaceAllString(content, FootnoteStartPlaceholder+"$1"+FootnoteEndPlaceholder)
}

// convertHighlights transforms ==text== to placeholder markers. A highlight
// followed by {attrs} is a marked span and is left for the restructuring
// pass to turn into a component.
func convertHighlights(content string) string {
	return highlightPattern.ReplaceAllStringFunc(content, func(m string) string {
		sub := highlightPattern.FindStringSubmatch(m)
		if sub[2] != "" {
			return m
		}
		return MarkStartPlaceholder + sub[1] + MarkEndPlaceholder
	})
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// RestorePlaceholders undoes every preprocessing placeholder in Goldmark output:
// highlight markers become <mark> tags and footnote markers their literal text.
func RestorePlaceholders(content string) string {
	content = ConvertMarkPlaceholders(content)
	return strings.ReplaceAll(
		strings.ReplaceAll(content, FootnoteStartPlaceholder, "[^"),
		FootnoteEndPlaceholder, "]",
	)
}
