// Package headline tokenizes and resolves the single-line directive syntax
// used by ezsite components:
//
//	ez-image src="photo.jpg" .wide #hero :"max-width: 40rem" full "caption"
//
// Tokenize splits a headline into typed tokens; Resolve folds tokens into an
// Attrs value. Neither step fails: malformed input (an unmatched quote, a
// stray '=') degrades to best-effort token boundaries.
package headline

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies a headline token.
type Kind int

// Token kinds.
const (
	KindFlag     Kind = iota // word -> true
	KindBareword             // hyphenated custom-element name
	KindKV                   // key=value
	KindClass                // .name
	KindStyle                // :rule
	KindID                   // #name
	KindQuoted               // "argument"
)

var kindNames = [...]string{"flag", "bareword", "kv", "class", "style", "id", "quoted"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token is one classified headline token.
type Token struct {
	Kind  Kind
	Key   string // set for KindKV
	Value string // unquoted value, class/id/style name, or the word itself
	Raw   string // merged source text
}

// headlineLexer splits on whitespace without breaking quoted substrings.
// Stray quotes are lexed separately so they can be dropped.
var headlineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Quoted", Pattern: `"[^"]*"`},
	{Name: "Word", Pattern: `[^\s"]+`},
	{Name: "Stray", Pattern: `"`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	symbols    = headlineLexer.Symbols()
	quotedType = symbols["Quoted"]
	wordType   = symbols["Word"]
)

// customElementName matches hyphenated names such as "ez-image" or "sl-tab-group".
var customElementName = regexp.MustCompile(`^\w[\w-]*-[\w-]*\w$`)

// smartQuotes normalizes typographic quotes produced by editors.
var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`,
	"‘", "'", "’", "'",
)

// IsCustomElementName reports whether s looks like a custom element tag.
func IsCustomElementName(s string) bool {
	return customElementName.MatchString(s)
}

// Tokenize returns the ordered tokens of a headline.
func Tokenize(s string) []Token {
	raw := lexRaw(smartQuotes.Replace(s))

	tokens := make([]Token, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		r := raw[i]
		// ":" followed by a quoted rule is one style token.
		if r == ":" && i+1 < len(raw) && strings.HasPrefix(raw[i+1], `"`) {
			i++
			tokens = append(tokens, Token{Kind: KindStyle, Value: unquote(raw[i]), Raw: r + raw[i]})
			continue
		}
		tokens = append(tokens, classify(r))
	}
	return tokens
}

// lexRaw returns whitespace-separated words, merging a word that ends with a
// dangling '=' with the token after it.
func lexRaw(s string) []string {
	var out []string
	lex, err := headlineLexer.LexString("", s)
	if err != nil {
		return nil
	}
	for {
		tok, err := lex.Next()
		if err != nil || tok.EOF() {
			break
		}
		if tok.Type != wordType && tok.Type != quotedType {
			continue
		}
		if n := len(out); n > 0 && danglingEquals(out[n-1]) {
			out[n-1] += tok.Value
			continue
		}
		out = append(out, tok.Value)
	}
	return out
}

// danglingEquals reports whether the first '=' of s is its last character.
func danglingEquals(s string) bool {
	i := strings.Index(s, "=")
	return i >= 0 && i == len(s)-1
}

func classify(raw string) Token {
	t := Token{Raw: raw, Value: raw}
	switch {
	case raw[0] == '"':
		t.Kind = KindQuoted
		t.Value = unquote(raw)
	case strings.Index(raw, "=") > 0:
		i := strings.Index(raw, "=")
		t.Kind = KindKV
		t.Key = raw[:i]
		t.Value = unquote(raw[i+1:])
	case len(raw) > 1 && raw[0] == '.':
		t.Kind = KindClass
		t.Value = unquote(raw[1:])
	case raw[0] == ':':
		t.Kind = KindStyle
		t.Value = unquote(raw[1:])
	case len(raw) > 1 && raw[0] == '#':
		t.Kind = KindID
		t.Value = raw[1:]
	case customElementName.MatchString(raw):
		t.Kind = KindBareword
	default:
		t.Kind = KindFlag
	}
	return t
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
