package headline

import (
	"regexp"
	"strings"
)

var (
	qidPattern    = regexp.MustCompile(`^Q\d+$`)
	coordsPattern = regexp.MustCompile(`^[+-]?\d+(\.\d*)?,[+-]?\d+(\.\d*)?$`)
)

// IsQID reports whether s is a Wikidata entity id such as "Q220".
func IsQID(s string) bool { return qidPattern.MatchString(s) }

// IsCoords reports whether s is a "lat,lon" pair such as "41.9,12.5".
func IsCoords(s string) bool { return coordsPattern.MatchString(s) }

// Options tune resolution.
type Options struct {
	// EntityShorthand maps a bare QID flag to qid=... and a bare coordinate
	// pair to zoomto=... (used by the ==marked== span syntax).
	EntityShorthand bool
}

// Attr is one resolved key. Flag attributes have no value.
type Attr struct {
	Key  string
	Val  string
	Flag bool
}

// Attrs is the resolved attribute map of a headline.
type Attrs struct {
	Tag     string
	ID      string
	Classes []string
	Style   string
	Args    []string
	Values  []Attr
}

// Parse tokenizes and resolves s.
func Parse(s string, opts Options) *Attrs {
	return Resolve(Tokenize(s), opts)
}

// Resolve folds tokens into Attrs, in order.
func Resolve(tokens []Token, opts Options) *Attrs {
	a := &Attrs{}
	for _, t := range tokens {
		switch t.Kind {
		case KindKV:
			switch t.Key {
			case "class":
				a.AddClass(splitClasses(t.Value)...)
			case "id":
				a.ID = t.Value
			case "style":
				a.appendStyle(t.Value)
			default:
				a.appendValue(t.Key, t.Value)
			}
		case KindClass:
			a.AddClass(splitClasses(t.Value)...)
		case KindStyle:
			a.appendStyle(t.Value)
		case KindQuoted:
			a.Args = append(a.Args, t.Value)
		case KindID:
			a.ID = t.Value
		case KindBareword:
			a.Tag = t.Value
		case KindFlag:
			switch {
			case opts.EntityShorthand && IsQID(t.Value):
				a.Set("qid", t.Value)
			case opts.EntityShorthand && IsCoords(t.Value):
				a.Set("zoomto", t.Value)
			default:
				a.SetFlag(t.Value)
			}
		}
	}
	return a
}

func splitClasses(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// Len is the number of key=value and flag entries, aggregates excluded.
func (a *Attrs) Len() int { return len(a.Values) }

// Empty reports whether nothing resolved at all.
func (a *Attrs) Empty() bool {
	return a.Tag == "" && !a.HasPresentation() && len(a.Args) == 0 && len(a.Values) == 0
}

// HasPresentation reports whether a class, style or id resolved.
func (a *Attrs) HasPresentation() bool {
	return len(a.Classes) > 0 || a.Style != "" || a.ID != ""
}

// Get returns the value of key. Flags report "" and true.
func (a *Attrs) Get(key string) (string, bool) {
	for _, v := range a.Values {
		if v.Key == key {
			return v.Val, true
		}
	}
	return "", false
}

// Has reports whether key resolved (as a value or a flag).
func (a *Attrs) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// IsFlag reports whether key resolved as a bare flag.
func (a *Attrs) IsFlag(key string) bool {
	for _, v := range a.Values {
		if v.Key == key {
			return v.Flag
		}
	}
	return false
}

// Set stores key=val, replacing an existing entry.
func (a *Attrs) Set(key, val string) {
	for i, v := range a.Values {
		if v.Key == key {
			a.Values[i] = Attr{Key: key, Val: val}
			return
		}
	}
	a.Values = append(a.Values, Attr{Key: key, Val: val})
}

// SetFlag stores key as a flag unless a value is already present.
func (a *Attrs) SetFlag(key string) {
	if a.Has(key) {
		return
	}
	a.Values = append(a.Values, Attr{Key: key, Flag: true})
}

// AddClass appends classes not already present.
func (a *Attrs) AddClass(classes ...string) {
	for _, c := range classes {
		if c == "" || contains(a.Classes, c) {
			continue
		}
		a.Classes = append(a.Classes, c)
	}
}

// Class returns the space-joined class list.
func (a *Attrs) Class() string { return strings.Join(a.Classes, " ") }

func (a *Attrs) appendStyle(s string) {
	if s == "" {
		return
	}
	if a.Style == "" {
		a.Style = s
		return
	}
	a.Style += " " + s
}

// appendValue joins repeated keys with a space; a value replaces a flag.
func (a *Attrs) appendValue(key, val string) {
	for i, v := range a.Values {
		if v.Key != key {
			continue
		}
		if v.Flag || v.Val == "" {
			a.Values[i] = Attr{Key: key, Val: val}
		} else {
			a.Values[i].Val += " " + val
		}
		return
	}
	a.Values = append(a.Values, Attr{Key: key, Val: val})
}

// String serializes the map back to headline form: flags as bare words,
// everything else as key="value". Tag and args are not included.
func (a *Attrs) String() string {
	var parts []string
	if a.ID != "" {
		parts = append(parts, `id="`+a.ID+`"`)
	}
	if len(a.Classes) > 0 {
		parts = append(parts, `class="`+a.Class()+`"`)
	}
	if a.Style != "" {
		parts = append(parts, `style="`+a.Style+`"`)
	}
	for _, v := range a.Values {
		if v.Flag {
			parts = append(parts, v.Key)
			continue
		}
		parts = append(parts, v.Key+`="`+v.Val+`"`)
	}
	return strings.Join(parts, " ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
