package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-ezsite/internal/yamlutil"
)

type pageMeta struct {
	Title  string   `yaml:"title"`
	Weight int      `yaml:"weight"`
	Draft  bool     `yaml:"draft"`
	Tags   []string `yaml:"tags"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Lenient and strict decoding
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	decoders := map[string]func([]byte, any) error{
		"lenient": yamlutil.Unmarshal,
		"strict":  yamlutil.UnmarshalStrict,
	}

	tests := []struct {
		name       string
		data       string
		nilDest    bool
		wantErr    error
		strictOnly bool // error only from the strict decoder
		want       pageMeta
	}{
		{
			name: "known fields",
			data: "title: Paris\nweight: 3\ndraft: true\ntags: [travel, art]",
			want: pageMeta{Title: "Paris", Weight: 3, Draft: true, Tags: []string{"travel", "art"}},
		},
		{
			name: "unicode",
			data: "title: 東京",
			want: pageMeta{Title: "東京"},
		},
		{
			name:       "unknown field",
			data:       "title: Paris\nlayout: post",
			wantErr:    yamlutil.ErrParse,
			strictOnly: true,
			want:       pageMeta{Title: "Paris"},
		},
		{name: "empty data", data: "", wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: "title: x", nilDest: true, wantErr: yamlutil.ErrNilDestination},
		{name: "syntax error", data: "title: [unclosed", wantErr: yamlutil.ErrParse},
	}

	for decName, decode := range decoders {
		decName := decName
		decode := decode
		for _, tt := range tests {
			tt := tt
			t.Run(decName+"/"+tt.name, func(t *testing.T) {
				t.Parallel()

				var got pageMeta
				var dest any = &got
				if tt.nilDest {
					dest = nil
				}
				err := decode([]byte(tt.data), dest)

				wantErr := tt.wantErr
				if tt.strictOnly && decName != "strict" {
					wantErr = nil
				}
				if wantErr != nil {
					if !errors.Is(err, wantErr) {
						t.Fatalf("error = %v, want %v", err, wantErr)
					}
					if !strings.HasPrefix(err.Error(), "yamlutil:") {
						t.Errorf("error = %q, want yamlutil prefix", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Title != tt.want.Title || got.Weight != tt.want.Weight || got.Draft != tt.want.Draft ||
					strings.Join(got.Tags, ",") != strings.Join(tt.want.Tags, ",") {
					t.Errorf("decoded %+v, want %+v", got, tt.want)
				}
			})
		}
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - MaxInputSize enforcement
// ---------------------------------------------------------------------------

// Not parallel: mutates the package-level MaxInputSize.
func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })
	yamlutil.MaxInputSize = 64

	atLimit := make([]byte, 64)
	copy(atLimit, "title: x")
	if err := yamlutil.Unmarshal(atLimit, &pageMeta{}); err != nil {
		t.Errorf("input at limit: unexpected error: %v", err)
	}

	over := make([]byte, 65)
	copy(over, "title: x")
	for name, decode := range map[string]func([]byte, any) error{
		"lenient": yamlutil.Unmarshal,
		"strict":  yamlutil.UnmarshalStrict,
	} {
		err := decode(over, &pageMeta{})
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("%s: error = %v, want ErrInputTooLarge", name, err)
			continue
		}
		if !strings.Contains(err.Error(), "65 bytes") || !strings.Contains(err.Error(), "max 64") {
			t.Errorf("%s: error %q should report both sizes", name, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestSplitFrontMatter - Separates a leading YAML block from markdown
// ---------------------------------------------------------------------------

func TestSplitFrontMatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantFront string
		wantBody  string
		wantOK    bool
	}{
		{
			name:      "front matter and body",
			input:     "---\ntitle: x\n---\n# Body\n",
			wantFront: "title: x",
			wantBody:  "# Body\n",
			wantOK:    true,
		},
		{
			name:     "empty front matter",
			input:    "---\n---\ntext",
			wantBody: "text",
			wantOK:   true,
		},
		{
			name:      "front matter only",
			input:     "---\ntitle: x\n---",
			wantFront: "title: x",
			wantOK:    true,
		},
		{
			name:     "no front matter",
			input:    "# Title\n---\n",
			wantBody: "# Title\n---\n",
		},
		{
			name:     "unterminated fence",
			input:    "---\ntitle: x\n",
			wantBody: "---\ntitle: x\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			front, body, ok := yamlutil.SplitFrontMatter(tt.input)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if string(front) != tt.wantFront {
				t.Errorf("front = %q, want %q", front, tt.wantFront)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestUnmarshalFrontMatter(t *testing.T) {
	t.Parallel()

	t.Run("decodes front matter", func(t *testing.T) {
		t.Parallel()

		var meta pageMeta
		body, err := yamlutil.UnmarshalFrontMatter("---\ntitle: Paris\nweight: 2\n---\ntext", &meta)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if body != "text" || meta.Title != "Paris" || meta.Weight != 2 {
			t.Errorf("got body %q, meta %+v", body, meta)
		}
	})

	t.Run("no front matter leaves destination untouched", func(t *testing.T) {
		t.Parallel()

		meta := pageMeta{Title: "keep"}
		body, err := yamlutil.UnmarshalFrontMatter("text", &meta)
		if err != nil || body != "text" || meta.Title != "keep" {
			t.Errorf("got body %q, meta %+v, err %v", body, meta, err)
		}
	})

	t.Run("invalid front matter returns error", func(t *testing.T) {
		t.Parallel()

		var meta pageMeta
		if _, err := yamlutil.UnmarshalFrontMatter("---\ntitle: [unclosed\n---\n", &meta); !errors.Is(err, yamlutil.ErrParse) {
			t.Errorf("error = %v, want ErrParse", err)
		}
	})
}
