package pipeline

import (
	"strings"
	"testing"
)

func TestPolicySanitizer_Sanitize(t *testing.T) {
	t.Parallel()

	s := NewSanitizer("ez-map")

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "script removed",
			input:        `<p>ok</p><script>alert(1)</script>`,
			wantContains: []string{"<p>ok</p>"},
			wantExcludes: []string{"<script", "alert"},
		},
		{
			name:         "event handler removed",
			input:        `<p onclick="x()">ok</p>`,
			wantContains: []string{"<p>ok</p>"},
			wantExcludes: []string{"onclick"},
		},
		{
			name:         "component and attributes kept",
			input:        `<ez-image src="a.jpg" caption="A cat"></ez-image>`,
			wantContains: []string{"<ez-image", `src="a.jpg"`, `caption="A cat"`},
		},
		{
			name:         "unknown attribute on component dropped",
			input:        `<ez-image src="a.jpg" onload="x()"></ez-image>`,
			wantContains: []string{`src="a.jpg"`},
			wantExcludes: []string{"onload"},
		},
		{
			name:         "param element-name attribute allowed",
			input:        `<param ez-map center="Q90">`,
			wantContains: []string{"<param", "ez-map", `center="Q90"`},
		},
		{
			name:         "class id and data attributes kept",
			input:        `<section class="cards" id="s1" data-id="1.2"><mark>hi</mark></section>`,
			wantContains: []string{`class="cards"`, `id="s1"`, `data-id="1.2"`, "<mark>hi</mark>"},
		},
		{
			name:         "javascript URL dropped",
			input:        `<a href="javascript:alert(1)">x</a>`,
			wantExcludes: []string{"javascript:"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := s.Sanitize(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize() = %q, want to contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("Sanitize() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}
