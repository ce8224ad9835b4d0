package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/alnah/go-ezsite"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Mock converter
// ---------------------------------------------------------------------------

var errMockConvert = errors.New("mock conversion failed")

// mockConverter echoes markdown into HTML and fails on "FAIL".
type mockConverter struct {
	mu    sync.Mutex
	calls []ezsite.Input
}

func (m *mockConverter) Convert(_ context.Context, input ezsite.Input) (*ezsite.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, input)
	m.mu.Unlock()

	if strings.Contains(input.Markdown, "FAIL") {
		return nil, errMockConvert
	}
	report := &ezsite.Report{}
	if strings.Contains(input.Markdown, "WARN") {
		report.Diagnostics = []error{errors.New("mock diagnostic")}
	}
	return &ezsite.Result{HTML: []byte("<p>" + input.Markdown + "</p>"), Report: report}, nil
}

func (m *mockConverter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// ---------------------------------------------------------------------------
// TestBuildBatch
// ---------------------------------------------------------------------------

func TestBuildBatch(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{
		"a.md": "alpha",
		"b.md": "WARN beta",
		"c.md": "FAIL gamma",
	})
	out := filepath.Join(dir, "out")
	files, err := discoverFiles(dir, out)
	if err != nil {
		t.Fatalf("discoverFiles() error = %v", err)
	}

	mock := &mockConverter{}
	results := buildBatch(context.Background(), mock, files, 2, zaptest.NewLogger(t))

	if len(results) != 3 {
		t.Fatalf("buildBatch() = %d results, want 3", len(results))
	}
	if mock.callCount() != 3 {
		t.Errorf("converter called %d times, want 3", mock.callCount())
	}

	byInput := map[string]BuildResult{}
	for _, r := range results {
		byInput[filepath.Base(r.InputPath)] = r
	}

	if r := byInput["a.md"]; r.Err != nil {
		t.Errorf("a.md error = %v", r.Err)
	}
	got, err := os.ReadFile(filepath.Join(out, "a.html"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(got) != "<p>alpha</p>" {
		t.Errorf("a.html = %q, want %q", got, "<p>alpha</p>")
	}

	if r := byInput["b.md"]; r.Diagnostics != 1 {
		t.Errorf("b.md diagnostics = %d, want 1", r.Diagnostics)
	}

	if r := byInput["c.md"]; !errors.Is(r.Err, errMockConvert) {
		t.Errorf("c.md error = %v, want errMockConvert", r.Err)
	}
	if _, err := os.Stat(filepath.Join(out, "c.html")); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed page should not be written")
	}
}

func TestBuildBatch_CanceledContext(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"a.md": "alpha", "b.md": "beta"})
	files, err := discoverFiles(dir, "")
	if err != nil {
		t.Fatalf("discoverFiles() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &mockConverter{}
	for _, r := range buildBatch(ctx, mock, files, 1, zaptest.NewLogger(t)) {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s error = %v, want context.Canceled", r.InputPath, r.Err)
		}
	}
	if mock.callCount() != 0 {
		t.Errorf("converter called %d times after cancel", mock.callCount())
	}
}

func TestBuildBatch_Empty(t *testing.T) {
	t.Parallel()

	if got := buildBatch(context.Background(), &mockConverter{}, nil, 4, zaptest.NewLogger(t)); got != nil {
		t.Errorf("buildBatch(nil) = %v, want nil", got)
	}
}

// ---------------------------------------------------------------------------
// TestPrintResultsWithWriter
// ---------------------------------------------------------------------------

func TestPrintResultsWithWriter(t *testing.T) {
	t.Parallel()

	results := []BuildResult{
		{InputPath: "a.md", OutputPath: "a.html"},
		{InputPath: "b.md", Err: errMockConvert},
	}

	tests := []struct {
		name        string
		quiet       bool
		verbose     bool
		wantStdout  []string
		avoidStdout []string
	}{
		{
			name:       "normal",
			wantStdout: []string{"Created a.html", "1 succeeded, 1 failed"},
		},
		{
			name:       "verbose",
			verbose:    true,
			wantStdout: []string{"a.md -> a.html", "0 diagnostics"},
		},
		{
			name:        "quiet",
			quiet:       true,
			avoidStdout: []string{"Created", "succeeded"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			env := &Environment{Stdout: &stdout, Stderr: &stderr}

			if failed := printResultsWithWriter(results, tt.quiet, tt.verbose, env); failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}
			if !strings.Contains(stderr.String(), "FAILED b.md: mock conversion failed") {
				t.Errorf("stderr = %q, want failure line", stderr.String())
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout = %q, want to contain %q", stdout.String(), want)
				}
			}
			for _, avoid := range tt.avoidStdout {
				if strings.Contains(stdout.String(), avoid) {
					t.Errorf("stdout = %q, should not contain %q", stdout.String(), avoid)
				}
			}
		})
	}
}
