package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-ezsite/internal/fileutil"
)

// ErrInvalidExtension is returned for a single input file that is not markdown.
var ErrInvalidExtension = errors.New("file must have .md or .markdown extension")

// outputExtension is the extension of built pages, without dot.
const outputExtension = "html"

// FileToBuild represents a single page to build.
type FileToBuild struct {
	InputPath  string
	OutputPath string
}

// discoverFiles finds all markdown files to build. Directories and files
// whose name starts with "_" or "." are skipped, like a Jekyll site, and so
// is an output directory nested in the input.
func discoverFiles(inputPath, outputDir string) ([]FileToBuild, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !fileutil.IsMarkdownFile(inputPath) {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(inputPath))
		}
		outPath, err := resolveOutputPath(inputPath, outputDir, "")
		if err != nil {
			return nil, err
		}
		return []FileToBuild{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	skipDir := ""
	if outputDir != "" {
		skipDir = filepath.Clean(outputDir)
	}

	var files []FileToBuild
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != inputPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skipDir != "" && path != inputPath && filepath.Clean(path) == skipDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !fileutil.IsMarkdownFile(path) {
			return nil
		}
		outPath, err := resolveOutputPath(path, outputDir, inputPath)
		if err != nil {
			return err
		}
		files = append(files, FileToBuild{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the HTML output path for a markdown file.
// Without an output directory the page is written next to its source;
// otherwise the layout below baseInputDir is mirrored.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) (string, error) {
	outPath, err := fileutil.ReplaceExtension(inputPath, outputExtension)
	if err != nil {
		return "", err
	}
	if outputDir == "" {
		return outPath, nil
	}

	if baseInputDir != "" {
		if rel, err := filepath.Rel(baseInputDir, outPath); err == nil {
			return filepath.Join(outputDir, rel), nil
		}
	}
	return filepath.Join(outputDir, filepath.Base(outPath)), nil
}

// isHidden reports whether a file or directory is excluded from the build.
func isHidden(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// isDir reports whether path is an existing directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
