package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FilesystemLoader serves assets from a site directory. Every resolved
// file, symlinks followed, must stay inside that directory.
type FilesystemLoader struct {
	root string
}

// NewFilesystemLoader creates a FilesystemLoader rooted at dir.
// Returns ErrInvalidBasePath unless dir is a readable directory.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	root, err := resolveRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	return &FilesystemLoader{root: root}, nil
}

// resolveRoot returns the absolute, symlink-free form of dir.
func resolveRoot(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	// ReadDir rejects missing paths, plain files and unreadable directories.
	if _, err := os.ReadDir(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// LoadStyle reads styles/{name}.css.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	return f.read(styleKind, name)
}

// LoadTemplate reads templates/{name}.html.
func (f *FilesystemLoader) LoadTemplate(name string) (string, error) {
	return f.read(templateKind, name)
}

// LoadInclude reads _includes/{name}.html.
func (f *FilesystemLoader) LoadInclude(name string) (string, error) {
	return f.read(includeKind, name)
}

func (f *FilesystemLoader) read(k kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	target, err := f.contain(filepath.Join(f.root, filepath.FromSlash(k.file(name))))
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(target) // #nosec G304 -- contained in root
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q", k.notFound, name)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(data), nil
}

// contain follows symlinks in target and rejects anything outside the root.
// A missing file keeps its lexical path so the read reports it as not found.
func (f *FilesystemLoader) contain(target string) (string, error) {
	if real, err := filepath.EvalSymlinks(target); err == nil {
		target = real
	}
	rel, err := filepath.Rel(f.root, target)
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, target)
	}
	return target, nil
}

var _ AssetLoader = (*FilesystemLoader)(nil)
