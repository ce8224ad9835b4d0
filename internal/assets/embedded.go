package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

// Site includes are never embedded; they belong to a site directory.
//
//go:embed styles templates
var builtin embed.FS

// EmbeddedLoader serves the stylesheet and page template compiled into the
// binary.
type EmbeddedLoader struct {
	fsys fs.FS
}

// NewEmbeddedLoader creates an EmbeddedLoader over the built-in assets.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: builtin}
}

func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.read(styleKind, name)
}

func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.read(templateKind, name)
}

// LoadInclude always reports ErrIncludeNotFound for a valid name.
func (e *EmbeddedLoader) LoadInclude(name string) (string, error) {
	return e.read(includeKind, name)
}

func (e *EmbeddedLoader) read(k kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(e.fsys, k.file(name))
	if err != nil {
		return "", fmt.Errorf("%w: %q", k.notFound, name)
	}
	return string(data), nil
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
