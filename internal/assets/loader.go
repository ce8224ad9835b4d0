package assets

import "path"

// AssetLoader defines the contract for loading page assets.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a page template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)

	// LoadInclude loads a site include such as "header" or "footer".
	// Returns ErrIncludeNotFound if the include doesn't exist.
	LoadInclude(name string) (string, error)
}

// Built-in asset names.
const (
	DefaultStyleName    = "default"
	DefaultTemplateName = "page"
	HeaderInclude       = "header"
	FooterInclude       = "footer"
)

// kind locates one category of asset inside an asset tree.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
	includeKind  = kind{dir: "_includes", ext: ".html", notFound: ErrIncludeNotFound}
)

// file returns the slash-separated path of the named asset.
func (k kind) file(name string) string {
	return path.Join(k.dir, name+k.ext)
}
