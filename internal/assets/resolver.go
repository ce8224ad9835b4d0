package assets

import "errors"

// AssetResolver asks a chain of loaders in turn: the site directory first
// when one is configured, then the embedded assets. Only not-found errors
// move on to the next loader.
type AssetResolver struct {
	chain []AssetLoader
}

// NewAssetResolver creates an AssetResolver. An empty siteDir uses the
// embedded assets alone; an unusable one returns ErrInvalidBasePath.
func NewAssetResolver(siteDir string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if siteDir != "" {
		site, err := NewFilesystemLoader(siteDir)
		if err != nil {
			return nil, err
		}
		r.chain = append(r.chain, site)
	}
	r.chain = append(r.chain, NewEmbeddedLoader())
	return r, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) LoadInclude(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadInclude(name) })
}

// first returns the first successful load, or the last error seen.
func (r *AssetResolver) first(load func(AssetLoader) (string, error)) (string, error) {
	var err error
	for _, l := range r.chain {
		var content string
		content, err = load(l)
		if err == nil {
			return content, nil
		}
		if !IsNotFound(err) {
			return "", err
		}
	}
	return "", err
}

// HasCustomLoader reports whether a site directory is part of the chain.
func (r *AssetResolver) HasCustomLoader() bool {
	return len(r.chain) > 1
}

// IsNotFound reports whether err indicates a missing asset.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrIncludeNotFound)
}

var _ AssetLoader = (*AssetResolver)(nil)
