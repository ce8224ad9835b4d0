// Package assets provides the page template, stylesheets and site includes
// used to assemble ezsite pages.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (default style and page template)
//	    ├── FilesystemLoader  - loads from a site directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the converter. It tries the site
// directory first and falls back to the embedded assets when an asset is not
// found there, so a site can override just its stylesheet or just its template.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # page stylesheet
//	├── templates/
//	│   └── {name}.html          # page template (html/template)
//	└── _includes/
//	    ├── header.html          # site header, {{ site.baseurl }} substituted
//	    └── footer.html          # site footer
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
