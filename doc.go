// Package ezsite converts Markdown pages into structured, component-ready
// HTML pages for static sites.
//
// # Quick Start
//
// Create a converter and convert markdown:
//
//	conv, err := ezsite.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, ezsite.Input{
//	    Markdown: "# Paris {.cards}\n\n## Louvre\n\n![](louvre.jpg)",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("index.html", result.HTML, 0644)
//
// The result holds the complete page (result.HTML), the restructured body
// (result.Body), the resolved page metadata and a report of what the
// restructuring did. Use Input.Fragment to skip page assembly.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Front matter extraction (title, description, robots, lang)
//  2. Markdown preprocessing (line normalization, ==highlight== syntax)
//  3. Markdown to HTML conversion via Goldmark (GFM, heading attributes)
//  4. Optional sanitizing of raw HTML (bluemonday)
//  5. Restructuring: nested sections with positional ids, inline and code
//     directives, cards, tabs and multi-column layouts, components
//  6. Optional entity enrichment from Wikidata
//  7. Base path rewriting for sites served from a sub-path
//  8. Page assembly from an html/template with CSS, JSON-LD and includes
//
// # Configuration
//
// Site settings come from ezsite.yaml or a Jekyll _config.yml:
//
//	cfg, err := ezsite.LoadConfig("./_config.yml")
//	conv, err := ezsite.NewConverter(
//	    ezsite.WithConfig(cfg),
//	    ezsite.WithLogger(logger),
//	    ezsite.WithTimeout(time.Minute),
//	)
//
// # Custom Assets
//
// Override the built-in style and page template, and add header and footer
// includes, using an asset directory:
//
//	assets/
//	├── styles/
//	│   └── default.css
//	├── templates/
//	│   └── page.html
//	└── _includes/
//	    ├── header.html
//	    └── footer.html
//
// Includes may reference {{ site.baseurl }}, which is replaced by the
// configured base path.
package ezsite
