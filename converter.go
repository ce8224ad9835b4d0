package ezsite

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-ezsite/internal/assets"
	"github.com/alnah/go-ezsite/internal/dom"
	"github.com/alnah/go-ezsite/internal/entity"
	"github.com/alnah/go-ezsite/internal/fileutil"
	"github.com/alnah/go-ezsite/internal/pipeline"
	"github.com/alnah/go-ezsite/internal/restructure"
	"github.com/alnah/go-ezsite/internal/yamlutil"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.HTMLSanitizer        = (*pipeline.PolicySanitizer)(nil)
	_ restructure.InlineRenderer    = (*pipeline.MarkdownRenderer)(nil)
	_ assets.AssetLoader            = (AssetLoader)(nil)
	_ entity.Resolver               = (*entity.Cache)(nil)
	_ entity.Resolver               = (*entity.WikidataClient)(nil)
	_ entity.Resolver               = (*resolverAdapter)(nil)
)

// Converter turns Markdown pages into restructured ezsite pages.
// Create with NewConverter(); a Converter is safe for concurrent use.
type Converter struct {
	cfg            converterConfig
	siteCfg        *Config
	logger         *zap.Logger
	assetLoader    AssetLoader
	publicResolver EntityResolver

	renderer  *pipeline.MarkdownRenderer
	sanitizer pipeline.HTMLSanitizer
	assembler *pipeline.PageAssembler
	enricher  *entity.Enricher
	options   restructure.Options
	css       template.CSS
	header    template.HTML
	footer    template.HTML
}

// frontMatter is the YAML block accepted at the top of a page.
type frontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Robots      string `yaml:"robots"`
	Lang        string `yaml:"lang"`
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithConfig, WithLogger, WithAssetPath).
// Returns error if asset loading or template parsing fails.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:      converterConfig{timeout: defaultTimeout},
		siteCfg:  DefaultConfig(),
		logger:   zap.NewNop(),
		renderer: pipeline.NewMarkdownRenderer(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.assetLoader == nil {
		base := c.cfg.assetPath
		if base == "" {
			base = c.siteCfg.Assets.BasePath
		}
		loader, err := NewAssetLoader(base)
		if err != nil {
			return nil, err
		}
		c.assetLoader = loader
	}

	if err := c.resolveStyle(); err != nil {
		return nil, err
	}
	if err := c.loadTemplate(); err != nil {
		return nil, err
	}
	if err := c.loadIncludes(); err != nil {
		return nil, err
	}

	c.options = restructureOptions(c.siteCfg.Content, c.renderer)
	if c.siteCfg.Content.Sanitize {
		c.sanitizer = pipeline.NewSanitizer(componentNames(c.siteCfg.Site.Components)...)
	}
	c.enricher = c.newEnricher()

	return c, nil
}

// Convert runs the full pipeline for one page.
// The context is used for cancellation; the converter timeout bounds it.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := input.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	log := c.logger
	if input.Path != "" {
		log = log.With(zap.String("path", input.Path))
	}

	var fm frontMatter
	htmlContent := input.HTML
	if input.Markdown != "" {
		md := strings.ReplaceAll(input.Markdown, "\r\n", "\n")
		md, err = yamlutil.UnmarshalFrontMatter(md, &fm)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFrontMatter, err)
		}

		htmlContent, err = c.renderer.Render(ctx, md)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
		}
		log.Debug("Markdown rendered", zap.Int("bytes", len(htmlContent)))
	}

	if c.sanitizer != nil {
		htmlContent = c.sanitizer.Sanitize(htmlContent)
	}

	root := dom.NewElement("main")
	if err := dom.SetInnerHTML(root, htmlContent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLParse, err)
	}

	rep := restructure.Restructure(root, c.options)
	report := toReport(rep)
	log.Debug("Page restructured",
		zap.Int("sections", rep.Sections),
		zap.Int("segments", rep.Segments),
		zap.Int("directives", rep.Directives),
		zap.Int("components", rep.Components))
	for _, d := range rep.Diagnostics {
		log.Debug("Restructure diagnostic", zap.Error(d))
	}

	if c.enricher != nil {
		n, enrichErr := c.enricher.Enrich(ctx, root)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if enrichErr != nil {
			log.Warn("Entity enrichment incomplete", zap.Error(enrichErr))
			report.Diagnostics = append(report.Diagnostics, enrichErr)
		}
		report.Enriched = n
	}

	site := c.siteCfg.Site
	meta := pipeline.ExtractMeta(root, c.options.ComponentPrefix, pipeline.MetaSources{
		FrontMatter: pipeline.Meta{Title: fm.Title, Description: fm.Description, Robots: fm.Robots},
		Site:        pipeline.Meta{Title: site.Title, Description: site.Description, Robots: site.Robots},
		Indexable:   site.Indexable,
	})

	pipeline.RewriteBasePathTree(root, site.BaseURL)
	body := dom.InnerHTML(root)

	res := &Result{
		Body:   body,
		Meta:   Meta(meta),
		Report: report,
	}

	if input.Fragment || c.siteCfg.Output.Fragment {
		res.HTML = []byte(body)
		return res, nil
	}

	lang := fm.Lang
	if lang == "" {
		lang = site.Language
	}
	page, err := c.assembler.Assemble(ctx, &pipeline.PageData{
		Lang:        lang,
		Title:       meta.Title,
		Description: meta.Description,
		Robots:      meta.Robots,
		CSS:         c.css,
		SEO:         pipeline.NewSEO(meta, siteURL(site)),
		Components:  componentScripts(site),
		Header:      c.header,
		Body:        template.HTML(body), // #nosec G203 -- restructured output of the page source
		Footer:      c.footer,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageRender, err)
	}

	res.HTML = []byte(page)
	return res, nil
}

// validate checks that exactly one content source is set.
func (in Input) validate() error {
	switch {
	case in.Markdown == "" && in.HTML == "":
		return ErrEmptyInput
	case in.Markdown != "" && in.HTML != "":
		return ErrConflictingInput
	}
	return nil
}

// resolveStyle resolves the configured style (name or path) to CSS content.
func (c *Converter) resolveStyle() error {
	input := c.siteCfg.Assets.Style
	if input == "" {
		input = DefaultStyle
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		c.css = pipeline.SanitizeCSS(string(content))
		return nil
	}

	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, err)
	}
	c.css = pipeline.SanitizeCSS(css)
	return nil
}

func (c *Converter) loadTemplate() error {
	name := c.siteCfg.Assets.Template
	if name == "" {
		name = DefaultTemplate
	}
	tmpl, err := c.assetLoader.LoadTemplate(name)
	if err != nil {
		return fmt.Errorf("loading template %q: %w", name, err)
	}
	c.assembler, err = pipeline.NewPageAssembler(tmpl)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return nil
}

// loadIncludes loads the optional header and footer includes.
func (c *Converter) loadIncludes() error {
	load := func(name string) (template.HTML, error) {
		content, err := c.assetLoader.LoadInclude(name)
		if err != nil {
			if errors.Is(err, ErrIncludeNotFound) || assets.IsNotFound(err) {
				return "", nil
			}
			return "", fmt.Errorf("loading include %q: %w", name, err)
		}
		content = pipeline.SubstituteSiteVars(content, c.siteCfg.Site.BaseURL)
		return template.HTML(content), nil // #nosec G203 -- site-owned include
	}

	var err error
	if c.header, err = load(HeaderInclude); err != nil {
		return err
	}
	c.footer, err = load(FooterInclude)
	return err
}

func (c *Converter) newEnricher() *entity.Enricher {
	ec := c.siteCfg.Entities
	var resolver entity.Resolver
	switch {
	case c.publicResolver != nil:
		resolver = &resolverAdapter{pub: c.publicResolver}
	case ec.Enabled:
		lang := ec.Language
		if lang == "" {
			lang = c.siteCfg.Site.Language
		}
		client := entity.NewWikidataClient(
			entity.WithEndpoint(ec.Endpoint),
			entity.WithLanguage(lang),
			entity.WithTimeout(ec.TimeoutDuration(entity.DefaultTimeout)),
		)
		resolver = entity.NewCache(client, ec.TTLDuration(entity.DefaultTTL))
	default:
		return nil
	}
	return &entity.Enricher{
		Resolver:    resolver,
		Prefix:      c.options.ComponentPrefix,
		Concurrency: ec.Concurrency,
		Logger:      c.logger,
	}
}

// resolverAdapter wraps a public EntityResolver to the internal interface.
type resolverAdapter struct {
	pub EntityResolver
}

func (a *resolverAdapter) Resolve(ctx context.Context, qid string) (entity.Entity, error) {
	e, err := a.pub.Resolve(ctx, qid)
	if err != nil {
		return entity.Entity{}, err
	}
	return entity.Entity(e), nil
}

// restructureOptions maps content settings onto the restructuring options.
func restructureOptions(cc ContentConfig, r restructure.InlineRenderer) restructure.Options {
	o := restructure.DefaultOptions()
	if cc.ComponentPrefix != "" {
		o.ComponentPrefix = cc.ComponentPrefix
	}
	if cc.SectionClassPrefix != "" {
		o.SectionClassPrefix = cc.SectionClassPrefix
	}
	setBool(&o.PruneEmptyHeadings, cc.PruneEmptyHeadings)
	setBool(&o.SkipComponentSegments, cc.SkipComponentSegments)
	setBool(&o.MoveFooters, cc.MoveFooters)
	setBool(&o.AnnotateTimestamps, cc.AnnotateTimestamps)
	setBool(&o.ConvertImages, cc.ConvertImages)
	if len(cc.ReservedLanguages) > 0 {
		o.ReservedLanguages = cc.ReservedLanguages
	}
	if cc.Tabs.Group != "" {
		o.TabGroupTag = cc.Tabs.Group
	}
	if cc.Tabs.Tab != "" {
		o.TabTag = cc.Tabs.Tab
	}
	if cc.Tabs.Panel != "" {
		o.TabPanelTag = cc.Tabs.Panel
	}
	o.InlineRenderer = r
	return o
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func toReport(r *restructure.Report) *Report {
	out := &Report{
		Sections:   r.Sections,
		Segments:   r.Segments,
		Directives: r.Directives,
		Footnotes:  r.Footnotes,
		Components: r.Components,
	}
	for _, d := range r.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, d)
	}
	return out
}

// componentScripts returns the component module URLs with the base path applied.
func componentScripts(site SiteConfig) []string {
	out := make([]string, 0, len(site.Components))
	for _, src := range site.Components {
		out = append(out, pipeline.WithBasePath(src, site.BaseURL))
	}
	return out
}

// componentNames derives custom element names from component script URLs:
// "/components/ez-map.js" declares <ez-map>.
func componentNames(scripts []string) []string {
	var names []string
	for _, src := range scripts {
		src, _, _ = strings.Cut(src, "?")
		name := strings.TrimSuffix(path.Base(src), path.Ext(src))
		if strings.Contains(name, "-") {
			names = append(names, strings.ToLower(name))
		}
	}
	return names
}

// siteURL returns the public URL of a GitHub Pages site, or the base URL when
// it is absolute.
func siteURL(site SiteConfig) string {
	if fileutil.IsURL(site.BaseURL) {
		return site.BaseURL
	}
	if site.Owner == "" {
		return ""
	}
	u := "https://" + site.Owner + ".github.io/"
	if base := strings.Trim(site.BaseURL, "/"); base != "" {
		u += base + "/"
	} else if site.Repo != "" {
		u += site.Repo + "/"
	}
	return u
}
