package ezsite

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Input is one page to convert. Exactly one of Markdown or HTML is set.
type Input struct {
	// Markdown source, optionally starting with YAML front matter
	// (title, description, robots, lang).
	Markdown string
	// HTML is an already rendered fragment, restructured as is.
	HTML string
	// Path of the source file, used in log fields only.
	Path string
	// Fragment skips page assembly; Result.HTML is the restructured body.
	Fragment bool
}

// Meta is the resolved page metadata.
type Meta struct {
	Title       string
	Description string
	Robots      string
}

// Report summarizes the restructuring of one page.
type Report struct {
	Sections    int
	Segments    int
	Directives  int
	Footnotes   int
	Components  int
	Enriched    int
	Diagnostics []error
}

// Err combines the diagnostics into one error, or nil.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	return multierr.Combine(r.Diagnostics...)
}

// Result holds the output of one conversion.
type Result struct {
	HTML   []byte // complete page, or the body alone for fragments
	Body   string // restructured body
	Meta   Meta
	Report *Report
}

// Entity is a knowledge-base record used to enrich entity infoboxes.
type Entity struct {
	ID          string
	Label       string
	Description string
}

// EntityResolver looks up entities by QID (e.g. "Q90").
type EntityResolver interface {
	Resolve(ctx context.Context, qid string) (Entity, error)
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout   time.Duration
	assetPath string
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the per-page conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("ezsite: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConfig sets the site configuration. The config is not copied.
func WithConfig(cfg *Config) Option {
	return func(c *Converter) {
		if cfg != nil {
			c.siteCfg = cfg
		}
	}
}

// WithAssetPath loads styles, templates and includes from dir, falling back
// to the embedded assets. Takes precedence over Config.Assets.BasePath.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithAssetLoader sets a custom asset loader.
func WithAssetLoader(l AssetLoader) Option {
	return func(c *Converter) {
		c.assetLoader = l
	}
}

// WithEntityResolver enables entity enrichment through r, regardless of
// Config.Entities.Enabled.
func WithEntityResolver(r EntityResolver) Option {
	return func(c *Converter) {
		c.publicResolver = r
	}
}
