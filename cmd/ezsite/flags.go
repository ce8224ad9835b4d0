package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// siteFlags override the site section of the configuration.
type siteFlags struct {
	baseURL string
	owner   string
	repo    string
}

// contentFlags override the content and entities sections.
type contentFlags struct {
	componentPrefix string
	sanitize        bool
	entities        bool
}

// assetFlags holds asset-related flags.
type assetFlags struct {
	style     string // Name or path of the stylesheet
	template  string // Name of the page template
	assetPath string // Override asset directory
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common   commonFlags
	output   string
	workers  int
	timeout  string
	logLevel string
	fragment bool
	site     siteFlags
	content  contentFlags
	assets   assetFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addSiteFlags adds site flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVar(&f.baseURL, "base-url", "", "base path the site is served under")
	fs.StringVar(&f.owner, "owner", "", "GitHub Pages owner")
	fs.StringVar(&f.repo, "repo", "", "GitHub Pages repository")
}

// addContentFlags adds restructuring flags to a FlagSet.
func addContentFlags(fs *flag.FlagSet, f *contentFlags) {
	fs.StringVar(&f.componentPrefix, "prefix", "", "custom element prefix (default: ez)")
	fs.BoolVar(&f.sanitize, "sanitize", false, "sanitize raw HTML before restructuring")
	fs.BoolVar(&f.entities, "entities", false, "enrich entity infoboxes from Wikidata")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.template, "template", "", "page template name")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string, usage io.Writer) (*buildFlags, []string, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &buildFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-page timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: none, normal, debug")
	fs.BoolVar(&f.fragment, "fragment", false, "write the restructured body only")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	addContentFlags(fs, &f.content)
	addAssetFlags(fs, &f.assets)

	fs.Usage = func() { printBuildUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
