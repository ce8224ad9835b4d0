package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/alnah/go-ezsite")

// Sentinel errors for CLI operations.
var (
	ErrTooManyInputs      = errors.New("expected a single input path")
	ErrNoMarkdownFiles    = errors.New("no markdown files found")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrBuildFailed        = errors.New("build failed")
)

// maxWorkers bounds --workers.
const maxWorkers = 32

// runBuild orchestrates a site build.
func runBuild(ctx context.Context, positionalArgs []string, flags *buildFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	timeout, err := parseTimeout(flags.timeout)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs)
	if err != nil {
		return err
	}
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	cfg, cfgPath, err := loadSiteConfig(flags.common.config, inputPath)
	if err != nil {
		return err
	}
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Log.Logger(env.Stderr, env.Stderr)
	defer func() { _ = logger.Sync() }()
	if cfgPath != "" {
		logger.Debug("Loaded site config", zap.String("path", cfgPath))
	}

	outputDir := resolveOutputDir(flags.output, cfg)
	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoMarkdownFiles, inputPath)
	}

	opts := []ezsite.Option{ezsite.WithConfig(cfg), ezsite.WithLogger(logger)}
	if timeout > 0 {
		opts = append(opts, ezsite.WithTimeout(timeout))
	}
	conv, err := ezsite.NewConverter(opts...)
	if err != nil {
		return fmt.Errorf("initializing converter: %w", err)
	}

	workers := resolvePoolSize(flags.workers)
	logger.Debug("Building pages", zap.Int("files", len(files)), zap.Int("workers", workers))

	start := env.Now()
	results := buildBatch(ctx, conv, files, workers, logger)
	logger.Debug("Build finished", zap.Duration("elapsed", env.Now().Sub(start)))

	failed := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%w: %d page(s): %v", ErrBuildFailed, failed, combineErrors(results))
	}
	return nil
}

// loadSiteConfig loads the config named by the flag, or the site config
// found next to the input, or the defaults. Returns the path used.
func loadSiteConfig(flagConfig, inputPath string) (*ezsite.Config, string, error) {
	if flagConfig != "" {
		cfg, err := ezsite.LoadConfig(flagConfig)
		if err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		return cfg, flagConfig, nil
	}

	dir := inputPath
	if !isDir(inputPath) {
		dir = filepath.Dir(inputPath)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving input directory: %w", err)
	}
	path, ok := ezsite.FindSiteConfig(abs)
	if !ok {
		return ezsite.DefaultConfig(), "", nil
	}
	cfg, err := ezsite.LoadConfig(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, path, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *buildFlags, cfg *ezsite.Config) {
	// Site flags
	if flags.site.baseURL != "" {
		cfg.Site.BaseURL = flags.site.baseURL
	}
	if flags.site.owner != "" {
		cfg.Site.Owner = flags.site.owner
	}
	if flags.site.repo != "" {
		cfg.Site.Repo = flags.site.repo
	}

	// Content flags
	if flags.content.componentPrefix != "" {
		cfg.Content.ComponentPrefix = flags.content.componentPrefix
	}
	if flags.content.sanitize {
		cfg.Content.Sanitize = true
	}
	if flags.content.entities {
		cfg.Entities.Enabled = true
	}

	// Asset flags
	if flags.assets.style != "" {
		cfg.Assets.Style = flags.assets.style
	}
	if flags.assets.template != "" {
		cfg.Assets.Template = flags.assets.template
	}
	if flags.assets.assetPath != "" {
		cfg.Assets.BasePath = flags.assets.assetPath
	}

	// Output flags
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}
	if flags.fragment {
		cfg.Output.Fragment = true
	}

	// Log level: explicit flag, then verbosity switches
	switch {
	case flags.logLevel != "":
		cfg.Log.Level = flags.logLevel
	case flags.common.verbose:
		cfg.Log.Level = ezsite.LogLevelDebug
	case flags.common.quiet:
		cfg.Log.Level = ezsite.LogLevelNone
	}
}

// resolveInputPath determines the input path from args, defaulting to the
// current directory.
func resolveInputPath(args []string) (string, error) {
	switch {
	case len(args) > 1:
		return "", fmt.Errorf("%w: got %d", ErrTooManyInputs, len(args))
	case len(args) == 1 && args[0] != "":
		return args[0], nil
	}
	return ".", nil
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *ezsite.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// validateWorkers checks the --workers range.
func validateWorkers(n int) error {
	if n < 0 || n > maxWorkers {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidWorkerCount, n, maxWorkers)
	}
	return nil
}

// parseTimeout parses --timeout. Empty means the converter default.
func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, s)
	}
	return d, nil
}

// combineErrors joins the per-page failures.
func combineErrors(results []BuildResult) error {
	var err error
	for _, r := range results {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.InputPath, r.Err))
		}
	}
	return err
}
