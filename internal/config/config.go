package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/alnah/go-ezsite/internal/fileutil"
	"github.com/alnah/go-ezsite/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxRobotsLength      = 100
	MaxURLLength         = 2048
	MaxNameLength        = 100
	MaxPrefixLength      = 32
	MaxLanguageLength    = 16
	MaxComponents        = 64
)

// Log levels accepted by LogConfig.Level.
const (
	LogLevelNone   = "none"
	LogLevelNormal = "normal"
	LogLevelDebug  = "debug"
)

// SiteConfigNames are the file names FindSiteConfig looks for, in order.
var SiteConfigNames = []string{"ezsite.yaml", "ezsite.yml", "_config.yml", "_config.yaml"}

// Config holds all configuration for site generation.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Content  ContentConfig  `yaml:"content"`
	Entities EntitiesConfig `yaml:"entities"`
	Log      LogConfig      `yaml:"log"`
	Assets   AssetsConfig   `yaml:"assets"`
	Output   OutputConfig   `yaml:"output"`
}

// SiteConfig carries page-level defaults and GitHub Pages settings.
type SiteConfig struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Robots      string     `yaml:"robots"`
	Indexable   bool       `yaml:"indexable"` // false = "noindex, nofollow" when robots is unset
	BaseURL     string     `yaml:"baseurl"`
	Owner       string     `yaml:"owner"`
	Repo        string     `yaml:"repo"`
	Language    string     `yaml:"language"`
	Components  StringList `yaml:"components"` // module scripts, comma string or list
}

// ContentConfig tunes the restructuring passes. Nil booleans keep the defaults.
type ContentConfig struct {
	ComponentPrefix       string     `yaml:"componentPrefix"`
	SectionClassPrefix    string     `yaml:"sectionClassPrefix"`
	PruneEmptyHeadings    *bool      `yaml:"pruneEmptyHeadings"`
	SkipComponentSegments *bool      `yaml:"skipComponentSegments"`
	MoveFooters           *bool      `yaml:"moveFooters"`
	AnnotateTimestamps    *bool      `yaml:"annotateTimestamps"`
	ConvertImages         *bool      `yaml:"convertImages"`
	ReservedLanguages     []string   `yaml:"reservedLanguages"`
	Sanitize              bool       `yaml:"sanitize"`
	Tabs                  TabsConfig `yaml:"tabs"`
}

// TabsConfig names the elements emitted for tab groups.
type TabsConfig struct {
	Group string `yaml:"group"`
	Tab   string `yaml:"tab"`
	Panel string `yaml:"panel"`
}

// EntitiesConfig controls knowledge-base enrichment of entity infoboxes.
type EntitiesConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`    // empty = Wikidata
	Language    string `yaml:"language"`    // empty = site.language or "en"
	TTL         string `yaml:"ttl"`         // Go duration, empty = 24h
	Timeout     string `yaml:"timeout"`     // per request, empty = 10s
	Concurrency int    `yaml:"concurrency"` // 0 = 4
}

// LogConfig selects the console log level.
type LogConfig struct {
	Level string `yaml:"level"` // none, normal, debug
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
	Style    string `yaml:"style"`    // Name or path of the page stylesheet
	Template string `yaml:"template"` // Name of the page template
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = same as source
	Fragment   bool   `yaml:"fragment"`   // Write the restructured body only
}

// StringList decodes either a YAML sequence or a comma-separated string.
type StringList []string

// UnmarshalYAML implements the goccy/go-yaml interface unmarshaler.
func (l *StringList) UnmarshalYAML(unmarshal func(any) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		*l = trimAll(list)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*l = trimAll(strings.Split(s, ","))
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// TTLDuration returns the parsed cache TTL, or def when unset.
func (e EntitiesConfig) TTLDuration(def time.Duration) time.Duration {
	return parseDuration(e.TTL, def)
}

// TimeoutDuration returns the parsed request timeout, or def when unset.
func (e EntitiesConfig) TimeoutDuration(def time.Duration) time.Duration {
	return parseDuration(e.Timeout, def)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Validate checks field lengths and enumerations. All problems are reported,
// combined into one error.
func (c *Config) Validate() error {
	var err error

	err = multierr.Append(err, validateFieldLength("site.title", c.Site.Title, MaxTitleLength))
	err = multierr.Append(err, validateFieldLength("site.description", c.Site.Description, MaxDescriptionLength))
	err = multierr.Append(err, validateFieldLength("site.robots", c.Site.Robots, MaxRobotsLength))
	err = multierr.Append(err, validateFieldLength("site.baseurl", c.Site.BaseURL, MaxURLLength))
	err = multierr.Append(err, validateFieldLength("site.owner", c.Site.Owner, MaxNameLength))
	err = multierr.Append(err, validateFieldLength("site.repo", c.Site.Repo, MaxNameLength))
	err = multierr.Append(err, validateFieldLength("site.language", c.Site.Language, MaxLanguageLength))
	if len(c.Site.Components) > MaxComponents {
		err = multierr.Append(err, fmt.Errorf("%w: site.components has %d entries (max %d)", ErrInvalidValue, len(c.Site.Components), MaxComponents))
	}
	for i, src := range c.Site.Components {
		err = multierr.Append(err, validateFieldLength(fmt.Sprintf("site.components[%d]", i), src, MaxURLLength))
	}

	err = multierr.Append(err, validatePrefix("content.componentPrefix", c.Content.ComponentPrefix))
	err = multierr.Append(err, validateFieldLength("content.sectionClassPrefix", c.Content.SectionClassPrefix, MaxPrefixLength))
	for i, lang := range c.Content.ReservedLanguages {
		err = multierr.Append(err, validateFieldLength(fmt.Sprintf("content.reservedLanguages[%d]", i), lang, MaxLanguageLength))
	}
	for name, tag := range map[string]string{
		"content.tabs.group": c.Content.Tabs.Group,
		"content.tabs.tab":   c.Content.Tabs.Tab,
		"content.tabs.panel": c.Content.Tabs.Panel,
	} {
		if tag != "" && !strings.Contains(tag, "-") {
			err = multierr.Append(err, fmt.Errorf("%w: %s: %q is not a custom element name", ErrInvalidValue, name, tag))
		}
	}

	err = multierr.Append(err, validateFieldLength("entities.endpoint", c.Entities.Endpoint, MaxURLLength))
	err = multierr.Append(err, validateFieldLength("entities.language", c.Entities.Language, MaxLanguageLength))
	err = multierr.Append(err, validateDuration("entities.ttl", c.Entities.TTL))
	err = multierr.Append(err, validateDuration("entities.timeout", c.Entities.Timeout))
	if c.Entities.Concurrency < 0 || c.Entities.Concurrency > 64 {
		err = multierr.Append(err, fmt.Errorf("%w: entities.concurrency: must be between 0 and 64, got %d", ErrInvalidValue, c.Entities.Concurrency))
	}

	switch c.Log.Level {
	case "", LogLevelNone, LogLevelNormal, LogLevelDebug:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: log.level: %q (must be none, normal, or debug)", ErrInvalidValue, c.Log.Level))
	}

	err = multierr.Append(err, validateFieldLength("assets.basePath", c.Assets.BasePath, MaxURLLength))
	err = multierr.Append(err, validateFieldLength("assets.style", c.Assets.Style, MaxURLLength))
	err = multierr.Append(err, validateFieldLength("assets.template", c.Assets.Template, MaxNameLength))
	err = multierr.Append(err, validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxURLLength))

	return err
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validatePrefix(fieldName, value string) error {
	if err := validateFieldLength(fieldName, value, MaxPrefixLength); err != nil {
		return err
	}
	for _, r := range value {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return fmt.Errorf("%w: %s: %q must be lowercase alphanumeric", ErrInvalidValue, fieldName, value)
		}
	}
	return nil
}

func validateDuration(fieldName, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, fieldName, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s: must be positive, got %s", ErrInvalidValue, fieldName, value)
	}
	return nil
}

// DefaultConfig returns a configuration with enrichment disabled and
// restructuring defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: LogLevelNormal},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data, isJekyllConfig(configPath))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration data. A Jekyll-style _config.yml holds the
// site keys at top level and may carry keys ezsite does not know, so it is
// decoded leniently into Site. Anything else is decoded strictly.
func Parse(data []byte, jekyll bool) (*Config, error) {
	cfg := DefaultConfig()
	if jekyll {
		if err := yamlutil.Unmarshal(data, &cfg.Site); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	} else if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindSiteConfig returns the first of SiteConfigNames present in dir.
func FindSiteConfig(dir string) (string, bool) {
	for _, name := range SiteConfigNames {
		p := filepath.Join(dir, name)
		if fileutil.FileExists(p) {
			return p, true
		}
	}
	return "", false
}

func isJekyllConfig(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, "_config.")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-ezsite/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-ezsite", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

