package ezsite

import "github.com/alnah/go-ezsite/internal/config"

// Configuration types, shared with the CLI.
type (
	Config         = config.Config
	SiteConfig     = config.SiteConfig
	ContentConfig  = config.ContentConfig
	TabsConfig     = config.TabsConfig
	EntitiesConfig = config.EntitiesConfig
	LogConfig      = config.LogConfig
	AssetsConfig   = config.AssetsConfig
	OutputConfig   = config.OutputConfig
	StringList     = config.StringList
)

// Log levels accepted by LogConfig.Level.
const (
	LogLevelNone   = config.LogLevelNone
	LogLevelNormal = config.LogLevelNormal
	LogLevelDebug  = config.LogLevelDebug
)

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// LoadConfig loads configuration from a file path or config name.
// Jekyll _config.yml files are read leniently into the site section.
func LoadConfig(nameOrPath string) (*Config, error) {
	return config.LoadConfig(nameOrPath)
}

// FindSiteConfig returns the site configuration file present in dir, if any.
func FindSiteConfig(dir string) (string, bool) {
	return config.FindSiteConfig(dir)
}

// Bool returns a pointer to b, for the optional switches of ContentConfig.
func Bool(b bool) *bool {
	return &b
}
