package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"asset-bundler/internal/assetpath"
	"asset-bundler/internal/naming"
	"asset-bundler/internal/registry"
)

// EnvPrefix prefixes environment overrides, e.g. ASSET_BUNDLER_NAMING_NAME_BY_HASH.
const EnvPrefix = "ASSET_BUNDLER"

// FileName is the config file name searched for (without extension).
const FileName = "asset-bundler"

// Config is the complete asset-bundler configuration.
type Config struct {
	Content  ContentConfig  `mapstructure:"content"`
	Naming   NamingConfig   `mapstructure:"naming"`
	Record   RecordConfig   `mapstructure:"record"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ContentConfig decides which keys are assets.
type ContentConfig struct {
	// Root is the content root every asset key must start with.
	Root string `mapstructure:"root"`
	// ExcludedExtensions are never bundled (code, metadata, build scripts).
	ExcludedExtensions []string `mapstructure:"excluded_extensions"`
	// IgnoredSuffixes are generated artifacts dropped from dependency walks.
	IgnoredSuffixes []string `mapstructure:"ignored_suffixes"`
	// Exclude holds glob patterns of keys to leave out.
	Exclude []string `mapstructure:"exclude"`
}

// NamingConfig controls bundle names.
type NamingConfig struct {
	// Extension is appended to every bundle name (e.g. ".unity3d").
	Extension string `mapstructure:"extension"`
	// NameByHash replaces names by their MD5 hex.
	NameByHash        bool   `mapstructure:"name_by_hash"`
	SceneExtension    string `mapstructure:"scene_extension"`
	ReservedExtension string `mapstructure:"reserved_extension"`
	ReservedGroup     string `mapstructure:"reserved_group"`
}

// RecordConfig controls auto-recording of loaded assets.
type RecordConfig struct {
	AutoRecord bool `mapstructure:"auto_record"`
	// AutoGroupByDirectories are glob patterns; a recorded asset whose
	// directory matches one is grouped by directory instead of file name.
	AutoGroupByDirectories []string `mapstructure:"auto_group_by_directories"`
}

// AnalysisConfig tunes the resolution pass.
type AnalysisConfig struct {
	// Workers > 1 queries the dependency oracle concurrently.
	Workers int `mapstructure:"workers"`
	// CacheSize is the number of memoized oracle answers; 0 disables the cache.
	CacheSize int `mapstructure:"cache_size"`
}

// PathsConfig locates project files, relative to the project root.
type PathsConfig struct {
	// Rules is the persisted record (declarations, patches, last plan).
	Rules string `mapstructure:"rules"`
	// Graph is the dependency edge list consumed as the oracle.
	Graph string `mapstructure:"graph"`
	// Reports is where analyze --report writes archives.
	Reports string `mapstructure:"reports"`
}

// LoggingConfig controls diagnostics.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is "text" or "json".
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	nd := naming.Defaults()
	return &Config{
		Content: ContentConfig{
			Root:               assetpath.DefaultRoot,
			ExcludedExtensions: append([]string(nil), assetpath.DefaultExcludedExtensions...),
			IgnoredSuffixes:    append([]string(nil), assetpath.DefaultIgnoredSuffixes...),
			Exclude:            []string{},
		},
		Naming: NamingConfig{
			Extension:         "",
			NameByHash:        false,
			SceneExtension:    nd.SceneExtension,
			ReservedExtension: nd.ReservedExtension,
			ReservedGroup:     nd.ReservedGroup,
		},
		Record: RecordConfig{
			AutoRecord:             false,
			AutoGroupByDirectories: []string{},
		},
		Analysis: AnalysisConfig{
			Workers:   1,
			CacheSize: 256,
		},
		Paths: PathsConfig{
			Rules:   "asset-rules.yaml",
			Graph:   "asset-graph.yaml",
			Reports: "reports",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers every default on v so that env variables and
// config files can override individual keys.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("content.root", d.Content.Root)
	v.SetDefault("content.excluded_extensions", d.Content.ExcludedExtensions)
	v.SetDefault("content.ignored_suffixes", d.Content.IgnoredSuffixes)
	v.SetDefault("content.exclude", d.Content.Exclude)

	v.SetDefault("naming.extension", d.Naming.Extension)
	v.SetDefault("naming.name_by_hash", d.Naming.NameByHash)
	v.SetDefault("naming.scene_extension", d.Naming.SceneExtension)
	v.SetDefault("naming.reserved_extension", d.Naming.ReservedExtension)
	v.SetDefault("naming.reserved_group", d.Naming.ReservedGroup)

	v.SetDefault("record.auto_record", d.Record.AutoRecord)
	v.SetDefault("record.auto_group_by_directories", d.Record.AutoGroupByDirectories)

	v.SetDefault("analysis.workers", d.Analysis.Workers)
	v.SetDefault("analysis.cache_size", d.Analysis.CacheSize)

	v.SetDefault("paths.rules", d.Paths.Rules)
	v.SetDefault("paths.graph", d.Paths.Graph)
	v.SetDefault("paths.reports", d.Paths.Reports)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Init prepares v: defaults, environment overrides and the config file.
// An explicit file must exist; otherwise asset-bundler.yaml is searched in
// the project root and the user config directory, and its absence is fine.
func Init(v *viper.Viper, file, projectRoot string) error {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	if projectRoot != "" {
		v.AddConfigPath(projectRoot)
	}
	v.AddConfigPath(Dir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Dir returns the user config directory for asset-bundler.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "asset-bundler")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "asset-bundler")
}

// NamerOptions maps the naming section onto naming.Options.
func (c *Config) NamerOptions() naming.Options {
	return naming.Options{
		Extension:         c.Naming.Extension,
		NameByHash:        c.Naming.NameByHash,
		SceneExtension:    c.Naming.SceneExtension,
		ReservedExtension: c.Naming.ReservedExtension,
		ReservedGroup:     c.Naming.ReservedGroup,
	}
}

// FilterOptions maps the content section onto assetpath.Options.
func (c *Config) FilterOptions() assetpath.Options {
	return assetpath.Options{
		Root:               c.Content.Root,
		ExcludedExtensions: c.Content.ExcludedExtensions,
		IgnoredSuffixes:    c.Content.IgnoredSuffixes,
		Exclude:            c.Content.Exclude,
	}
}

// RegistryOptions maps the record section onto registry.Options.
func (c *Config) RegistryOptions() registry.Options {
	return registry.Options{
		AutoRecord:             c.Record.AutoRecord,
		AutoGroupByDirectories: c.Record.AutoGroupByDirectories,
	}
}
