// Package config loads CLI settings from defaults, an optional tfm.toml,
// TFM_* environment variables and bound command-line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	gotfm "github.com/albertocavalcante/go-tfm"
	"github.com/albertocavalcante/go-tfm/project"
	"github.com/albertocavalcante/go-tfm/selector"
)

// Config file lookup.
const (
	FileName  = "tfm"
	FileType  = "toml"
	EnvPrefix = "TFM"
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyConfiguration      = "configuration"
	KeyFramework          = "framework"
	KeyFrameworkSelector  = "framework_selector"
	KeyIncludeAssemblies  = "include_assemblies"
	KeyExcludeAssemblies  = "exclude_assemblies"
	KeyTestRegex          = "test_regex"
	KeyPublishedOutput    = "get_published_output"
	KeySkipExistenceCheck = "skip_existence_check"
	KeyFileMode           = "file_mode"
	KeyConcurrency        = "concurrency"
	KeyVerbose            = "verbose"
)

// Config holds CLI settings.
type Config struct {
	Configuration      string   `mapstructure:"configuration"`
	Framework          string   `mapstructure:"framework"`
	FrameworkSelector  string   `mapstructure:"framework_selector"`
	IncludeAssemblies  []string `mapstructure:"include_assemblies"`
	ExcludeAssemblies  []string `mapstructure:"exclude_assemblies"`
	TestRegex          string   `mapstructure:"test_regex"`
	PublishedOutput    bool     `mapstructure:"get_published_output"`
	SkipExistenceCheck bool     `mapstructure:"skip_existence_check"`
	FileMode           string   `mapstructure:"file_mode"`
	Concurrency        int      `mapstructure:"concurrency"`
	Verbose            bool     `mapstructure:"verbose"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Configuration:     project.DefaultConfiguration,
		Framework:         selector.MatchAllPattern,
		FrameworkSelector: selector.All.String(),
		TestRegex:         gotfm.DefaultTestPattern,
		FileMode:          gotfm.Overwrite.String(),
		Concurrency:       5,
	}
}

// New returns a viper instance with defaults and environment lookup set up.
// Callers bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyConfiguration, d.Configuration)
	v.SetDefault(KeyFramework, d.Framework)
	v.SetDefault(KeyFrameworkSelector, d.FrameworkSelector)
	v.SetDefault(KeyIncludeAssemblies, []string{})
	v.SetDefault(KeyExcludeAssemblies, []string{})
	v.SetDefault(KeyTestRegex, d.TestRegex)
	v.SetDefault(KeyPublishedOutput, d.PublishedOutput)
	v.SetDefault(KeySkipExistenceCheck, d.SkipExistenceCheck)
	v.SetDefault(KeyFileMode, d.FileMode)
	v.SetDefault(KeyConcurrency, d.Concurrency)
	v.SetDefault(KeyVerbose, d.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and decodes the merged settings.
// An explicit path must exist; otherwise tfm.toml is looked up in the
// working directory, then in the user config directory, and may be absent.
// Returns the config file used, or "".
func Load(v *viper.Viper, path string) (Config, string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, "", fmt.Errorf("config file: %w", err)
		}
	} else {
		path = findConfigFile()
	}

	if path != "" {
		v.SetConfigType(FileType)
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, "", fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, "", err
	}
	return c, path, nil
}

func findConfigFile() string {
	candidates := []string{FileName + "." + FileType}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, FileName, FileName+"."+FileType))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if _, err := selector.ParseKind(c.FrameworkSelector); err != nil {
		return fmt.Errorf("%s: %w", KeyFrameworkSelector, err)
	}
	if _, err := gotfm.ParseFileMode(c.FileMode); err != nil {
		return fmt.Errorf("%s: %w", KeyFileMode, err)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%s must be positive, got %d", KeyConcurrency, c.Concurrency)
	}
	return nil
}

// DiscoverOptions converts c to discovery options.
func (c Config) DiscoverOptions() ([]gotfm.Option, error) {
	kind, err := selector.ParseKind(c.FrameworkSelector)
	if err != nil {
		return nil, err
	}
	return []gotfm.Option{
		gotfm.WithConfiguration(c.Configuration),
		gotfm.WithSelector(kind),
		gotfm.WithFrameworkPattern(c.Framework),
		gotfm.WithIncludeAssemblies(c.IncludeAssemblies...),
		gotfm.WithExcludeAssemblies(c.ExcludeAssemblies...),
		gotfm.WithTestPattern(c.TestRegex),
		gotfm.WithPublishedOutput(c.PublishedOutput),
		gotfm.WithSkipExistenceCheck(c.SkipExistenceCheck),
		gotfm.WithConcurrency(c.Concurrency),
	}, nil
}
