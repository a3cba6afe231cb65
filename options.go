package gotfm

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/albertocavalcante/go-tfm/bazel"
	"github.com/albertocavalcante/go-tfm/project"
	"github.com/albertocavalcante/go-tfm/selector"
)

// DefaultTestPattern matches project names ending in "test" or "tests",
// ignoring case.
const DefaultTestPattern = "(?i)test(s?)$"

// defaultMaxConcurrency bounds how many projects are evaluated at once.
const defaultMaxConcurrency = 5

// Option configures discovery.
type Option func(*discoverConfig) error

// discoverConfig holds all discovery configuration.
type discoverConfig struct {
	configuration      string
	selectorKind       selector.Kind
	frameworkPattern   string
	include            []string
	exclude            []string
	testPattern        string
	publishedOutput    bool
	skipExistenceCheck bool
	concurrency        int
	loader             *project.Loader
	bazelOpts          []bazel.Option

	// Compiled by newDiscoverConfig.
	testRegex     *regexp2.Regexp
	includeRegexp []*regexp2.Regexp
	excludeRegexp []*regexp2.Regexp

	// logger is nil until WithLogger; log() substitutes a discarding logger.
	logger *slog.Logger
}

// WithConfiguration sets the MSBuild Configuration used to evaluate projects.
// Defaults to Debug.
func WithConfiguration(configuration string) Option {
	return func(c *discoverConfig) error {
		c.configuration = configuration
		return nil
	}
}

// WithSelector sets the framework selection policy. Defaults to selector.All.
func WithSelector(kind selector.Kind) Option {
	return func(c *discoverConfig) error {
		c.selectorKind = kind
		return nil
	}
}

// WithFrameworkPattern sets the framework pattern for the Regex policy. With
// the All policy, any pattern other than "" or "." switches to Regex.
func WithFrameworkPattern(pattern string) Option {
	return func(c *discoverConfig) error {
		c.frameworkPattern = pattern
		return nil
	}
}

// WithIncludeAssemblies keeps only test projects whose name matches one of
// the patterns. Blank patterns are ignored.
func WithIncludeAssemblies(patterns ...string) Option {
	return func(c *discoverConfig) error {
		c.include = append(c.include, patterns...)
		return nil
	}
}

// WithExcludeAssemblies drops test projects whose name matches any of the
// patterns. Blank patterns are ignored.
func WithExcludeAssemblies(patterns ...string) Option {
	return func(c *discoverConfig) error {
		c.exclude = append(c.exclude, patterns...)
		return nil
	}
}

// WithTestPattern sets the pattern that identifies test projects by name.
// Defaults to DefaultTestPattern.
func WithTestPattern(pattern string) Option {
	return func(c *discoverConfig) error {
		c.testPattern = pattern
		return nil
	}
}

// WithPublishedOutput resolves assemblies in the publish directory instead of
// the build output.
func WithPublishedOutput(published bool) Option {
	return func(c *discoverConfig) error {
		c.publishedOutput = published
		return nil
	}
}

// WithSkipExistenceCheck downgrades missing assemblies from errors to warnings.
func WithSkipExistenceCheck(skip bool) Option {
	return func(c *discoverConfig) error {
		c.skipExistenceCheck = skip
		return nil
	}
}

// WithConcurrency sets how many projects are evaluated in parallel.
func WithConcurrency(n int) Option {
	return func(c *discoverConfig) error {
		c.concurrency = n
		return nil
	}
}

// WithLoader supplies the project loader, sharing its cache across calls.
// The loader's own configuration then takes precedence over WithConfiguration.
func WithLoader(l *project.Loader) Option {
	return func(c *discoverConfig) error {
		c.loader = l
		return nil
	}
}

// WithBazelOptions passes options to bazel.Scan for workspace sources.
func WithBazelOptions(opts ...bazel.Option) Option {
	return func(c *discoverConfig) error {
		c.bazelOpts = append(c.bazelOpts, opts...)
		return nil
	}
}

// WithLogger sets a structured logger for discovery diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	result, err := gotfm.Discover(ctx, "App.sln", gotfm.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *discoverConfig) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration and compiles its patterns.
func (c *discoverConfig) validate() error {
	if c.concurrency < 1 {
		return errors.New("concurrency must be positive")
	}
	if strings.TrimSpace(c.configuration) == "" {
		return errors.New("configuration must not be empty")
	}

	var err error
	if c.testRegex, err = selector.CompilePattern(c.testPattern); err != nil {
		return fmt.Errorf("test pattern: %w", err)
	}
	if c.includeRegexp, err = compilePatterns(c.include); err != nil {
		return fmt.Errorf("include pattern: %w", err)
	}
	if c.excludeRegexp, err = compilePatterns(c.exclude); err != nil {
		return fmt.Errorf("exclude pattern: %w", err)
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *discoverConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(slog.DiscardHandler)
}

// newDiscoverConfig applies opts over the defaults and validates the result.
func newDiscoverConfig(opts ...Option) (*discoverConfig, error) {
	c := &discoverConfig{
		configuration: project.DefaultConfiguration,
		selectorKind:  selector.All,
		testPattern:   DefaultTestPattern,
		concurrency:   defaultMaxConcurrency,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	if c.loader == nil {
		c.loader = project.NewLoader(project.WithConfiguration(c.configuration), project.WithLogger(c.log()))
	}
	return c, nil
}

// compilePatterns compiles the non-blank patterns.
func compilePatterns(patterns []string) ([]*regexp2.Regexp, error) {
	var result []*regexp2.Regexp
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := selector.CompilePattern(p)
		if err != nil {
			return nil, err
		}
		result = append(result, re)
	}
	return result, nil
}
