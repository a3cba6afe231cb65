package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultConfiguration is the build configuration used when none is given.
const DefaultConfiguration = "Debug"

// Evaluated is a project file after property evaluation.
type Evaluated struct {
	path  string
	props map[string]string
}

func (e *Evaluated) Path() string { return e.path }
func (e *Evaluated) Dir() string  { return filepath.Dir(e.path) }

// Property returns the evaluated value of name, ignoring case.
func (e *Evaluated) Property(name string) string {
	return e.props[strings.ToLower(name)]
}

// Option configures a Loader.
type Option func(*Loader)

// WithConfiguration sets the Configuration global property.
func WithConfiguration(configuration string) Option {
	return func(l *Loader) {
		if configuration != "" {
			l.globals[PropConfiguration] = configuration
		}
	}
}

// WithGlobalProperty sets a global property. Project content cannot
// override global properties.
func WithGlobalProperty(name, value string) Option {
	return func(l *Loader) {
		l.globals[name] = value
	}
}

// WithEnvironment sets the lookup used for properties that are not defined
// by the project. Defaults to os.LookupEnv.
func WithEnvironment(lookup func(string) (string, bool)) Option {
	return func(l *Loader) {
		l.env = lookup
	}
}

// WithLogger sets the logger for evaluation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.log = logger
		}
	}
}

// Loader evaluates project files and caches the results by absolute path.
// It is safe for concurrent use.
type Loader struct {
	globals map[string]string
	env     func(string) (string, bool)
	log     *slog.Logger

	cache sync.Map // map[string]*Evaluated keyed by absolute path
	group singleflight.Group
}

// NewLoader returns a Loader with the Configuration global property set to
// DefaultConfiguration unless overridden.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		globals: map[string]string{PropConfiguration: DefaultConfiguration},
		env:     os.LookupEnv,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Configuration returns the Configuration global property.
func (l *Loader) Configuration() string {
	return l.globals[PropConfiguration]
}

// Load evaluates the project file at path. Results are cached, and
// concurrent loads of the same file share one evaluation.
func (l *Loader) Load(ctx context.Context, path string) (*Evaluated, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve project path: %w", err)
	}
	if cached, ok := l.cache.Load(abs); ok {
		return cached.(*Evaluated), nil
	}

	v, err, _ := l.group.Do(abs, func() (any, error) {
		if cached, ok := l.cache.Load(abs); ok {
			return cached, nil
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			if os.IsNotExist(err) {
				l.log.Warn("Unable to find project file", "path", abs)
			}
			return nil, fmt.Errorf("load project %s: %w", abs, err)
		}
		p, err := l.evaluate(abs, data)
		if err != nil {
			return nil, err
		}
		l.cache.Store(abs, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Evaluated), nil
}

// LoadContent evaluates content as if it were the project file at path.
// Imports are still read from disk. The result is not cached.
func (l *Loader) LoadContent(path string, content []byte) (*Evaluated, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve project path: %w", err)
	}
	return l.evaluate(abs, content)
}

func (l *Loader) evaluate(path string, data []byte) (*Evaluated, error) {
	root, err := parseXML(path, data)
	if err != nil {
		return nil, err
	}

	props := newProperties(l.globals, l.env)
	props.log = l.log
	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)
	dir := filepath.Dir(path)
	props.set("MSBuildProjectFullPath", path)
	props.set("MSBuildProjectDirectory", dir)
	props.set("MSBuildProjectFile", filepath.Base(path))
	props.set("MSBuildProjectName", name)
	props.set("MSBuildProjectExtension", ext)

	ev := &evaluator{props: props, log: l.log, imported: make(map[string]bool)}

	// Microsoft.Common.props: Directory.Build.props comes first.
	props.setDefault("ImportDirectoryBuildProps", "true")
	if strings.EqualFold(props.get("ImportDirectoryBuildProps"), "true") {
		if dbp := findDirectoryBuildProps(dir); dbp != "" {
			l.log.Debug("Importing Directory.Build.props", "project", path, "props", dbp)
			if err := ev.evalPath(dbp); err != nil {
				return nil, err
			}
		}
	}
	props.setDefault(PropConfiguration, DefaultConfiguration)
	props.setDefault("Platform", "AnyCPU")
	props.setDefault("BaseOutputPath", `bin\`)
	props.setDefault(PropOutputPath, props.expand(`$(BaseOutputPath)$(Configuration)\`))

	if err := ev.evalFile(path, root); err != nil {
		return nil, err
	}

	props.setDefault(PropProjectName, name)
	props.setDefault(PropAssemblyName, name)
	props.setDefault(PropOutputType, "Library")

	l.log.Debug("Evaluated project", "path", path, "properties", len(props.values))
	return &Evaluated{path: path, props: props.snapshot()}, nil
}
