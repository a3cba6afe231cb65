// Package bazel discovers .NET targets in Bazel workspaces that build with
// rules_dotnet.
//
// Each csharp_* or fsharp_* rule with a target_frameworks attribute becomes a
// Target, which can be presented as a project.Project so the rest of the
// discovery pipeline treats it like an MSBuild project.
package bazel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bazelbuild/buildtools/build"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/albertocavalcante/go-tfm/internal/buildutil"
	"github.com/albertocavalcante/go-tfm/project"
)

// BuildFilePattern matches BUILD files anywhere under a workspace root.
const BuildFilePattern = "**/{BUILD,BUILD.bazel}"

// DefaultExcludes are skipped during scans: Bazel's convenience symlinks and
// common vendored trees.
var DefaultExcludes = []string{"bazel-*/**", "**/node_modules/**", "**/.git/**"}

// workspaceFiles mark a Bazel workspace root, in lookup order.
var workspaceFiles = []string{"MODULE.bazel", "WORKSPACE.bazel", "WORKSPACE"}

// ErrNotWorkspace indicates a directory has none of MODULE.bazel,
// WORKSPACE.bazel or WORKSPACE.
var ErrNotWorkspace = errors.New("not a bazel workspace")

// Target is a rules_dotnet target.
type Target struct {
	// Package is the slash-separated package path relative to the root.
	Package string
	Name    string
	// Kind is the rule name, e.g. csharp_test.
	Kind string
	// Frameworks holds the target_frameworks attribute.
	Frameworks []string
	// AssemblyName is the out attribute, or Name when unset.
	AssemblyName string
	// BuildFile is the absolute path of the BUILD file declaring the target.
	BuildFile string
}

// Label returns the target label, e.g. //src/App:App.
func (t Target) Label() string {
	return "//" + t.Package + ":" + t.Name
}

// IsTest reports whether the rule kind is a test rule.
func (t Target) IsTest() bool {
	return strings.HasSuffix(t.Kind, "_test")
}

// OutputType returns the MSBuild-style output type for the rule kind.
func (t Target) OutputType() string {
	if strings.HasSuffix(t.Kind, "_binary") || t.IsTest() {
		return "Exe"
	}
	return "Library"
}

// Project presents t as an evaluated project rooted at the workspace root.
// Output lands in bazel-bin/<package>/bin/<name>/.
func (t Target) Project(root string) project.Project {
	dir := filepath.Join(root, filepath.FromSlash(t.Package))
	out := filepath.Join(root, "bazel-bin", filepath.FromSlash(t.Package), "bin", t.Name) + string(filepath.Separator)
	return project.NewStatic(t.BuildFile, dir, map[string]string{
		project.PropProjectName:      t.Name,
		project.PropAssemblyName:     t.AssemblyName,
		project.PropTargetFrameworks: strings.Join(t.Frameworks, ";"),
		project.PropOutputPath:       out,
		project.PropOutputType:       t.OutputType(),
		project.PropTargetExt:        ".dll",
	})
}

// Workspace is the result of a scan.
type Workspace struct {
	// Root is the absolute workspace directory.
	Root string
	// Name is the module or workspace name, falling back to the directory name.
	Name    string
	Targets []Target
}

// Option configures Scan.
type Option func(*scanConfig)

type scanConfig struct {
	excludes []string
	logger   *slog.Logger
}

// WithExcludes replaces DefaultExcludes. Patterns use doublestar syntax and
// match slash-separated paths relative to the root.
func WithExcludes(patterns ...string) Option {
	return func(c *scanConfig) {
		c.excludes = patterns
	}
}

// WithLogger sets the logger for scan diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *scanConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// IsWorkspace reports whether dir is a Bazel workspace root.
func IsWorkspace(dir string) bool {
	for _, name := range workspaceFiles {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// Scan finds every rules_dotnet target under root. Targets are ordered by
// BUILD file path, then by position in the file.
func Scan(ctx context.Context, root string, opts ...Option) (*Workspace, error) {
	cfg := scanConfig{excludes: DefaultExcludes, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, pattern := range cfg.excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if !IsWorkspace(abs) {
		return nil, fmt.Errorf("%s: %w", abs, ErrNotWorkspace)
	}

	name, err := WorkspaceName(abs)
	if err != nil {
		return nil, err
	}
	ws := &Workspace{Root: abs, Name: name}

	fsys := os.DirFS(abs)
	matches, err := doublestar.Glob(fsys, BuildFilePattern, doublestar.WithNoFollow())
	if err != nil {
		return nil, fmt.Errorf("glob build files: %w", err)
	}
	slices.Sort(matches)

	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if excluded(cfg.excludes, rel) {
			continue
		}
		targets, err := scanBuildFile(fsys, abs, rel)
		if err != nil {
			return nil, err
		}
		cfg.logger.Debug("Scanned build file", "path", rel, "targets", len(targets))
		ws.Targets = append(ws.Targets, targets...)
	}
	return ws, nil
}

func excluded(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// IsDotnetRule reports whether kind is a rules_dotnet C# or F# rule.
func IsDotnetRule(kind string) bool {
	return strings.HasPrefix(kind, "csharp_") || strings.HasPrefix(kind, "fsharp_")
}

func scanBuildFile(fsys fs.FS, root, rel string) ([]Target, error) {
	data, err := fs.ReadFile(fsys, rel)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	f, err := build.ParseBuild(rel, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rel, err)
	}

	pkg := path.Dir(rel)
	if pkg == "." {
		pkg = ""
	}

	var targets []Target
	for _, rule := range buildutil.Rules(f, IsDotnetRule) {
		frameworks := buildutil.StringList(rule.Call, "target_frameworks")
		name := rule.Name()
		if len(frameworks) == 0 || name == "" {
			continue
		}
		assembly := buildutil.String(rule.Call, "out")
		if assembly == "" {
			assembly = name
		}
		targets = append(targets, Target{
			Package:      pkg,
			Name:         name,
			Kind:         rule.Kind,
			Frameworks:   frameworks,
			AssemblyName: assembly,
			BuildFile:    filepath.Join(root, filepath.FromSlash(rel)),
		})
	}
	return targets, nil
}

// WorkspaceName returns the module name from MODULE.bazel, else the
// workspace name from WORKSPACE.bazel or WORKSPACE, else the base name of
// root.
func WorkspaceName(root string) (string, error) {
	for _, file := range workspaceFiles {
		data, err := os.ReadFile(filepath.Join(root, file))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}

		var f *build.File
		fn := "workspace"
		if file == "MODULE.bazel" {
			f, err = build.ParseModule(file, data)
			fn = "module"
		} else {
			f, err = build.ParseWorkspace(file, data)
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", file, err)
		}
		if call := buildutil.FirstCall(f, fn); call != nil {
			if name := buildutil.String(call, "name"); name != "" {
				return name, nil
			}
		}
	}
	return filepath.Base(root), nil
}
