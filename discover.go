package gotfm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-tfm/bazel"
	"github.com/albertocavalcante/go-tfm/moniker"
	"github.com/albertocavalcante/go-tfm/project"
	"github.com/albertocavalcante/go-tfm/selector"
	"github.com/albertocavalcante/go-tfm/solution"
)

// member is a project of a source, loaded on demand.
type member struct {
	name string
	// test marks members that are test projects regardless of their name.
	test bool
	load func(ctx context.Context) (project.Project, error)
}

// source is a solution or workspace reduced to what discovery needs.
type source struct {
	// baseName is the name an application project must carry for the App
	// selector.
	baseName string
	members  []member
}

// Discover lists the test assemblies of the solution file or Bazel workspace
// directory at path.
//
// Test projects are members whose name matches the test pattern, filtered
// by the include and exclude patterns. Each test project contributes one
// assembly per framework kept by the selector. Missing assembly files are
// logged and, unless existence checks are skipped, flagged in
// Result.ErrorsFound.
func Discover(ctx context.Context, path string, opts ...Option) (*Result, error) {
	cfg, err := newDiscoverConfig(opts...)
	if err != nil {
		return nil, err
	}

	src, err := openSource(ctx, path, cfg)
	if err != nil {
		return nil, err
	}

	policy, err := buildPolicy(ctx, src, cfg)
	if err != nil {
		return nil, err
	}

	var tests []member
	for _, m := range src.members {
		ok, err := matchesTest(cfg.testRegex, m)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		excluded, err := excludeAssembly(cfg.includeRegexp, cfg.excludeRegexp, m.name)
		if err != nil {
			return nil, err
		}
		if excluded {
			cfg.log().Info("TestAssembly does not match assembly filters. Skipping.", "project", m.name)
			continue
		}
		tests = append(tests, m)
	}

	selected, err := selectAll(ctx, tests, policy, cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, m := range tests {
		for _, fw := range selected[i].frameworks {
			a := Assembly{
				Project:   m.name,
				Framework: fw.Raw(),
				Path:      assemblyPath(selected[i].project, fw.Raw(), cfg.publishedOutput),
			}
			a.Exists = fileExists(a.Path)
			if !a.Exists {
				if cfg.skipExistenceCheck {
					cfg.log().Warn("Unable to find test assembly file", "assembly", a.Path)
				} else {
					cfg.log().Error("Unable to find test assembly file", "assembly", a.Path)
					result.ErrorsFound = true
				}
			}
			cfg.log().Info("Adding framework to output list", "framework", a.Framework, "project", m.name)
			result.Assemblies = append(result.Assemblies, a)
		}
	}
	return result, nil
}

type selection struct {
	project    project.Project
	frameworks []moniker.Moniker
}

// selectAll loads every test project and applies policy, up to
// cfg.concurrency at a time. Results keep the order of tests.
func selectAll(ctx context.Context, tests []member, policy selector.Policy, cfg *discoverConfig) ([]selection, error) {
	results := make([]selection, len(tests))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, m := range tests {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := m.load(ctx)
			if err != nil {
				return &ProjectError{Project: m.name, Err: err}
			}
			frameworks, err := projectFrameworks(p)
			if err != nil {
				return &ProjectError{Project: m.name, Err: err}
			}
			selected, err := policy.Select(selector.Project{Name: m.name, Frameworks: frameworks})
			if err != nil {
				return err
			}
			results[i] = selection{project: p, frameworks: selected}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func projectFrameworks(p project.Project) ([]moniker.Moniker, error) {
	raws, err := project.TargetFrameworks(p)
	if err != nil {
		return nil, err
	}
	return moniker.ParseAll(raws)
}

// buildPolicy creates the configured policy. For App it loads the
// application project named after the source.
func buildPolicy(ctx context.Context, src *source, cfg *discoverConfig) (selector.Policy, error) {
	policyCfg := selector.Config{Kind: cfg.selectorKind, Pattern: cfg.frameworkPattern}
	if cfg.selectorKind == selector.App {
		names := make([]string, len(src.members))
		for i, m := range src.members {
			names[i] = m.name
		}
		idx, err := selector.FindApplication(src.baseName, names)
		if err != nil {
			return nil, err
		}
		app := src.members[idx]
		p, err := app.load(ctx)
		if err != nil {
			return nil, &ProjectError{Project: app.name, Err: err}
		}
		if policyCfg.Application, err = projectFrameworks(p); err != nil {
			return nil, &ProjectError{Project: app.name, Err: err}
		}
	}
	return selector.New(policyCfg, selector.WithLogger(cfg.log()))
}

func matchesTest(re *regexp2.Regexp, m member) (bool, error) {
	if m.test {
		return true, nil
	}
	return selector.MatchPattern(re, m.name)
}

// openSource reads a solution file or scans a Bazel workspace directory.
func openSource(ctx context.Context, path string, cfg *discoverConfig) (*source, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrSolutionNotFound)
	}
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		if !bazel.IsWorkspace(path) {
			return nil, fmt.Errorf("%s: directory is not a bazel workspace: %w", path, ErrUnsupportedSource)
		}
		return openWorkspace(ctx, path, cfg)
	}
	return openSolution(path, cfg)
}

func openSolution(path string, cfg *discoverConfig) (*source, error) {
	sln, err := solution.Parse(path)
	if err != nil {
		if errors.Is(err, solution.ErrNotSolution) {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedSource, err)
		}
		return nil, err
	}

	src := &source{baseName: sln.BaseName()}
	for _, p := range sln.MSBuildProjects() {
		abs := p.AbsolutePath
		src.members = append(src.members, member{
			name: p.Name,
			load: func(ctx context.Context) (project.Project, error) {
				return cfg.loader.Load(ctx, abs)
			},
		})
	}
	return src, nil
}

func openWorkspace(ctx context.Context, dir string, cfg *discoverConfig) (*source, error) {
	opts := append([]bazel.Option{bazel.WithLogger(cfg.log())}, cfg.bazelOpts...)
	ws, err := bazel.Scan(ctx, dir, opts...)
	if err != nil {
		return nil, err
	}

	src := &source{baseName: ws.Name}
	for _, t := range ws.Targets {
		p := t.Project(ws.Root)
		src.members = append(src.members, member{
			name: t.Name,
			test: t.IsTest(),
			load: func(context.Context) (project.Project, error) { return p, nil },
		})
	}
	return src, nil
}

// assemblyPath computes where p puts its assembly for framework.
func assemblyPath(p project.Project, framework string, published bool) string {
	ext := p.Property(project.PropTargetExt)
	if ext == "" {
		ext = ".dll"
		if strings.HasPrefix(framework, "net4") && !strings.EqualFold(p.Property(project.PropOutputType), "library") {
			ext = ".exe"
		}
	}

	out := p.Property(project.PropOutputPath)
	if runtime.GOOS != "windows" {
		out = strings.ReplaceAll(out, `\`, "/")
	}
	if !strings.Contains(out, framework) {
		out = filepath.Join(out, framework)
	}
	if published {
		out = filepath.Join(out, "publish")
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(p.Dir(), out)
	}
	return filepath.Join(out, p.Property(project.PropAssemblyName)+ext)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ExcludeAssembly reports whether a test project named name is filtered out.
// A match against any exclude pattern excludes it. Otherwise, when at least
// one include pattern is non-blank, it is kept only if an include matches.
// Patterns use .NET regular expression syntax.
func ExcludeAssembly(include, exclude []string, name string) (bool, error) {
	inc, err := compilePatterns(include)
	if err != nil {
		return false, fmt.Errorf("include pattern: %w", err)
	}
	exc, err := compilePatterns(exclude)
	if err != nil {
		return false, fmt.Errorf("exclude pattern: %w", err)
	}
	return excludeAssembly(inc, exc, name)
}

func excludeAssembly(include, exclude []*regexp2.Regexp, name string) (bool, error) {
	for _, re := range exclude {
		ok, err := selector.MatchPattern(re, name)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	if len(include) == 0 {
		return false, nil
	}
	for _, re := range include {
		ok, err := selector.MatchPattern(re, name)
		if err != nil {
			return false, err
		}
		if ok {
			return false, nil
		}
	}
	return true, nil
}
