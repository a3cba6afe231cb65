package selector

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/dlclark/regexp2"

	"github.com/albertocavalcante/go-tfm/moniker"
)

// AllPolicy returns a policy that keeps every declared framework. The kept
// frameworks are logged at Debug.
func AllPolicy(opts ...Option) Policy {
	return allPolicy{log: newPolicyConfig(opts).logger}
}

// MaxPolicy returns a policy that keeps the single greatest framework.
func MaxPolicy(opts ...Option) Policy {
	return maxPolicy{log: newPolicyConfig(opts).logger}
}

// MaxNoWindowsPolicy returns a policy that keeps the single greatest framework
// that does not target Windows.
func MaxNoWindowsPolicy(opts ...Option) Policy {
	return maxPolicy{ignoreWindows: true, log: newPolicyConfig(opts).logger}
}

// RegexPolicy returns a policy that keeps frameworks matching pattern.
// The pattern uses .NET regular expression syntax.
func RegexPolicy(pattern string, opts ...Option) (Policy, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("framework pattern: %w", err)
	}
	return regexPolicy{re: re, log: newPolicyConfig(opts).logger}, nil
}

// AppPolicy returns a policy that pairs every application framework with its
// closest counterpart in the evaluated project. Each pairing is logged at Debug.
func AppPolicy(application []moniker.Moniker, opts ...Option) Policy {
	return appPolicy{application: slices.Clone(application), log: newPolicyConfig(opts).logger}
}

// CompilePattern compiles a .NET-syntax regular expression.
func CompilePattern(pattern string) (*regexp2.Regexp, error) {
	return regexp2.Compile(pattern, regexp2.None)
}

// MatchPattern reports whether s matches re. A match that times out or fails
// internally is reported as an error.
func MatchPattern(re *regexp2.Regexp, s string) (bool, error) {
	ok, err := re.MatchString(s)
	if err != nil {
		return false, fmt.Errorf("match %q against %q: %w", s, re.String(), err)
	}
	return ok, nil
}

type allPolicy struct {
	log *slog.Logger
}

func (allPolicy) Kind() Kind { return All }

func (a allPolicy) Select(p Project) ([]moniker.Moniker, error) {
	a.log.Debug("Keeping all frameworks", "project", p.Name, "frameworks", moniker.Raws(p.Frameworks))
	return slices.Clone(p.Frameworks), nil
}

type maxPolicy struct {
	ignoreWindows bool
	log           *slog.Logger
}

func (m maxPolicy) Kind() Kind {
	if m.ignoreWindows {
		return MaxNoWindows
	}
	return Max
}

func (m maxPolicy) Select(p Project) ([]moniker.Moniker, error) {
	candidates := p.Frameworks
	if m.ignoreWindows {
		candidates = slices.DeleteFunc(slices.Clone(candidates), func(fw moniker.Moniker) bool {
			return fw.Platform() == moniker.Windows
		})
	}

	best, ok := moniker.Max(candidates)
	if !ok {
		m.log.Info("Skipping project as it does not match framework filter", "project", p.Name)
		return []moniker.Moniker{}, nil
	}
	return []moniker.Moniker{best}, nil
}

type regexPolicy struct {
	re  *regexp2.Regexp
	log *slog.Logger
}

func (regexPolicy) Kind() Kind { return Regex }

func (r regexPolicy) Select(p Project) ([]moniker.Moniker, error) {
	result := make([]moniker.Moniker, 0, len(p.Frameworks))
	for _, fw := range p.Frameworks {
		ok, err := MatchPattern(r.re, fw.Raw())
		if err != nil {
			return nil, err
		}
		if !ok {
			r.log.Info("Skipping framework as it does not match framework filter", "framework", fw.Raw(), "project", p.Name)
			continue
		}
		result = append(result, fw)
	}
	return result, nil
}

type appPolicy struct {
	application []moniker.Moniker
	log         *slog.Logger
}

func (appPolicy) Kind() Kind { return App }

func (a appPolicy) Select(p Project) ([]moniker.Moniker, error) {
	result := make([]moniker.Moniker, 0, len(a.application))
	seen := make(map[string]bool, len(a.application))
	for _, appFramework := range a.application {
		match, ok := Match(appFramework, p.Frameworks)
		if !ok {
			return nil, &UnmatchedFrameworkError{Framework: appFramework, Project: p.Name}
		}
		a.log.Debug("Matched application framework", "application", appFramework.Raw(), "framework", match.Raw(), "project", p.Name)
		if seen[match.Raw()] {
			continue
		}
		seen[match.Raw()] = true
		result = append(result, match)
	}
	return result, nil
}
