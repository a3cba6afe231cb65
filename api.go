// Package gotfm discovers .NET test assemblies and selects the target
// frameworks to test them under.
//
// # Overview
//
// The package builds on four subpackages:
//
//   - moniker: parses and orders target framework monikers (net6.0, net48, ...)
//   - selector: framework selection policies and cross-project matching
//   - project: MSBuild property evaluation for project files
//   - bazel: rules_dotnet target discovery in Bazel workspaces
//
// # Quick Start
//
// List the test assemblies of a solution, one per declared framework:
//
//	result, err := gotfm.Discover(ctx, "App.sln")
//	if err != nil {
//	    return err
//	}
//	for _, path := range result.Paths() {
//	    fmt.Println(path)
//	}
//
// Test only the frameworks the application ships:
//
//	result, err := gotfm.Discover(ctx, "App.sln",
//	    gotfm.WithSelector(selector.App),
//	    gotfm.WithConfiguration("Release"),
//	)
//
// The same works for a Bazel workspace using rules_dotnet:
//
//	result, err := gotfm.Discover(ctx, "path/to/workspace", gotfm.WithSelector(selector.MaxNoWindows))
//
// # Thread Safety
//
// Discover may be called concurrently. A project.Loader passed through
// WithLoader is shared safely between calls.
package gotfm

import (
	"fmt"

	"github.com/albertocavalcante/go-tfm/moniker"
	"github.com/albertocavalcante/go-tfm/selector"
)

// SelectFrameworks applies policy to a project named name that declares the
// frameworks raws, and returns the kept frameworks as raw strings.
func SelectFrameworks(policy selector.Policy, name string, raws []string) ([]string, error) {
	frameworks, err := moniker.ParseAll(raws)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", name, err)
	}
	selected, err := policy.Select(selector.Project{Name: name, Frameworks: frameworks})
	if err != nil {
		return nil, err
	}
	return moniker.Raws(selected), nil
}

// MatchFramework returns the candidate that best corresponds to reference.
// See selector.Match for the rules.
func MatchFramework(reference string, candidates []string) (string, bool, error) {
	ref, err := moniker.Parse(reference)
	if err != nil {
		return "", false, err
	}
	cands, err := moniker.ParseAll(candidates)
	if err != nil {
		return "", false, err
	}
	match, ok := selector.Match(ref, cands)
	if !ok {
		return "", false, nil
	}
	return match.Raw(), true, nil
}
