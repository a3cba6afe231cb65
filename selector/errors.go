package selector

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-tfm/moniker"
)

// Sentinel errors for policy construction and selection failures.
var (
	// ErrNoBaseProject indicates no project is named after the solution.
	ErrNoBaseProject = errors.New("no base application project")

	// ErrAmbiguousBaseProject indicates several projects are named after the solution.
	ErrAmbiguousBaseProject = errors.New("ambiguous base application project")

	// ErrUnmatchedFramework indicates an application framework has no
	// counterpart in the evaluated project.
	ErrUnmatchedFramework = errors.New("unmatched application framework")
)

// BaseProjectError reports a failed application project lookup.
type BaseProjectError struct {
	// Name is the name that was looked up.
	Name string
	// Matches lists the project names that matched. Empty when none did.
	Matches []string
}

func (e *BaseProjectError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("unable to find base application for %s: no project with that name exists, consider a different framework selector", e.Name)
	}
	return fmt.Sprintf("unable to find base application for %s: %d projects match (%s)", e.Name, len(e.Matches), strings.Join(e.Matches, ", "))
}

// Unwrap returns ErrNoBaseProject or ErrAmbiguousBaseProject.
func (e *BaseProjectError) Unwrap() error {
	if len(e.Matches) == 0 {
		return ErrNoBaseProject
	}
	return ErrAmbiguousBaseProject
}

// UnmatchedFrameworkError reports an application framework with no
// counterpart in a project.
type UnmatchedFrameworkError struct {
	Framework moniker.Moniker
	Project   string
}

func (e *UnmatchedFrameworkError) Error() string {
	return fmt.Sprintf("unable to find matching test framework for %s in %s", e.Framework, e.Project)
}

// Unwrap returns ErrUnmatchedFramework.
func (e *UnmatchedFrameworkError) Unwrap() error {
	return ErrUnmatchedFramework
}
