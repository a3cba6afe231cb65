package gotfm

import (
	"errors"
	"fmt"
)

// Sentinel errors for discovery failures.
var (
	// ErrSolutionNotFound indicates the input path does not exist.
	ErrSolutionNotFound = errors.New("solution not found")

	// ErrUnsupportedSource indicates the input is neither a solution file nor
	// a Bazel workspace.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrNoAssemblies indicates discovery found no test assemblies.
	ErrNoAssemblies = errors.New("no matching test assemblies")
)

// ProjectError reports a failure while evaluating one project.
type ProjectError struct {
	Project string
	Err     error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("project %s: %v", e.Project, e.Err)
}

func (e *ProjectError) Unwrap() error { return e.Err }
