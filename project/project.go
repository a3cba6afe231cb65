// Package project evaluates MSBuild project files far enough to read the
// properties that locate build output: target frameworks, assembly name,
// output path, output type and target extension.
//
// Evaluation covers property groups, Choose/When/Otherwise, imports and
// Directory.Build.props, with conditions and $(Property) expansion. Items,
// targets and SDK resolution are not evaluated; the SDK defaults that matter
// for output discovery are applied directly.
package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-tfm/moniker"
)

// Project is an evaluated project.
type Project interface {
	// Path is the absolute path of the project file.
	Path() string
	// Dir is the directory containing the project file.
	Dir() string
	// Property returns the evaluated value of a property, or "" when unset.
	Property(name string) string
}

// Well-known property names.
const (
	PropTargetFramework  = "TargetFramework"
	PropTargetFrameworks = "TargetFrameworks"
	PropProjectName      = "ProjectName"
	PropAssemblyName     = "AssemblyName"
	PropOutputPath       = "OutputPath"
	PropOutputType       = "OutputType"
	PropTargetExt        = "TargetExt"
	PropConfiguration    = "Configuration"
)

// ErrNoTargetFramework indicates a project sets neither TargetFramework nor
// TargetFrameworks.
var ErrNoTargetFramework = errors.New("unable to determine target framework")

// Name returns the project's ProjectName property.
func Name(p Project) string {
	return p.Property(PropProjectName)
}

// TargetFrameworks returns the frameworks a project builds for.
// TargetFramework wins over TargetFrameworks. Entries of TargetFrameworks are
// trimmed and empty entries dropped.
func TargetFrameworks(p Project) ([]string, error) {
	if tf := strings.TrimSpace(p.Property(PropTargetFramework)); tf != "" {
		return []string{tf}, nil
	}

	result := moniker.Split(p.Property(PropTargetFrameworks))
	if len(result) == 0 {
		return nil, fmt.Errorf("%w for project '%s'", ErrNoTargetFramework, Name(p))
	}
	return result, nil
}

// Static is a Project backed by a fixed property map. Property names are
// case-insensitive, as in MSBuild.
type Static struct {
	path  string
	dir   string
	props map[string]string
}

// NewStatic returns a Project with the given properties.
func NewStatic(path, dir string, props map[string]string) *Static {
	s := &Static{path: path, dir: dir, props: make(map[string]string, len(props))}
	for k, v := range props {
		s.props[strings.ToLower(k)] = v
	}
	return s
}

func (s *Static) Path() string { return s.path }
func (s *Static) Dir() string  { return s.dir }

func (s *Static) Property(name string) string {
	return s.props[strings.ToLower(name)]
}
