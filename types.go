package gotfm

import (
	"fmt"
	"strings"
)

// Assembly is one test assembly produced by a project for one framework.
type Assembly struct {
	// Project is the project name.
	Project string
	// Framework is the raw target framework moniker.
	Framework string
	// Path is the absolute path of the assembly file.
	Path string
	// Exists reports whether the file was present when discovered.
	Exists bool
}

// Result is the outcome of Discover.
type Result struct {
	// Assemblies lists assemblies in project order, then framework order.
	Assemblies []Assembly
	// ErrorsFound is set when an assembly was missing and existence checks
	// were enabled.
	ErrorsFound bool
}

// Paths returns the assembly paths in order.
func (r *Result) Paths() []string {
	paths := make([]string, len(r.Assemblies))
	for i, a := range r.Assemblies {
		paths[i] = a.Path
	}
	return paths
}

// FileMode controls how WriteList treats an existing file.
type FileMode int

const (
	// Overwrite replaces the file content.
	Overwrite FileMode = iota
	// Append adds lines to the end of the file.
	Append
)

func (m FileMode) String() string {
	switch m {
	case Overwrite:
		return "Overwrite"
	case Append:
		return "Append"
	default:
		return fmt.Sprintf("FileMode(%d)", int(m))
	}
}

// ParseFileMode parses "Overwrite" or "Append", ignoring case.
func ParseFileMode(s string) (FileMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overwrite":
		return Overwrite, nil
	case "append":
		return Append, nil
	default:
		return 0, fmt.Errorf("unknown file mode %q (want Overwrite or Append)", s)
	}
}
