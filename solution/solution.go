// Package solution reads Visual Studio solution (.sln) files.
//
// Only the project table is read: each Project(...) entry yields a Project
// with its name, type GUID and location. Configuration platforms, nested
// project mappings and other global sections are ignored.
package solution

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const header = "Microsoft Visual Studio Solution File"

// SolutionFolderType is the project type GUID of a solution folder.
const SolutionFolderType = "{2150E333-8FDC-42A3-9474-1A3956D46DE8}"

var projectLine = regexp.MustCompile(`^Project\("(?P<type>[^"]*)"\)\s*=\s*"(?P<name>[^"]*)"\s*,\s*"(?P<path>[^"]*)"\s*,\s*"(?P<guid>[^"]*)"`)

var msbuildExtensions = map[string]bool{
	".csproj":  true,
	".fsproj":  true,
	".vbproj":  true,
	".vcxproj": true,
	".proj":    true,
	".sqlproj": true,
}

// ErrNotSolution indicates the input lacks the solution file header.
var ErrNotSolution = errors.New("not a solution file")

// ParseError reports a malformed line in a solution file.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// File is a parsed solution.
type File struct {
	// Path is the absolute path of the solution file.
	Path string
	// Projects lists project entries in declaration order.
	Projects []Project
}

// Dir returns the directory containing the solution.
func (f *File) Dir() string { return filepath.Dir(f.Path) }

// BaseName returns the solution file name without its extension.
func (f *File) BaseName() string {
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MSBuildProjects returns the projects for which IsMSBuild is true.
func (f *File) MSBuildProjects() []Project {
	var result []Project
	for _, p := range f.Projects {
		if p.IsMSBuild() {
			result = append(result, p)
		}
	}
	return result
}

// Project is one entry of a solution's project table.
type Project struct {
	Name string
	// RelativePath is the location as written in the solution, with
	// separators converted to the host's.
	RelativePath string
	// AbsolutePath is RelativePath resolved against the solution directory.
	AbsolutePath string
	TypeGUID     string
	GUID         string
}

// IsMSBuild reports whether the entry is an MSBuild project file rather than
// a solution folder or a web site.
func (p Project) IsMSBuild() bool {
	if strings.EqualFold(p.TypeGUID, SolutionFolderType) {
		return false
	}
	return msbuildExtensions[strings.ToLower(filepath.Ext(p.RelativePath))]
}

// Parse reads and parses the solution file at path.
func Parse(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve solution path: %w", err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open solution: %w", err)
	}
	defer f.Close()

	return ParseContent(abs, f)
}

// ParseContent parses solution content read from r. Project paths are
// resolved against the directory of path, which need not exist.
func ParseContent(path string, r io.Reader) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve solution path: %w", err)
	}
	sln := &File{Path: abs}
	dir := filepath.Dir(abs)

	scanner := bufio.NewScanner(r)
	sawHeader := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !sawHeader {
			if !strings.HasPrefix(line, header) {
				return nil, fmt.Errorf("%s: %w", abs, ErrNotSolution)
			}
			sawHeader = true
			continue
		}
		if !strings.HasPrefix(line, "Project(") {
			continue
		}

		m := projectLine.FindStringSubmatch(line)
		if m == nil {
			return nil, &ParseError{Path: abs, Line: lineNo, Msg: "malformed project entry"}
		}
		rel := filepath.FromSlash(strings.ReplaceAll(m[projectLine.SubexpIndex("path")], `\`, "/"))
		p := Project{
			Name:         m[projectLine.SubexpIndex("name")],
			RelativePath: rel,
			TypeGUID:     m[projectLine.SubexpIndex("type")],
			GUID:         m[projectLine.SubexpIndex("guid")],
		}
		if filepath.IsAbs(rel) {
			p.AbsolutePath = filepath.Clean(rel)
		} else {
			p.AbsolutePath = filepath.Join(dir, rel)
		}
		sln.Projects = append(sln.Projects, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read solution: %w", err)
	}
	if !sawHeader {
		return nil, fmt.Errorf("%s: %w", abs, ErrNotSolution)
	}
	return sln, nil
}
