package project

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// propertyName matches the body of a plain $(Name) reference.
var propertyName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// properties is the evaluated property table. Names are case-insensitive.
// Global properties cannot be overwritten by project content.
type properties struct {
	global map[string]string
	values map[string]string
	env    func(string) (string, bool)
	log    *slog.Logger
}

func newProperties(global map[string]string, env func(string) (string, bool)) *properties {
	p := &properties{
		global: make(map[string]string, len(global)),
		values: make(map[string]string),
		env:    env,
		log:    slog.New(slog.DiscardHandler),
	}
	for k, v := range global {
		p.global[strings.ToLower(k)] = v
	}
	return p
}

func (p *properties) lookup(name string) (string, bool) {
	key := strings.ToLower(name)
	if v, ok := p.global[key]; ok {
		return v, true
	}
	if v, ok := p.values[key]; ok {
		return v, true
	}
	if p.env != nil {
		return p.env(name)
	}
	return "", false
}

func (p *properties) get(name string) string {
	v, _ := p.lookup(name)
	return v
}

func (p *properties) set(name, value string) {
	key := strings.ToLower(name)
	if _, ok := p.global[key]; ok {
		return
	}
	p.values[key] = value
}

// setDefault sets name only when it is unset or empty.
func (p *properties) setDefault(name, value string) {
	if p.get(name) == "" {
		p.set(name, value)
	}
}

// expand replaces $(...) references in s. Unsupported property functions
// expand to the empty string. An unterminated reference is kept as is.
func (p *properties) expand(s string) string {
	if !strings.Contains(s, "$(") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if !strings.HasPrefix(s[i:], "$(") {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := refEnd(s, i)
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		b.WriteString(p.evalRef(s[i+2 : end]))
		i = end + 1
	}
	return b.String()
}

func (p *properties) snapshot() map[string]string {
	out := make(map[string]string, len(p.values)+len(p.global))
	for k, v := range p.values {
		out[k] = v
	}
	for k, v := range p.global {
		out[k] = v
	}
	return out
}

// element is a generic MSBuild XML element.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
	Text     string     `xml:",chardata"`
}

func (e *element) name() string { return strings.ToLower(e.XMLName.Local) }

func (e *element) attr(name string) string {
	for _, a := range e.Attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value
		}
	}
	return ""
}

func parseXML(path string, data []byte) (*element, error) {
	var root element
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if root.name() != "project" {
		return nil, fmt.Errorf("parse %s: root element is <%s>, want <Project>", path, root.XMLName.Local)
	}
	return &root, nil
}

// evaluator runs the property pass of MSBuild evaluation over a project and
// its imports.
type evaluator struct {
	props    *properties
	log      *slog.Logger
	imported map[string]bool
}

// nativePath converts MSBuild's backslash separators for the host OS.
func nativePath(path string) string {
	return filepath.FromSlash(strings.ReplaceAll(path, `\`, "/"))
}

func (ev *evaluator) exists(path string) bool {
	path = nativePath(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(ev.props.get("MSBuildProjectDirectory"), path)
	}
	_, err := os.Stat(path)
	return err == nil
}

func (ev *evaluator) condition(e *element) (bool, error) {
	return evalCondition(e.attr("Condition"), ev.props.expand, ev.exists)
}

// evalFile evaluates root as the content of file.
func (ev *evaluator) evalFile(file string, root *element) error {
	ev.imported[file] = true

	prevDir, hadDir := ev.props.values["msbuildthisfiledirectory"]
	prevFile := ev.props.values["msbuildthisfile"]
	ev.props.set("MSBuildThisFileDirectory", filepath.Dir(file)+string(filepath.Separator))
	ev.props.set("MSBuildThisFile", filepath.Base(file))
	defer func() {
		if hadDir {
			ev.props.values["msbuildthisfiledirectory"] = prevDir
			ev.props.values["msbuildthisfile"] = prevFile
		}
	}()

	return ev.evalChildren(file, root.Children)
}

func (ev *evaluator) evalChildren(file string, children []element) error {
	for i := range children {
		if err := ev.evalElement(file, &children[i]); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) evalElement(file string, e *element) error {
	switch e.name() {
	case "propertygroup":
		ok, err := ev.condition(e)
		if err != nil || !ok {
			return wrapCondition(file, err)
		}
		for i := range e.Children {
			prop := &e.Children[i]
			ok, err := ev.condition(prop)
			if err != nil {
				return wrapCondition(file, err)
			}
			if ok {
				ev.props.set(prop.XMLName.Local, ev.props.expand(strings.TrimSpace(prop.Text)))
			}
		}
	case "choose":
		for i := range e.Children {
			branch := &e.Children[i]
			switch branch.name() {
			case "when":
				ok, err := ev.condition(branch)
				if err != nil {
					return wrapCondition(file, err)
				}
				if ok {
					return ev.evalChildren(file, branch.Children)
				}
			case "otherwise":
				return ev.evalChildren(file, branch.Children)
			}
		}
	case "importgroup":
		ok, err := ev.condition(e)
		if err != nil || !ok {
			return wrapCondition(file, err)
		}
		return ev.evalChildren(file, e.Children)
	case "import":
		ok, err := ev.condition(e)
		if err != nil || !ok {
			return wrapCondition(file, err)
		}
		return ev.importProject(file, e)
	}
	return nil
}

func wrapCondition(file string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", file, err)
}

// importProject evaluates the files named by an Import element. SDK imports
// are skipped. Missing, empty and already imported files are ignored.
func (ev *evaluator) importProject(file string, e *element) error {
	if e.attr("Sdk") != "" {
		return nil
	}
	target := strings.TrimSpace(ev.props.expand(e.attr("Project")))
	if target == "" {
		return nil
	}
	target = nativePath(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(file), target)
	}

	paths := []string{target}
	if strings.ContainsAny(target, "*?[") {
		matches, err := doublestar.FilepathGlob(target)
		if err != nil {
			return fmt.Errorf("%s: import %q: %w", file, target, err)
		}
		paths = matches
	}

	for _, path := range paths {
		if ev.imported[path] {
			ev.log.Debug("Skipping duplicate import", "project", path, "importer", file)
			continue
		}
		if err := ev.evalPath(path); err != nil {
			return err
		}
	}
	return nil
}

// evalPath reads and evaluates path, ignoring a missing or empty file.
func (ev *evaluator) evalPath(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		ev.log.Debug("Ignoring missing import", "project", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	root, err := parseXML(path, data)
	if err != nil {
		return err
	}
	return ev.evalFile(path, root)
}

// findDirectoryBuildProps returns the nearest Directory.Build.props at or
// above dir, or "".
func findDirectoryBuildProps(dir string) string {
	for {
		candidate := filepath.Join(dir, "Directory.Build.props")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
