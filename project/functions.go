package project

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/albertocavalcante/go-tfm/moniker"
)

// refEnd returns the index of the ')' closing the "$(" at start, or -1.
// Parentheses inside single-quoted arguments do not count.
func refEnd(s string, start int) int {
	depth := 0
	quoted := false
	for i := start + 1; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// callsFunction reports whether s holds a reference that is more than a
// property name, such as $([MSBuild]::IsOSPlatform('Linux')) or
// $(TargetFramework.StartsWith('net4')).
func callsFunction(s string) bool {
	for i := strings.Index(s, "$("); i >= 0 && i < len(s); {
		end := refEnd(s, i)
		if end < 0 {
			return false
		}
		if !propertyName.MatchString(strings.TrimSpace(s[i+2 : end])) {
			return true
		}
		next := strings.Index(s[end:], "$(")
		if next < 0 {
			return false
		}
		i = end + next
	}
	return false
}

// call is a parsed function reference: Receiver.Name(Args).
type call struct {
	receiver string
	name     string
	args     []string
	hasArgs  bool
}

// parseCall splits "Name(arg, 'arg')" into a name and raw arguments.
func parseCall(receiver, s string) (call, bool) {
	c := call{receiver: receiver}
	open := strings.IndexByte(s, '(')
	if open < 0 {
		c.name = strings.TrimSpace(s)
		return c, c.name != ""
	}
	if !strings.HasSuffix(s, ")") {
		return c, false
	}
	c.name = strings.TrimSpace(s[:open])
	c.args = splitArgs(s[open+1 : len(s)-1])
	c.hasArgs = true
	return c, c.name != ""
}

// splitArgs splits an argument list on top-level commas.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []string
	depth, start := 0, 0
	quoted := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			args = append(args, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

func unquote(arg string) string {
	if len(arg) >= 2 && arg[0] == '\'' && arg[len(arg)-1] == '\'' {
		return arg[1 : len(arg)-1]
	}
	return arg
}

// evalRef evaluates the body of a $(...) reference.
func (p *properties) evalRef(body string) string {
	body = strings.TrimSpace(body)
	if propertyName.MatchString(body) {
		return p.get(body)
	}

	var (
		c  call
		ok bool
	)
	switch {
	case strings.HasPrefix(body, "["):
		end := strings.IndexByte(body, ']')
		if end > 0 && strings.HasPrefix(body[end+1:], "::") {
			c, ok = parseCall(body[1:end], body[end+3:])
		}
	default:
		if dot := strings.IndexByte(body, '.'); dot > 0 && propertyName.MatchString(body[:dot]) {
			c, ok = parseCall(body[:dot], body[dot+1:])
		}
	}
	if !ok {
		p.log.Debug("Unsupported property reference", "reference", body)
		return ""
	}

	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = p.expand(unquote(a))
	}
	var v string
	if strings.HasPrefix(body, "[") {
		v, ok = p.staticFunction(c.receiver, c.name, args)
	} else {
		v, ok = stringMethod(p.get(c.receiver), c.name, args, c.hasArgs)
	}
	if !ok {
		p.log.Debug("Unsupported property function", "reference", body)
		return ""
	}
	return v
}

func (p *properties) staticFunction(typ, name string, args []string) (string, bool) {
	switch strings.ToLower(typ) {
	case "msbuild":
		return msbuildFunction(name, args)
	case "system.io.path":
		return pathFunction(name, args)
	case "system.string":
		if len(args) != 1 {
			return "", false
		}
		switch strings.ToLower(name) {
		case "isnullorempty":
			return strconv.FormatBool(args[0] == ""), true
		case "isnullorwhitespace":
			return strconv.FormatBool(strings.TrimSpace(args[0]) == ""), true
		}
	case "system.environment":
		if strings.EqualFold(name, "GetEnvironmentVariable") && len(args) == 1 && p.env != nil {
			v, _ := p.env(args[0])
			return v, true
		}
	}
	return "", false
}

func msbuildFunction(name string, args []string) (string, bool) {
	arity := func(n int) bool { return len(args) == n }

	switch strings.ToLower(name) {
	case "isosplatform":
		if !arity(1) {
			return "", false
		}
		return strconv.FormatBool(isOSPlatform(args[0])), true
	case "isosunixlike":
		return strconv.FormatBool(runtime.GOOS != "windows"), arity(0)
	case "valueordefault":
		if !arity(2) {
			return "", false
		}
		if args[0] != "" {
			return args[0], true
		}
		return args[1], true
	case "ensuretrailingslash":
		if !arity(1) {
			return "", false
		}
		if args[0] == "" || strings.HasSuffix(args[0], "/") || strings.HasSuffix(args[0], `\`) {
			return args[0], true
		}
		return args[0] + string(filepath.Separator), true
	case "gettargetframeworkidentifier":
		if !arity(1) {
			return "", false
		}
		m, err := moniker.Parse(args[0])
		if err != nil {
			return "", false
		}
		return m.Family().Identifier(), true
	case "gettargetframeworkversion":
		if !arity(1) && !arity(2) {
			return "", false
		}
		m, err := moniker.Parse(args[0])
		if err != nil {
			return "", false
		}
		if arity(1) {
			return m.Version().String(), true
		}
		parts, err := strconv.Atoi(args[1])
		if err != nil || parts < 1 || parts > 4 {
			return "", false
		}
		v := m.Version()
		comps := []int{v.Major, v.Minor, max(v.Build, 0), 0}
		strs := make([]string, parts)
		for i := range strs {
			strs[i] = strconv.Itoa(comps[i])
		}
		return strings.Join(strs, "."), true
	case "gettargetplatformidentifier":
		if !arity(1) {
			return "", false
		}
		_, suffix, _ := strings.Cut(args[0], "-")
		return strings.TrimRight(suffix, "0123456789."), true
	case "gettargetplatformversion":
		if !arity(1) {
			return "", false
		}
		_, suffix, _ := strings.Cut(args[0], "-")
		return suffix[len(strings.TrimRight(suffix, "0123456789.")):], true
	case "istargetframeworkcompatible":
		if !arity(2) {
			return "", false
		}
		target, err := moniker.Parse(args[0])
		if err != nil {
			return "", false
		}
		candidate, err := moniker.Parse(args[1])
		if err != nil {
			return "", false
		}
		return strconv.FormatBool(moniker.Compatible(target, candidate)), true
	case "versionequals", "versionnotequals",
		"versiongreaterthan", "versiongreaterthanorequals",
		"versionlessthan", "versionlessthanorequals":
		if !arity(2) {
			return "", false
		}
		c, ok := compareVersions(args[0], args[1])
		if !ok {
			return "", false
		}
		var result bool
		switch strings.ToLower(name) {
		case "versionequals":
			result = c == 0
		case "versionnotequals":
			result = c != 0
		case "versiongreaterthan":
			result = c > 0
		case "versiongreaterthanorequals":
			result = c >= 0
		case "versionlessthan":
			result = c < 0
		default:
			result = c <= 0
		}
		return strconv.FormatBool(result), true
	}
	return "", false
}

func isOSPlatform(name string) bool {
	switch strings.ToLower(name) {
	case "windows":
		return runtime.GOOS == "windows"
	case "linux":
		return runtime.GOOS == "linux"
	case "osx", "macos":
		return runtime.GOOS == "darwin"
	case "freebsd":
		return runtime.GOOS == "freebsd"
	default:
		return false
	}
}

// compareVersions compares dotted numeric versions. A leading "v" and
// missing trailing components are allowed.
func compareVersions(a, b string) (int, bool) {
	pa, ok := versionParts(a)
	if !ok {
		return 0, false
	}
	pb, ok := versionParts(b)
	if !ok {
		return 0, false
	}
	for i := 0; i < max(len(pa), len(pb)); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		if x != y {
			if x < y {
				return -1, true
			}
			return 1, true
		}
	}
	return 0, true
}

func versionParts(s string) ([]int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	// Prerelease and build metadata do not take part.
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return nil, false
	}
	fields := strings.Split(s, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, false
		}
		parts[i] = n
	}
	return parts, true
}

func pathFunction(name string, args []string) (string, bool) {
	native := make([]string, len(args))
	for i, a := range args {
		native[i] = nativePath(a)
	}
	switch strings.ToLower(name) {
	case "combine":
		if len(args) == 0 {
			return "", false
		}
		return filepath.Join(native...), true
	case "getfilename":
		if len(args) != 1 {
			return "", false
		}
		return filepath.Base(native[0]), true
	case "getfilenamewithoutextension":
		if len(args) != 1 {
			return "", false
		}
		base := filepath.Base(native[0])
		return strings.TrimSuffix(base, filepath.Ext(base)), true
	case "getdirectoryname":
		if len(args) != 1 {
			return "", false
		}
		return filepath.Dir(native[0]), true
	case "getextension":
		if len(args) != 1 {
			return "", false
		}
		return filepath.Ext(native[0]), true
	}
	return "", false
}

// stringMethod applies a System.String instance member to a property value.
func stringMethod(value, name string, args []string, hasArgs bool) (string, bool) {
	switch strings.ToLower(name) {
	case "length":
		return strconv.Itoa(len(value)), !hasArgs
	case "tolower", "tolowerinvariant":
		return strings.ToLower(value), len(args) == 0
	case "toupper", "toupperinvariant":
		return strings.ToUpper(value), len(args) == 0
	case "trim":
		return strings.TrimSpace(value), len(args) == 0
	case "startswith":
		if len(args) != 1 {
			return "", false
		}
		return strconv.FormatBool(strings.HasPrefix(value, args[0])), true
	case "endswith":
		if len(args) != 1 {
			return "", false
		}
		return strconv.FormatBool(strings.HasSuffix(value, args[0])), true
	case "contains":
		if len(args) != 1 {
			return "", false
		}
		return strconv.FormatBool(strings.Contains(value, args[0])), true
	case "replace":
		if len(args) != 2 || args[0] == "" {
			return "", false
		}
		return strings.ReplaceAll(value, args[0], args[1]), true
	}
	return "", false
}
