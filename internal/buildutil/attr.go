// Package buildutil reads rule calls and their attributes from parsed
// Starlark files (BUILD, MODULE.bazel, WORKSPACE).
package buildutil

import (
	"github.com/bazelbuild/buildtools/build"
)

// Rule is a top-level call in a BUILD file, with the callee resolved through
// load() aliases.
type Rule struct {
	// Kind is the loaded symbol name, e.g. "csharp_library" even when the
	// file calls it through an alias.
	Kind string
	Call *build.CallExpr
}

// Name returns the rule's name attribute.
func (r Rule) Name() string { return String(r.Call, "name") }

// Attr returns the expression bound to the named keyword argument, or nil.
func Attr(call *build.CallExpr, name string) build.Expr {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		if lhs, ok := assign.LHS.(*build.Ident); ok && lhs.Name == name {
			return assign.RHS
		}
	}
	return nil
}

// String extracts a string attribute by name. With an empty name it returns
// the first positional argument when that is a string.
// Returns "" if the attribute is missing or not a string literal.
func String(call *build.CallExpr, name string) string {
	if name == "" {
		if len(call.List) > 0 {
			if str, ok := call.List[0].(*build.StringExpr); ok {
				return str.Value
			}
		}
		return ""
	}
	if str, ok := Attr(call, name).(*build.StringExpr); ok {
		return str.Value
	}
	return ""
}

// StringList extracts a list-of-strings attribute. A single string literal is
// returned as a one-element list. Non-string elements are skipped.
// Returns nil if the attribute is missing or has another shape.
func StringList(call *build.CallExpr, name string) []string {
	switch v := Attr(call, name).(type) {
	case *build.StringExpr:
		return []string{v.Value}
	case *build.ListExpr:
		result := make([]string, 0, len(v.List))
		for _, elem := range v.List {
			if str, ok := elem.(*build.StringExpr); ok {
				result = append(result, str.Value)
			}
		}
		return result
	default:
		return nil
	}
}

// FuncName returns the callee name of a plain call. Returns "" for method
// calls like native.foo().
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}

// LoadedSymbols maps each name bound by load() statements in f to the
// symbol it loads, so load("@x//:defs.bzl", cs = "csharp_library") yields
// cs -> csharp_library.
func LoadedSymbols(f *build.File) map[string]string {
	symbols := make(map[string]string)
	for _, stmt := range f.Stmt {
		load, ok := stmt.(*build.LoadStmt)
		if !ok {
			continue
		}
		for i := range load.To {
			if i < len(load.From) {
				symbols[load.To[i].Name] = load.From[i].Name
			}
		}
	}
	return symbols
}

// Rules returns the top-level calls of f whose resolved kind satisfies keep,
// in file order. Calls nested in macros or conditionals are not visited.
func Rules(f *build.File, keep func(kind string) bool) []Rule {
	symbols := LoadedSymbols(f)
	var rules []Rule
	for _, stmt := range f.Stmt {
		call, ok := stmt.(*build.CallExpr)
		if !ok {
			continue
		}
		kind := FuncName(call)
		if kind == "" {
			continue
		}
		if original, ok := symbols[kind]; ok {
			kind = original
		}
		if keep(kind) {
			rules = append(rules, Rule{Kind: kind, Call: call})
		}
	}
	return rules
}

// FirstCall returns the first top-level call to fn in f, or nil.
func FirstCall(f *build.File, fn string) *build.CallExpr {
	for _, stmt := range f.Stmt {
		if call, ok := stmt.(*build.CallExpr); ok && FuncName(call) == fn {
			return call
		}
	}
	return nil
}
