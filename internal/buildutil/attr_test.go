package buildutil

import (
	"slices"
	"testing"

	"github.com/bazelbuild/buildtools/build"
)

func parseBuild(t *testing.T, content string) *build.File {
	t.Helper()
	f, err := build.ParseBuild("BUILD.bazel", []byte(content))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return f
}

func parseCall(t *testing.T, content string) *build.CallExpr {
	t.Helper()
	f := parseBuild(t, content)
	if len(f.Stmt) == 0 {
		t.Fatal("no statements parsed")
	}
	call, ok := f.Stmt[0].(*build.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", f.Stmt[0])
	}
	return call
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		attrName string
		want     string
	}{
		{"named string attribute", `csharp_library(name = "App")`, "name", "App"},
		{"missing attribute", `csharp_library(out = "App")`, "name", ""},
		{"non-string attribute", `csharp_library(name = 123)`, "name", ""},
		{"first positional when name empty", `module("positional")`, "", "positional"},
		{"empty call with empty name", `module()`, "", ""},
		{"picks the right keyword", `csharp_test(name = "A.Tests", out = "Acme.A.Tests")`, "out", "Acme.A.Tests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := String(parseCall(t, tt.input), tt.attrName)
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"list", `csharp_library(target_frameworks = ["net6.0", "net48"])`, []string{"net6.0", "net48"}},
		{"single string", `csharp_library(target_frameworks = "net6.0")`, []string{"net6.0"}},
		{"skips non-strings", `csharp_library(target_frameworks = ["net6.0", FRAMEWORK])`, []string{"net6.0"}},
		{"empty list", `csharp_library(target_frameworks = [])`, []string{}},
		{"missing", `csharp_library(name = "x")`, nil},
		{"other shape", `csharp_library(target_frameworks = FRAMEWORKS)`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StringList(parseCall(t, tt.input), "target_frameworks")
			if (got == nil) != (tt.want == nil) || !slices.Equal(got, tt.want) {
				t.Errorf("StringList() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFuncName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`csharp_library()`, "csharp_library"},
		{`module(name = "x")`, "module"},
		{`native.cc_library(name = "x")`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FuncName(parseCall(t, tt.input)); got != tt.want {
				t.Errorf("FuncName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRules(t *testing.T) {
	f := parseBuild(t, `
load("@rules_dotnet//dotnet:defs.bzl", "csharp_library", cs_test = "csharp_test")

csharp_library(name = "Lib")

cs_test(name = "Lib.Tests")

filegroup(name = "srcs")

[csharp_library(name = n) for n in ["Gen"]]
`)

	symbols := LoadedSymbols(f)
	if symbols["cs_test"] != "csharp_test" || symbols["csharp_library"] != "csharp_library" {
		t.Errorf("LoadedSymbols() = %v", symbols)
	}

	rules := Rules(f, func(kind string) bool { return kind != "filegroup" })
	var got []string
	for _, r := range rules {
		got = append(got, r.Kind+":"+r.Name())
	}
	want := []string{"csharp_library:Lib", "csharp_test:Lib.Tests"}
	if !slices.Equal(got, want) {
		t.Errorf("Rules() = %v, want %v", got, want)
	}
}

func TestFirstCall(t *testing.T) {
	f, err := build.ParseModule("MODULE.bazel", []byte(`
bazel_dep(name = "rules_dotnet", version = "0.17.5")
module(name = "acme", version = "1.0")
`))
	if err != nil {
		t.Fatal(err)
	}
	call := FirstCall(f, "module")
	if call == nil {
		t.Fatal("FirstCall() = nil, want module call")
	}
	if got := String(call, "name"); got != "acme" {
		t.Errorf("module name = %q, want acme", got)
	}
	if FirstCall(f, "workspace") != nil {
		t.Error("FirstCall(workspace) = non-nil, want nil")
	}
}
