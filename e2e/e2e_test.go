package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gotfm "github.com/albertocavalcante/go-tfm"
	"github.com/albertocavalcante/go-tfm/project"
)

// msbuildProperties is the JSON printed by 'dotnet msbuild -getProperty'
// when more than one property is requested.
type msbuildProperties struct {
	Properties map[string]string `json:"Properties"`
}

// requireDotnet returns the dotnet binary or skips the test.
func requireDotnet(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	dotnet, err := exec.LookPath("dotnet")
	if err != nil {
		t.Skip("dotnet not found on PATH")
	}
	return dotnet
}

// createTestProject writes a project tree and returns the project file path.
func createTestProject(t *testing.T, files map[string]string, projectFile string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return filepath.Join(dir, projectFile)
}

// runMSBuildGetProperty evaluates properties with the real MSBuild.
func runMSBuildGetProperty(t *testing.T, dotnet, projectPath string, globals map[string]string, names ...string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	args := []string{"msbuild", projectPath, "-nologo"}
	for _, name := range names {
		args = append(args, "-getProperty:"+name)
	}
	for k, v := range globals {
		args = append(args, fmt.Sprintf("-property:%s=%s", k, v))
	}

	cmd := exec.CommandContext(ctx, dotnet, args...)
	cmd.Dir = filepath.Dir(projectPath)
	cmd.Env = append(os.Environ(), "DOTNET_CLI_TELEMETRY_OPTOUT=1", "DOTNET_NOLOGO=1")

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("dotnet msbuild failed: %v\nStderr: %s\nStdout: %s", err, exitErr.Stderr, output)
		}
		return nil, fmt.Errorf("failed to run dotnet msbuild: %v", err)
	}
	t.Logf("dotnet msbuild raw output: %s", output)

	if len(names) == 1 {
		return map[string]string{names[0]: strings.TrimSpace(string(output))}, nil
	}
	var props msbuildProperties
	if err := json.Unmarshal(output, &props); err != nil {
		return nil, fmt.Errorf("failed to parse dotnet msbuild JSON: %v\nOutput: %s", err, output)
	}
	return props.Properties, nil
}

func compareProperties(t *testing.T, ours project.Project, theirs map[string]string) {
	t.Helper()
	for name, want := range theirs {
		got := ours.Property(name)
		if got != want {
			t.Errorf("%s = %q, dotnet msbuild says %q", name, got, want)
		}
	}
}

const sdkProject = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFrameworks>net8.0;net48</TargetFrameworks>
    <AssemblyName>Shop.Tests.Unit</AssemblyName>
  </PropertyGroup>
  <PropertyGroup Condition="'$(Configuration)' == 'Release'">
    <ShopFlavor>optimized</ShopFlavor>
  </PropertyGroup>
</Project>
`

func TestE2E_SDKProjectProperties(t *testing.T) {
	dotnet := requireDotnet(t)
	projectPath := createTestProject(t, map[string]string{
		"Shop.Tests/Shop.Tests.csproj": sdkProject,
	}, "Shop.Tests/Shop.Tests.csproj")

	for _, configuration := range []string{"Debug", "Release"} {
		t.Run(configuration, func(t *testing.T) {
			loader := project.NewLoader(project.WithConfiguration(configuration))
			ours, err := loader.Load(context.Background(), projectPath)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			theirs, err := runMSBuildGetProperty(t, dotnet, projectPath,
				map[string]string{"Configuration": configuration},
				"TargetFrameworks", "AssemblyName", "Configuration", "ShopFlavor")
			if err != nil {
				t.Fatalf("dotnet msbuild failed: %v", err)
			}
			compareProperties(t, ours, theirs)
		})
	}
}

func TestE2E_DirectoryBuildProps(t *testing.T) {
	dotnet := requireDotnet(t)
	projectPath := createTestProject(t, map[string]string{
		"Directory.Build.props": `<Project>
  <PropertyGroup>
    <TargetFrameworks>net8.0</TargetFrameworks>
    <RootNamespace>Shop</RootNamespace>
  </PropertyGroup>
</Project>
`,
		"tests/Shop.Tests/Shop.Tests.csproj": `<Project Sdk="Microsoft.NET.Sdk" />
`,
	}, "tests/Shop.Tests/Shop.Tests.csproj")

	ours, err := project.NewLoader().Load(context.Background(), projectPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	theirs, err := runMSBuildGetProperty(t, dotnet, projectPath, nil, "TargetFrameworks", "RootNamespace", "AssemblyName")
	if err != nil {
		t.Fatalf("dotnet msbuild failed: %v", err)
	}
	compareProperties(t, ours, theirs)
}

func TestE2E_AssemblyPathMatchesTargetPath(t *testing.T) {
	dotnet := requireDotnet(t)
	slnPath := createTestProject(t, map[string]string{
		"Shop.sln": "Microsoft Visual Studio Solution File, Format Version 12.00\n" +
			`Project("{9A19103F-16F7-4668-BE54-9A1E7A4F7556}") = "Shop.Tests", "Shop.Tests\Shop.Tests.csproj", "{00000000-0000-0000-0000-000000000000}"` +
			"\nEndProject\n",
		"Shop.Tests/Shop.Tests.csproj": sdkProject,
	}, "Shop.sln")
	projectPath := filepath.Join(filepath.Dir(slnPath), "Shop.Tests", "Shop.Tests.csproj")

	result, err := gotfm.Discover(context.Background(), slnPath, gotfm.WithSkipExistenceCheck(true))
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	for _, a := range result.Assemblies {
		theirs, err := runMSBuildGetProperty(t, dotnet, projectPath,
			map[string]string{"TargetFramework": a.Framework}, "TargetPath")
		if err != nil {
			t.Fatalf("dotnet msbuild failed: %v", err)
		}
		// MSBuild keeps backslash separators on some hosts.
		want := filepath.Clean(filepath.FromSlash(strings.ReplaceAll(theirs["TargetPath"], `\`, "/")))
		if a.Path != want {
			t.Errorf("%s assembly path = %q, dotnet msbuild TargetPath = %q", a.Framework, a.Path, want)
		}
	}
}
