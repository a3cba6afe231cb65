package moniker

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input        string
		wantFamily   Family
		wantVersion  Version
		wantPlatform Platform
		wantPlatVer  string
	}{
		// netcoreapp prefix
		{"netcoreapp3.1", ModernRuntime, Version{3, 1, -1}, Agnostic, ""},
		{"netcoreapp2.1", ModernRuntime, Version{2, 1, -1}, Agnostic, ""},
		{"netcoreapp2.1.5", ModernRuntime, Version{2, 1, 5}, Agnostic, ""},

		// netstandard prefix
		{"netstandard2.0", PortableStandard, Version{2, 0, -1}, Agnostic, ""},
		{"netstandard1.6", PortableStandard, Version{1, 6, -1}, Agnostic, ""},

		// classic framework: one component per digit, always Windows
		{"net48", LegacyFramework, Version{4, 8, -1}, Windows, ""},
		{"net472", LegacyFramework, Version{4, 7, 2}, Windows, ""},
		{"net40", LegacyFramework, Version{4, 0, -1}, Windows, ""},

		// unified runtime
		{"net5.0", ModernRuntime, Version{5, 0, -1}, Agnostic, ""},
		{"net6.0", ModernRuntime, Version{6, 0, -1}, Agnostic, ""},
		{"net8", ModernRuntime, Version{8, 0, -1}, Agnostic, ""},
		{"net5.0-windows", ModernRuntime, Version{5, 0, -1}, Windows, ""},
		{"net6.0-windows10.0.19041", ModernRuntime, Version{6, 0, -1}, Windows, "10.0.19041"},
		{"net7.0-Linux", ModernRuntime, Version{7, 0, -1}, Linux, ""},
		{"net6.0-android", ModernRuntime, Version{6, 0, -1}, Unknown, ""},
		{"net6.0-ios15.4", ModernRuntime, Version{6, 0, -1}, Unknown, "15.4"},

		// net3x does not start with the classic prefix and falls through to
		// the unified pattern.
		{"net35", ModernRuntime, Version{35, 0, -1}, Agnostic, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if m.Raw() != tt.input {
				t.Errorf("Raw() = %q, want %q", m.Raw(), tt.input)
			}
			if m.Family() != tt.wantFamily {
				t.Errorf("Family() = %v, want %v", m.Family(), tt.wantFamily)
			}
			if m.Version() != tt.wantVersion {
				t.Errorf("Version() = %+v, want %+v", m.Version(), tt.wantVersion)
			}
			if m.Platform() != tt.wantPlatform {
				t.Errorf("Platform() = %v, want %v", m.Platform(), tt.wantPlatform)
			}
			if m.PlatformVersion() != tt.wantPlatVer {
				t.Errorf("PlatformVersion() = %q, want %q", m.PlatformVersion(), tt.wantPlatVer)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	inputs := []string{
		"",
		"foo",
		"netcoreapp",
		"netcoreapp3",
		"netcoreapp3.x",
		"netcoreapp1.2.3.4",
		"netstandard",
		"netstandard2..0",
		"net4",
		"net4.8",
		"net4812",
		"net",
		"net6.",
		"net6.0-",
		"xnet6.0",
		"net6.0-windows10.0.19041-extra",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", input)
			}
			if !errors.Is(err, ErrMalformedIdentifier) {
				t.Errorf("errors.Is(err, ErrMalformedIdentifier) = false for %v", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Raw != input {
				t.Errorf("ParseError.Raw = %q, want %q", pe.Raw, input)
			}
		})
	}
}

func TestParseAll(t *testing.T) {
	ms, err := ParseAll([]string{"netcoreapp3.1", "net5.0", "net6.0"})
	if err != nil {
		t.Fatalf("ParseAll error = %v", err)
	}
	got := Raws(ms)
	want := []string{"netcoreapp3.1", "net5.0", "net6.0"}
	if len(got) != len(want) {
		t.Fatalf("ParseAll() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseAll()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := ParseAll([]string{"net6.0", "bogus"}); !errors.Is(err, ErrMalformedIdentifier) {
		t.Errorf("ParseAll with bad entry error = %v, want ErrMalformedIdentifier", err)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"net6.0", []string{"net6.0"}},
		{"netcoreapp3.1;net5.0;net6.0", []string{"netcoreapp3.1", "net5.0", "net6.0"}},
		{" net48 ; net6.0 ;", []string{"net48", "net6.0"}},
		{"", nil},
		{";;", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Split(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Split(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Split(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse(\"bogus\") did not panic")
		}
	}()
	MustParse("bogus")
}

func TestEqualUsesRawString(t *testing.T) {
	a := MustParse("net6.0")
	b := MustParse("net6")
	if a.Equal(b) {
		t.Error("net6.0 and net6 must not be Equal")
	}
	if Compare(a, b) != 0 {
		t.Errorf("Compare(net6.0, net6) = %d, want 0", Compare(a, b))
	}
	if !a.Equal(MustParse("net6.0")) {
		t.Error("identical raw strings must be Equal")
	}
}

func TestFamilyIdentifier(t *testing.T) {
	tests := []struct {
		family Family
		want   string
	}{
		{LegacyFramework, ".NETFramework"},
		{PortableStandard, ".NETStandard"},
		{ModernRuntime, ".NETCoreApp"},
		{UnifiedRuntime, ".NETCoreApp"},
	}
	for _, tt := range tests {
		t.Run(tt.family.String(), func(t *testing.T) {
			if got := tt.family.Identifier(); got != tt.want {
				t.Errorf("Identifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	if got := (Version{3, 1, -1}).String(); got != "3.1" {
		t.Errorf("String() = %q, want 3.1", got)
	}
	if got := (Version{4, 7, 2}).String(); got != "4.7.2" {
		t.Errorf("String() = %q, want 4.7.2", got)
	}
}

func TestFamilyShortName(t *testing.T) {
	if ModernRuntime.ShortName() != UnifiedRuntime.ShortName() {
		t.Error("ModernRuntime and UnifiedRuntime must share a short name")
	}
	if LegacyFramework.ShortName() >= ModernRuntime.ShortName() {
		t.Errorf("LegacyFramework %q must sort before ModernRuntime %q",
			LegacyFramework.ShortName(), ModernRuntime.ShortName())
	}
	if ModernRuntime.ShortName() >= PortableStandard.ShortName() {
		t.Errorf("ModernRuntime %q must sort before PortableStandard %q",
			ModernRuntime.ShortName(), PortableStandard.ShortName())
	}
}
