package moniker

import (
	"cmp"
	"strconv"
	"strings"
)

// Family is the runtime family a moniker targets.
type Family int

const (
	// LegacyFramework is .NET Framework (net48 etc.), Windows only.
	LegacyFramework Family = iota
	// PortableStandard is .NET Standard, an API contract for other runtimes.
	PortableStandard
	// ModernRuntime is .NET Core and .NET 5+.
	ModernRuntime
	// UnifiedRuntime orders exactly like ModernRuntime. Parse never returns it.
	UnifiedRuntime
)

// Identifier returns the MSBuild TargetFrameworkIdentifier for the family.
func (f Family) Identifier() string {
	switch f {
	case LegacyFramework:
		return ".NETFramework"
	case PortableStandard:
		return ".NETStandard"
	case ModernRuntime, UnifiedRuntime:
		return ".NETCoreApp"
	default:
		return ""
	}
}

// ShortName returns the short framework identifier used in package folder
// names: "net", "netstandard" or "netcoreapp". ModernRuntime and
// UnifiedRuntime share "netcoreapp", which makes them a single rank in Compare.
func (f Family) ShortName() string {
	switch f {
	case LegacyFramework:
		return "net"
	case PortableStandard:
		return "netstandard"
	case ModernRuntime, UnifiedRuntime:
		return "netcoreapp"
	default:
		return ""
	}
}

func (f Family) String() string {
	switch f {
	case LegacyFramework:
		return "LegacyFramework"
	case PortableStandard:
		return "PortableStandard"
	case ModernRuntime:
		return "ModernRuntime"
	case UnifiedRuntime:
		return "UnifiedRuntime"
	default:
		return "Family(" + strconv.Itoa(int(f)) + ")"
	}
}

// Platform is the operating system a moniker targets. The declaration order
// is the ordering rank: Agnostic < Windows < Linux < Unknown.
type Platform int

const (
	Agnostic Platform = iota
	Windows
	Linux
	Unknown
)

func (p Platform) String() string {
	switch p {
	case Agnostic:
		return "Agnostic"
	case Windows:
		return "Windows"
	case Linux:
		return "Linux"
	case Unknown:
		return "Unknown"
	default:
		return "Platform(" + strconv.Itoa(int(p)) + ")"
	}
}

// lookupPlatform maps a platform suffix such as "windows" case-insensitively.
func lookupPlatform(name string) Platform {
	switch strings.ToLower(name) {
	case "windows":
		return Windows
	case "linux":
		return Linux
	default:
		return Unknown
	}
}

// Version is a framework version. Build is -1 when the moniker does not
// specify it.
type Version struct {
	Major int
	Minor int
	Build int
}

// HasBuild reports whether the build component was present.
func (v Version) HasBuild() bool { return v.Build >= 0 }

// Compare compares versions component-wise. An absent build compares as 0.
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, other.Minor); c != 0 {
		return c
	}
	return cmp.Compare(max(v.Build, 0), max(other.Build, 0))
}

// String returns "major.minor" or "major.minor.build".
func (v Version) String() string {
	s := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
	if v.HasBuild() {
		s += "." + strconv.Itoa(v.Build)
	}
	return s
}
