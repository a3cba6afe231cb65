// Package moniker parses and orders .NET target framework monikers (TFMs).
//
// A moniker is the string a project declares in its TargetFramework or
// TargetFrameworks property, e.g. "net48", "netstandard2.0", "netcoreapp3.1"
// or "net6.0-windows10.0.19041". Parse turns one such string into a value with
// a family, a version and a platform. Two monikers are equal only when their
// raw strings are equal.
//
// Recognized shapes, tried in order:
//
//	netcoreapp<major>.<minor>[.<build>]        ModernRuntime
//	netstandard<major>.<minor>[.<build>]       PortableStandard
//	net4<d><d>[<d>]                            LegacyFramework, always Windows
//	net<major>[.<minor>][-<platform>[<ver>]]   ModernRuntime
package moniker

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

const (
	coreAppPrefix  = "netcoreapp"
	standardPrefix = "netstandard"
	classicPrefix  = "net4"
)

// unifiedPattern matches net5.0 and later, with an optional platform suffix.
var unifiedPattern = regexp.MustCompile(
	`^net(?P<major>\d+)(?:\.(?P<minor>\d+))?(?:-(?P<platform>[A-Za-z]+)(?P<platformversion>\d+(?:\.\d+)*)?)?$`,
)

var (
	majorIndex           = unifiedPattern.SubexpIndex("major")
	minorIndex           = unifiedPattern.SubexpIndex("minor")
	platformIndex        = unifiedPattern.SubexpIndex("platform")
	platformVersionIndex = unifiedPattern.SubexpIndex("platformversion")
)

// ErrMalformedIdentifier is matched by every ParseError.
var ErrMalformedIdentifier = errors.New("malformed target framework")

// ParseError reports a raw string that is not a recognized moniker.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return "unsupported target framework " + strconv.Quote(e.Raw) + ": " + e.Reason
}

// Is reports whether target is ErrMalformedIdentifier.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedIdentifier
}

// Moniker is an immutable, parsed target framework moniker.
type Moniker struct {
	raw             string
	family          Family
	version         Version
	platform        Platform
	platformVersion string
}

// Parse parses a raw moniker string.
func Parse(raw string) (Moniker, error) {
	if raw == "" {
		return Moniker{}, &ParseError{Raw: raw, Reason: "empty string"}
	}

	switch {
	case strings.HasPrefix(raw, coreAppPrefix):
		v, err := parseDotted(raw, raw[len(coreAppPrefix):])
		if err != nil {
			return Moniker{}, err
		}
		return Moniker{raw: raw, family: ModernRuntime, version: v, platform: Agnostic}, nil

	case strings.HasPrefix(raw, standardPrefix):
		v, err := parseDotted(raw, raw[len(standardPrefix):])
		if err != nil {
			return Moniker{}, err
		}
		return Moniker{raw: raw, family: PortableStandard, version: v, platform: Agnostic}, nil

	case strings.HasPrefix(raw, classicPrefix):
		v, err := parseDigits(raw, raw[len("net"):])
		if err != nil {
			return Moniker{}, err
		}
		return Moniker{raw: raw, family: LegacyFramework, version: v, platform: Windows}, nil
	}

	match := unifiedPattern.FindStringSubmatch(raw)
	if match == nil {
		return Moniker{}, &ParseError{Raw: raw, Reason: "does not match any known framework pattern"}
	}

	major, err := strconv.Atoi(match[majorIndex])
	if err != nil {
		return Moniker{}, &ParseError{Raw: raw, Reason: "major version out of range"}
	}
	minor := 0
	if match[minorIndex] != "" {
		if minor, err = strconv.Atoi(match[minorIndex]); err != nil {
			return Moniker{}, &ParseError{Raw: raw, Reason: "minor version out of range"}
		}
	}

	platform := Agnostic
	if match[platformIndex] != "" {
		platform = lookupPlatform(match[platformIndex])
	}

	return Moniker{
		raw:             raw,
		family:          ModernRuntime,
		version:         Version{Major: major, Minor: minor, Build: -1},
		platform:        platform,
		platformVersion: match[platformVersionIndex],
	}, nil
}

// MustParse is like Parse but panics on error. Use only for constants/tests.
func MustParse(raw string) Moniker {
	m, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseAll parses every raw string, preserving order. It stops at the first
// malformed entry.
func ParseAll(raws []string) ([]Moniker, error) {
	result := make([]Moniker, 0, len(raws))
	for _, raw := range raws {
		m, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

// Split splits a semicolon-delimited TargetFrameworks value. Entries are
// trimmed and empty entries dropped.
func Split(list string) []string {
	var result []string
	for _, part := range strings.Split(list, ";") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// Raw returns the string the moniker was parsed from.
func (m Moniker) Raw() string { return m.raw }

// Family returns the framework family.
func (m Moniker) Family() Family { return m.family }

// Version returns the framework version.
func (m Moniker) Version() Version { return m.version }

// Platform returns the target platform.
func (m Moniker) Platform() Platform { return m.platform }

// PlatformVersion returns the version suffix after the platform name, e.g.
// "10.0.19041" for "net6.0-windows10.0.19041". Empty when absent.
func (m Moniker) PlatformVersion() string { return m.platformVersion }

// String returns the raw moniker.
func (m Moniker) String() string { return m.raw }

// Equal reports whether both monikers were parsed from the same string.
func (m Moniker) Equal(other Moniker) bool { return m.raw == other.raw }

// parseDotted parses "3.1" or "2.0.3" style versions.
func parseDotted(raw, s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, &ParseError{Raw: raw, Reason: "version must have two or three components"}
	}

	nums := [3]int{0, 0, -1}
	for i, part := range parts {
		n, err := parseComponent(part)
		if err != nil {
			return Version{}, &ParseError{Raw: raw, Reason: "invalid version component " + strconv.Quote(part)}
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Build: nums[2]}, nil
}

// parseDigits parses classic framework versions where each character is one
// component: "48" is 4.8, "472" is 4.7.2.
func parseDigits(raw, s string) (Version, error) {
	if len(s) < 2 || len(s) > 3 {
		return Version{}, &ParseError{Raw: raw, Reason: "version must have two or three digits"}
	}

	nums := [3]int{0, 0, -1}
	for i, r := range s {
		if r < '0' || r > '9' {
			return Version{}, &ParseError{Raw: raw, Reason: "invalid version digit " + strconv.QuoteRune(r)}
		}
		nums[i] = int(r - '0')
	}
	return Version{Major: nums[0], Minor: nums[1], Build: nums[2]}, nil
}

func parseComponent(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}
