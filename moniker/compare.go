package moniker

import (
	"cmp"
	"slices"
	"strings"
)

// Compare orders monikers by family, then version, then platform.
// Returns -1 if a < b, 0 if they tie, 1 if a > b.
//
// Families compare by Family.ShortName lexicographically, so "net" (legacy
// framework) < "netcoreapp" < "netstandard". A tie does not imply Equal:
// "net6.0" and "net6" tie but are different monikers.
func Compare(a, b Moniker) int {
	if c := strings.Compare(a.family.ShortName(), b.family.ShortName()); c != 0 {
		return c
	}
	if c := a.version.Compare(b.version); c != 0 {
		return c
	}
	return cmp.Compare(a.platform, b.platform)
}

// Compare compares m with other. See the package-level Compare.
func (m Moniker) Compare(other Moniker) int {
	return Compare(m, other)
}

// Max returns the greatest moniker. Among tied maxima the first in input
// order wins. Returns false for an empty slice.
func Max(ms []Moniker) (Moniker, bool) {
	if len(ms) == 0 {
		return Moniker{}, false
	}
	best := ms[0]
	for _, m := range ms[1:] {
		if Compare(m, best) > 0 {
			best = m
		}
	}
	return best, true
}

// Sort sorts monikers in ascending order, keeping ties in input order.
func Sort(ms []Moniker) {
	slices.SortStableFunc(ms, Compare)
}

// Raws returns the raw strings of ms in order.
func Raws(ms []Moniker) []string {
	result := make([]string, len(ms))
	for i, m := range ms {
		result[i] = m.raw
	}
	return result
}
