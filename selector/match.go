package selector

import (
	"strings"

	"github.com/albertocavalcante/go-tfm/moniker"
)

// Match returns the framework in candidates that best corresponds to
// reference, usually a framework of a related project.
//
// In order of precedence:
//  1. A candidate with the same raw string.
//  2. For a PortableStandard reference, the greatest candidate of any family:
//     a standard library is consumable by every concrete runtime.
//  3. The highest-versioned candidate of the same family and major version,
//     at or above the reference version, that is platform agnostic or targets
//     the reference platform. Among equal versions the last candidate wins.
//
// Returns false when no candidate qualifies.
func Match(reference moniker.Moniker, candidates []moniker.Moniker) (moniker.Moniker, bool) {
	for _, c := range candidates {
		if c.Equal(reference) {
			return c, true
		}
	}

	if reference.Family() == moniker.PortableStandard {
		return moniker.Max(candidates)
	}

	var best moniker.Moniker
	found := false
	for _, c := range candidates {
		if !compatible(reference, c) {
			continue
		}
		if !found || c.Version().Compare(best.Version()) >= 0 {
			best = c
			found = true
		}
	}
	return best, found
}

func compatible(reference, c moniker.Moniker) bool {
	if c.Family() != reference.Family() {
		return false
	}
	if c.Version().Major != reference.Version().Major {
		return false
	}
	if c.Version().Compare(reference.Version()) < 0 {
		return false
	}
	return c.Platform() == moniker.Agnostic || c.Platform() == reference.Platform()
}

// FindApplication returns the index of the single name equal to baseName,
// ignoring case. It fails with a *BaseProjectError when none or several match.
func FindApplication(baseName string, names []string) (int, error) {
	index := -1
	var matches []string
	for i, name := range names {
		if strings.EqualFold(name, baseName) {
			if index < 0 {
				index = i
			}
			matches = append(matches, name)
		}
	}
	if len(matches) != 1 {
		return -1, &BaseProjectError{Name: baseName, Matches: matches}
	}
	return index, nil
}
