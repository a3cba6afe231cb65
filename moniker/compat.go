package moniker

// Compatible reports whether a project targeting target can reference an
// assembly built for candidate. Within a family the candidate must not be
// newer and must be platform neutral or share the target's platform.
// A netstandard candidate is accepted by every runtime implementing that
// version of the standard.
func Compatible(target, candidate Moniker) bool {
	if target.family.ShortName() == candidate.family.ShortName() {
		if candidate.version.Compare(target.version) > 0 {
			return false
		}
		return candidate.platform == Agnostic || candidate.platform == target.platform
	}
	if candidate.family != PortableStandard {
		return false
	}
	supported, ok := standardSupport(target)
	return ok && candidate.version.Compare(supported) <= 0
}

// standardSupport returns the highest netstandard version a runtime
// implements.
func standardSupport(m Moniker) (Version, bool) {
	v := m.version
	switch m.family {
	case ModernRuntime, UnifiedRuntime:
		switch {
		case v.Major >= 3:
			return Version{Major: 2, Minor: 1, Build: -1}, true
		case v.Major == 2:
			return Version{Major: 2, Minor: 0, Build: -1}, true
		default:
			return Version{Major: 1, Minor: 6, Build: -1}, true
		}
	case LegacyFramework:
		switch {
		case v.Compare(Version{Major: 4, Minor: 6, Build: 1}) >= 0:
			return Version{Major: 2, Minor: 0, Build: -1}, true
		case v.Compare(Version{Major: 4, Minor: 6, Build: 0}) >= 0:
			return Version{Major: 1, Minor: 3, Build: -1}, true
		case v.Compare(Version{Major: 4, Minor: 5, Build: 1}) >= 0:
			return Version{Major: 1, Minor: 2, Build: -1}, true
		case v.Compare(Version{Major: 4, Minor: 5, Build: 0}) >= 0:
			return Version{Major: 1, Minor: 1, Build: -1}, true
		}
	}
	return Version{}, false
}
