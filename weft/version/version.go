// Package version implements semantic versions and version-range predicates
// for weft package dependencies.
//
// A [Version] is MAJOR.MINOR.PATCH with optional pre-release and build
// metadata, per semver.org. A [Range] is the predicate syntax used at `use`
// sites: exact versions, `^1.2`, `~1.2.3`, `>=1.2,<2` (comma is AND), and
// `*` (any version). Comparison is delegated to [golang.org/x/mod/semver],
// which already implements full semver precedence; this package supplies
// the "v"-prefixed version strings it expects and the range grammar, which
// semver does not have an equivalent of.
package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a parsed, canonical semantic version.
type Version struct {
	raw string // canonical form, always starting with "v"
}

// Parse parses s (with or without a leading "v") as a semantic version.
func Parse(s string) (Version, error) {
	v := s
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	return Version{raw: v}, nil
}

// MustParse is like Parse but panics on error; intended for literals in
// tests and fixtures.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version without its synthetic "v" prefix, e.g.
// "1.2.3" or "1.2.3-rc.1+build".
func (v Version) String() string {
	if v.raw == "" {
		return ""
	}
	return v.raw[1:]
}

// IsZero reports whether v is the unset zero value.
func (v Version) IsZero() bool { return v.raw == "" }

// Compare returns -1, 0, or +1 comparing v to w per semver precedence
// (pre-release versions sort before their release, build metadata is
// ignored).
func (v Version) Compare(w Version) int {
	return semver.Compare(v.raw, w.raw)
}

// Major returns the "vN" major-version prefix, used by callers that want
// Go-module-style major-version compatibility grouping; weft itself does
// not require paths to encode their major version.
func (v Version) Major() string {
	return semver.Major(v.raw)
}
