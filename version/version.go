// Package version provides artifact version parsing and comparison.
//
// Versions follow the Maven-style dotted-numeric-with-qualifier grammar:
// an arbitrary run of dot-separated numeric tokens, optionally followed by
// "-qualifier" and "+metadata" suffixes, e.g. "1.2.3", "1.0.0-beta-2",
// "2.5.3.1", "1.0-SNAPSHOT". Numeric tokens compare numerically; qualifier
// tokens compare by the well-known release-quality ordering (alpha < beta <
// milestone < rc/cr < snapshot < "" (release) < sp). An unrecognized
// qualifier ranks after rc/cr and before snapshot; two unrecognized
// qualifiers compare lexically, ignoring case.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed, comparable artifact version.
type Version struct {
	// Major, Minor, Patch are the first three numeric tokens (0 if absent).
	Major int
	Minor int
	Patch int

	// Revision is a fourth numeric token, used by legacy 4-part versions
	// (Major.Minor.Patch.Revision).
	Revision    int
	HasRevision bool

	// Qualifier is the release-label tail, e.g. "beta-2" or "SNAPSHOT" in
	// "1.0.0-beta-2" / "1.0-SNAPSHOT". Empty for a plain release version.
	Qualifier string

	// Metadata is build metadata (e.g. "20241019" in "+20241019"), ignored
	// in comparison.
	Metadata string

	original string
}

// Parse parses a version string into a Version.
func Parse(s string) (*Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("version cannot be empty")
	}

	core := trimmed
	metadata := ""
	if idx := strings.IndexByte(core, '+'); idx >= 0 {
		metadata = core[idx+1:]
		core = core[:idx]
	}

	qualifier := ""
	numericPart := core
	if idx := strings.IndexByte(core, '-'); idx >= 0 {
		numericPart = core[:idx]
		qualifier = core[idx+1:]
	}

	fields := strings.Split(numericPart, ".")
	if len(fields) == 0 || fields[0] == "" {
		return nil, fmt.Errorf("invalid version %q: no numeric component", s)
	}

	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums = append(nums, n)
	}

	v := &Version{Qualifier: qualifier, Metadata: metadata, original: trimmed}
	if len(nums) > 0 {
		v.Major = nums[0]
	}
	if len(nums) > 1 {
		v.Minor = nums[1]
	}
	if len(nums) > 2 {
		v.Patch = nums[2]
	}
	if len(nums) > 3 {
		v.Revision = nums[3]
		v.HasRevision = true
	}

	return v, nil
}

// MustParse parses s and panics on error. For use with known-good literals.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original parsed string, falling back to a normalized
// rendering for synthetically-constructed Versions.
func (v *Version) String() string {
	if v.original != "" {
		return v.original
	}
	return v.ToNormalizedString()
}

// ToNormalizedString renders the canonical form: no leading zeros, a fixed
// three (or four, if HasRevision) numeric fields, "-qualifier" and
// "+metadata" suffixes only when present.
func (v *Version) ToNormalizedString() string {
	var s string
	if v.HasRevision {
		s = fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Revision)
	} else {
		s = fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Qualifier != "" {
		s += "-" + v.Qualifier
	}
	if v.Metadata != "" {
		s += "+" + v.Metadata
	}
	return s
}

var qualifierRank = map[string]int{
	"alpha":     0,
	"a":         0,
	"beta":      1,
	"b":         1,
	"milestone": 2,
	"m":         2,
	"rc":        3,
	"cr":        3,
	"snapshot":  4,
	"":          5, // release
	"sp":        6,
}

// rankQualifier returns (rank, ok) for a recognized qualifier keyword. The
// qualifier may carry a trailing numeric tie-breaker (e.g. "beta-2"); only
// the leading word is looked up.
func rankQualifier(q string) (int, bool) {
	word := strings.ToLower(q)
	if idx := strings.IndexAny(word, "-."); idx >= 0 {
		word = word[:idx]
	}
	r, ok := qualifierRank[word]
	return r, ok
}

func compareQualifiers(a, b string) int {
	if a == b {
		return 0
	}
	ra, aok := rankQualifier(a)
	rb, bok := rankQualifier(b)
	switch {
	case aok && bok:
		if ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	case aok && !bok:
		unknownRank := qualifierRank["snapshot"]
		if ra < unknownRank {
			return -1
		}
		return 1
	case !aok && bok:
		return -compareQualifiers(b, a)
	default:
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other. Build metadata never participates.
func (v *Version) Compare(other *Version) int {
	if other == nil {
		return 1
	}
	if d := v.Major - other.Major; d != 0 {
		return sign(d)
	}
	if d := v.Minor - other.Minor; d != 0 {
		return sign(d)
	}
	if d := v.Patch - other.Patch; d != 0 {
		return sign(d)
	}
	if d := v.Revision - other.Revision; d != 0 {
		return sign(d)
	}
	return compareQualifiers(v.Qualifier, other.Qualifier)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// Equal reports whether v and other compare equal.
func (v *Version) Equal(other *Version) bool { return v.Compare(other) == 0 }

// GreaterThan reports whether v sorts strictly after other.
func (v *Version) GreaterThan(other *Version) bool { return v.Compare(other) > 0 }

// LessThan reports whether v sorts strictly before other.
func (v *Version) LessThan(other *Version) bool { return v.Compare(other) < 0 }

// IsPrerelease reports whether v carries a non-release qualifier.
func (v *Version) IsPrerelease() bool {
	return v.Qualifier != "" && strings.ToLower(v.Qualifier) != "sp"
}
