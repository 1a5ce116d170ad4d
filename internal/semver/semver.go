package semver

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a semantic version.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3.
type Version struct {
	v *mm.Version
}

// Constraint is a semantic version constraint.
//
// Examples:
// - ">=1.2.0 <2.0.0"
// - "^1.0.0"
// - "~1.4"
type Constraint struct {
	raw string
	c   *mm.Constraints
}

func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.Original()
}

func ParseConstraint(raw string) (Constraint, error) {
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return Constraint{}, fmt.Errorf("semver: parse constraint %q: %w", raw, err)
	}
	return Constraint{raw: raw, c: c}, nil
}

// ParseTagConstraint parses raw as a semver range and, when that fails,
// returns a constraint matching only the literal tag raw.
func ParseTagConstraint(raw string) Constraint {
	if c, err := ParseConstraint(raw); err == nil {
		return c
	}
	return Constraint{raw: strings.TrimSpace(raw)}
}

func MustParseConstraint(raw string) Constraint {
	c, err := ParseConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Constraint) String() string {
	return c.raw
}

func Satisfies(v Version, c Constraint) bool {
	if v.v == nil || c.c == nil {
		return false
	}
	return c.c.Check(v.v)
}

// SatisfiesTag reports whether the raw tag satisfies c.
//
// Tags that are not valid semantic versions only satisfy wildcard
// constraints or constraints that name them exactly ("=tag" or "tag").
func SatisfiesTag(tag string, c Constraint) bool {
	if v, err := ParseVersion(tag); err == nil && c.c != nil {
		return Satisfies(v, c)
	}
	raw := strings.TrimSpace(c.raw)
	switch raw {
	case "", "*", "x", "X":
		return true
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "=")) == tag
}

// Compare compares a and b, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
func Compare(a, b Version) int {
	if a.v == nil && b.v == nil {
		return 0
	}
	if a.v == nil {
		return -1
	}
	if b.v == nil {
		return 1
	}
	return a.v.Compare(b.v)
}

// CompareTags orders two raw version labels.
//
// Every pair goes through the same segment comparison so the order stays
// total across tag families ("1.0.0", "1.7.10.1291", "r52", "1.0.0-rc1").
// Digit runs compare numerically, other runs compare as text and sort below
// numbers, and a missing trailing segment counts as 0. Build metadata after
// "+" is ignored.
func CompareTags(a, b string) int {
	return compareSegments(splitSegments(a), splitSegments(b))
}

// MaxSatisfying returns the highest version in candidates that satisfies c.
//
// If multiple versions are equal, the first encountered wins.
func MaxSatisfying(c Constraint, candidates []Version) (Version, bool) {
	var best Version
	found := false
	for _, candidate := range candidates {
		if !Satisfies(candidate, c) {
			continue
		}
		if !found || Compare(candidate, best) > 0 {
			best = candidate
			found = true
		}
	}
	return best, found
}

func splitSegments(raw string) []segment {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if i := strings.IndexByte(raw, '+'); i >= 0 {
		raw = raw[:i]
	}
	var out []segment
	var cur strings.Builder
	digits := false
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		seg := segment{text: cur.String()}
		if digits {
			if n, err := strconv.ParseUint(seg.text, 10, 64); err == nil {
				seg.num, seg.numeric = n, true
			}
		}
		out = append(out, seg)
		cur.Reset()
	}
	for _, r := range raw {
		if r == '.' || r == '-' || r == '_' {
			flush()
			continue
		}
		isDigit := unicode.IsDigit(r)
		if cur.Len() > 0 && isDigit != digits {
			flush()
		}
		digits = isDigit
		cur.WriteRune(r)
	}
	flush()
	return out
}

// segment is one run of a tag: numeric runs carry their value.
type segment struct {
	text    string
	num     uint64
	numeric bool
}

// zeroSegment pads the shorter side.
var zeroSegment = segment{text: "0", numeric: true}

func compareSegments(a, b []segment) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		sa, sb := zeroSegment, zeroSegment
		if i < len(a) {
			sa = a[i]
		}
		if i < len(b) {
			sb = b[i]
		}
		if c := compareSegment(sa, sb); c != 0 {
			return c
		}
	}
	return 0
}

func compareSegment(a, b segment) int {
	switch {
	case a.numeric && b.numeric:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case a.numeric:
		// numeric segments sort after textual ones ("1.0.rc" < "1.0.1")
		return 1
	case b.numeric:
		return -1
	}
	return strings.Compare(a.text, b.text)
}
