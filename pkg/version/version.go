// SPDX-License-Identifier: MPL-2.0

// Package version implements the mezuri component version model: ordered
// semantic versions with an optional update counter, and the namespaced
// version tags that name published component versions in git.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrParse is the sentinel error wrapped by ParseError.
var ErrParse = errors.New("version parse error")

// versionRegex matches "MAJOR.MINOR.PATCH" with an optional fourth
// ".UPDATE" component (e.g., "1.0.0", "1.0.0.2").
var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:\.(\d+))?$`)

type (
	// Version is a component version. Versions order lexicographically on
	// the (Major, Minor, Patch, Update) tuple. Update is the metadata-only
	// republish counter; it defaults to 0 and is omitted from the string
	// form when zero, so Parse(v.String()) == v always holds.
	Version struct {
		Major  int
		Minor  int
		Patch  int
		Update int
	}

	// ParseError is returned when a string does not match the version or
	// version tag grammar.
	ParseError struct {
		Value string
	}
)

// Zero is the version new components start from.
var Zero = Version{}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as a version", e.Value)
}

// Unwrap returns ErrParse so callers can use errors.Is for programmatic detection.
func (e *ParseError) Unwrap() error { return ErrParse }

// Parse parses a version string. It fails with a ParseError if the string
// does not match the version grammar.
func Parse(s string) (Version, error) {
	matches := versionRegex.FindStringSubmatch(s)
	if matches == nil {
		return Version{}, &ParseError{Value: s}
	}

	var v Version
	var err error
	if v.Major, err = strconv.Atoi(matches[1]); err != nil {
		return Version{}, &ParseError{Value: s}
	}
	if v.Minor, err = strconv.Atoi(matches[2]); err != nil {
		return Version{}, &ParseError{Value: s}
	}
	if v.Patch, err = strconv.Atoi(matches[3]); err != nil {
		return Version{}, &ParseError{Value: s}
	}
	if matches[4] != "" {
		if v.Update, err = strconv.Atoi(matches[4]); err != nil {
			return Version{}, &ParseError{Value: s}
		}
	}
	return v, nil
}

// String returns the canonical string form. The update counter is only
// emitted when non-zero.
func (v Version) String() string {
	if v.Update == 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Update)
}

// Compare returns -1, 0 or 1 according to the total order over the
// (Major, Minor, Patch, Update) tuple.
func (v Version) Compare(other Version) int {
	for _, pair := range [4][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
		{v.Update, other.Update},
	} {
		if pair[0] < pair[1] {
			return -1
		}
		if pair[0] > pair[1] {
			return 1
		}
	}
	return 0
}

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

// MarshalJSON encodes the version as its canonical JSON string.
func (v Version) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(v.String())), nil
}

// UnmarshalJSON decodes a JSON string through Parse, so invalid version
// strings fail with a ParseError.
func (v *Version) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return &ParseError{Value: string(data)}
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// WithIncrementedUpdateNum returns a copy of v with the update counter
// bumped by one. The semantic version (major.minor.patch) is unchanged.
func (v Version) WithIncrementedUpdateNum() Version {
	v.Update++
	return v
}
