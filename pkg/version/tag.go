// SPDX-License-Identifier: MPL-2.0

package version

import (
	"fmt"
	"strings"
)

// TagNamespace is the prefix shared by every mezuri version tag. Git tags
// outside this namespace never belong to the component version history.
const TagNamespace = "mezuri"

type (
	// Tag names one published component version. Its string form is
	// "mezuri/<componentType>/<version>" and is the annotated git tag name
	// used as the distributed compare-and-swap primitive: creating or
	// pushing an already-existing tag is the authoritative conflict signal.
	//
	// ComponentName is carried for registry calls but is not part of the
	// tag string; a repository holds exactly one component, so the string
	// form stays unambiguous.
	Tag struct {
		ComponentType string
		ComponentName string
		Version       Version
	}
)

// ParseTag parses a "mezuri/<componentType>/<version>" tag string. It fails
// with a ParseError on any other shape, including foreign namespaces.
func ParseTag(s string) (Tag, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || parts[0] != TagNamespace || parts[1] == "" {
		return Tag{}, &ParseError{Value: s}
	}
	v, err := Parse(parts[2])
	if err != nil {
		return Tag{}, &ParseError{Value: s}
	}
	return Tag{ComponentType: parts[1], Version: v}, nil
}

// String returns the namespaced tag string.
func (t Tag) String() string {
	return fmt.Sprintf("%s/%s/%s", TagNamespace, t.ComponentType, t.Version)
}

// Compare orders tags by their version under the version total order.
func (t Tag) Compare(other Tag) int { return t.Version.Compare(other.Version) }

// Less reports whether t orders strictly before other.
func (t Tag) Less(other Tag) bool { return t.Compare(other) < 0 }

// WithIncrementedUpdateNum returns a copy of t pointing at the same
// major.minor.patch with the update counter bumped by one. Used for
// metadata-only republishing without minting a new semantic version.
func (t Tag) WithIncrementedUpdateNum() Tag {
	t.Version = t.Version.WithIncrementedUpdateNum()
	return t
}

// Latest returns the maximum tag, by version order, over a set of raw tag
// strings. Strings that do not parse as mezuri tags are ignored. The second
// return value is false when no parseable tag exists.
func Latest(raw []string) (Tag, bool) {
	var best Tag
	found := false
	for _, s := range raw {
		t, err := ParseTag(s)
		if err != nil {
			continue
		}
		if !found || best.Less(t) {
			best = t
			found = true
		}
	}
	return best, found
}
