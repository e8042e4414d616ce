// SPDX-License-Identifier: MPL-2.0

// Package spec reads and writes the component specification file that
// accompanies every mezuri component in its repository. The file is JSON
// with stable key order; it is both the publisher's local state and the
// document the registry extracts during verification.
package spec

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mezuri/mezuri/pkg/version"
)

// Filename is the spec file name at a component's repository root.
const Filename = "specification.json"

// ErrNotFound is returned when no spec file exists at or above a directory.
var ErrNotFound = errors.New("specification not found")

type (
	// Spec is the component specification. Field order here is the key
	// order of the serialized file.
	Spec struct {
		Name           string          `json:"name"`
		ComponentType  string          `json:"componentType"`
		Description    string          `json:"description"`
		Version        version.Version `json:"version"`
		IOPDeclaration *OrderedMap     `json:"iopDeclaration,omitempty"`
		Dependencies   []string        `json:"dependencies,omitempty"`
		Definition     *Definition     `json:"definition,omitempty"`
		Publish        *Publish        `json:"publish,omitempty"`
	}

	// Definition locates the component's definition inside its repository.
	Definition struct {
		File  string `json:"file"`
		Class string `json:"class"`
	}

	// Publish records where the component was first published: the git
	// remote the history is pushed to and the registry that indexes it.
	Publish struct {
		Remote   Remote `json:"remote"`
		Registry string `json:"registry"`
	}

	// Remote is a named git remote.
	Remote struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
)

// New returns the initial spec for a freshly initialized component.
func New(componentType string) *Spec {
	return &Spec{
		ComponentType: componentType,
		Version:       version.Zero,
	}
}

// HasDeclaration reports whether an interface declaration has been
// generated into the spec.
func (s *Spec) HasDeclaration() bool {
	return s.IOPDeclaration != nil && s.IOPDeclaration.Len() > 0
}

// Load reads and parses the spec file at path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the spec to path with stable formatting. Writing an unchanged
// spec produces byte-identical output.
func (s *Spec) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding spec: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// FindRoot walks upward from dir looking for a directory containing the
// spec file. It fails with ErrNotFound when the filesystem root is reached
// without a match.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, Filename)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}
