// SPDX-License-Identifier: MPL-2.0

package declare

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrNoDefinition is returned when a definition file yields no component
// definition.
var ErrNoDefinition = errors.New("no component definition")

type (
	// Definition is the extracted interface of a component: the class
	// implementing it, its declared methods and its component dependencies.
	Definition struct {
		Class        string
		Interface    *Interface
		Dependencies []Dependency
	}

	// Dependency names another published component this one depends on.
	Dependency struct {
		Registry      string `json:"registry"`
		ComponentType string `json:"componentType"`
		Name          string `json:"name"`
		Version       string `json:"version"`
	}

	// Extractor produces a component Definition from a definition file.
	// The concrete definition language is external to the publish protocol;
	// implementations only need to yield the opaque spec fragments.
	Extractor interface {
		Extract(definitionFile string) (*Definition, error)
	}

	// ManifestExtractor reads definitions from a JSON declaration manifest
	// placed next to the component definition: the headless stand-in for a
	// language-level declaration extractor.
	ManifestExtractor struct{}

	// manifestDoc is the JSON wire format of a declaration manifest.
	manifestDoc struct {
		Class        string                    `json:"class"`
		Methods      map[string]manifestMethod `json:"methods"`
		Dependencies []Dependency              `json:"dependencies,omitempty"`
	}

	manifestMethod struct {
		URI        string                     `json:"uri"`
		Query      string                     `json:"query"`
		Inputs     map[string]json.RawMessage `json:"inputs,omitempty"`
		Outputs    map[string]json.RawMessage `json:"outputs,omitempty"`
		Parameters map[string]json.RawMessage `json:"parameters,omitempty"`
	}
)

// Serialized returns the canonical JSON encoding of the dependency, the
// form stored in the spec file's dependency list.
func (d Dependency) Serialized() string {
	data, _ := json.Marshal(d) //nolint:errcheck // Struct of plain strings cannot fail to encode
	return string(data)
}

// Extract reads the declaration manifest at definitionFile and builds the
// component definition. It fails with ErrNoDefinition when the manifest has
// no class or no methods.
func (e *ManifestExtractor) Extract(definitionFile string) (*Definition, error) {
	data, err := os.ReadFile(definitionFile)
	if err != nil {
		return nil, fmt.Errorf("reading definition %s: %w", definitionFile, err)
	}

	var doc manifestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing definition %s: %w", definitionFile, err)
	}
	if doc.Class == "" || len(doc.Methods) == 0 {
		return nil, fmt.Errorf("%s: %w", definitionFile, ErrNoDefinition)
	}

	b := NewBuilder()
	for method, decl := range doc.Methods {
		b.Describe(method, decl.URI, decl.Query)
		for _, dir := range []struct {
			fields    map[string]json.RawMessage
			direction Direction
		}{
			{decl.Inputs, Input},
			{decl.Outputs, Output},
			{decl.Parameters, Parameter},
		} {
			for _, name := range sortedKeys(dir.fields) {
				t, err := ParseTypeSpec(dir.fields[name])
				if err != nil {
					return nil, fmt.Errorf("%s: method %s: field %s: %w", definitionFile, method, name, err)
				}
				if err := b.Register(method, name, t, dir.direction); err != nil {
					return nil, err
				}
			}
		}
	}

	return &Definition{
		Class:        doc.Class,
		Interface:    b.Build(),
		Dependencies: doc.Dependencies,
	}, nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
