// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/mezuri/mezuri/internal/gitx"
	"github.com/mezuri/mezuri/pkg/declare"
	"github.com/mezuri/mezuri/pkg/spec"
)

// Generate extracts the component definition from definitionFile and writes
// the interface declaration, dependency list and definition locator into
// the spec, staging both files for the next commit. Methods are recorded
// sorted by name and dependencies sorted by their serialized form, so
// regenerating an unchanged definition leaves the spec byte-identical.
func (p *Publisher) Generate(extractor declare.Extractor, definitionFile string) error {
	root, s, err := p.loadSpec()
	if err != nil {
		return err
	}

	def, err := extractor.Extract(definitionFile)
	if err != nil {
		return err
	}

	absDefinition, err := filepath.Abs(definitionFile)
	if err != nil {
		return err
	}
	relDefinition, err := filepath.Rel(root, absDefinition)
	if err != nil {
		return fmt.Errorf("definition file %s is outside the component root %s: %w", definitionFile, root, err)
	}

	declaration, err := declarationFragment(def.Interface)
	if err != nil {
		return err
	}

	deps := make([]string, 0, len(def.Dependencies))
	for _, dep := range def.Dependencies {
		deps = append(deps, dep.Serialized())
	}
	sort.Strings(deps)

	s.IOPDeclaration = declaration
	s.Dependencies = deps
	s.Definition = &spec.Definition{File: relDefinition, Class: def.Class}
	if err := s.Save(filepath.Join(root, spec.Filename)); err != nil {
		return err
	}

	repo, err := gitx.Open(root, p.Author)
	if err != nil {
		return err
	}
	if err := repo.Stage(spec.Filename); err != nil {
		return err
	}
	if err := repo.Stage(relDefinition); err != nil {
		return err
	}

	p.logf("declaration generated", "definition", relDefinition, "methods", def.Interface.Len())
	return nil
}

// declarationFragment renders an interface descriptor into the spec file's
// iopDeclaration block: method name to {uri, query, output}, output fields
// in registration order.
func declarationFragment(iface *declare.Interface) (*spec.OrderedMap, error) {
	declaration := spec.NewOrderedMap()
	for _, method := range iface.Methods() {
		outputs := spec.NewOrderedMap()
		for _, field := range method.Outputs {
			if err := outputs.Set(field.Name, field.Type.Serialize()); err != nil {
				return nil, err
			}
		}

		entry := spec.NewOrderedMap()
		if err := entry.Set("uri", method.URI); err != nil {
			return nil, err
		}
		if err := entry.Set("query", method.Query); err != nil {
			return nil, err
		}
		if err := entry.Set("output", outputs); err != nil {
			return nil, err
		}

		if err := declaration.Set(method.Name, entry); err != nil {
			return nil, err
		}
	}
	return declaration, nil
}
