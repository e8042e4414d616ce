// SPDX-License-Identifier: MPL-2.0

// Package declare models component interface declarations: the typed
// input/output/parameter metadata a component exposes. Declarations are
// assembled through an explicit Builder and serialize into the spec file's
// iopDeclaration block.
package declare

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidTypeSpec is the sentinel error wrapped by InvalidTypeSpecError.
var ErrInvalidTypeSpec = errors.New("invalid type spec")

type (
	// TypeSpec is a declared data type. Serialize returns the wire form
	// stored in the spec file: a bare string for base types, a two-element
	// array for composites.
	TypeSpec interface {
		Serialize() any
	}

	// BaseType is one of the scalar data types.
	BaseType string

	// ListType declares a homogeneous list.
	ListType struct {
		Element TypeSpec
	}

	// DictType declares a string-keyed mapping with a fixed value schema.
	DictType struct {
		Fields map[string]TypeSpec
	}

	// InterfaceRef references an interface component published in a
	// registry, pinned to a version.
	InterfaceRef struct {
		Registry string
		Name     string
		Version  string
	}

	// InvalidTypeSpecError is returned when a serialized type spec cannot
	// be decoded.
	InvalidTypeSpecError struct {
		Value string
	}
)

// Scalar type specs.
const (
	Int    BaseType = "INT"
	Bool   BaseType = "BOOL"
	Double BaseType = "DOUBLE"
	String BaseType = "STRING"
)

// Serialize returns the scalar's type name.
func (t BaseType) Serialize() any { return string(t) }

// List declares a list of element type.
func List(element TypeSpec) ListType { return ListType{Element: element} }

// Serialize returns ["LIST", <element>].
func (t ListType) Serialize() any {
	return []any{"LIST", t.Element.Serialize()}
}

// Dict declares a mapping with the given field schema.
func Dict(fields map[string]TypeSpec) DictType { return DictType{Fields: fields} }

// Serialize returns ["DICT", {field: <type>}]. JSON encoding sorts the
// field keys, keeping the wire form deterministic.
func (t DictType) Serialize() any {
	fields := make(map[string]any, len(t.Fields))
	for name, field := range t.Fields {
		fields[name] = field.Serialize()
	}
	return []any{"DICT", fields}
}

// Serialize returns ["INTERFACE", [registry, name, version]].
func (t InterfaceRef) Serialize() any {
	return []any{"INTERFACE", []any{t.Registry, t.Name, t.Version}}
}

// Error implements the error interface.
func (e *InvalidTypeSpecError) Error() string {
	return fmt.Sprintf("cannot decode type spec %s", e.Value)
}

// Unwrap returns ErrInvalidTypeSpec so callers can use errors.Is for programmatic detection.
func (e *InvalidTypeSpecError) Unwrap() error { return ErrInvalidTypeSpec }

// ParseTypeSpec decodes the wire form produced by Serialize.
func ParseTypeSpec(raw json.RawMessage) (TypeSpec, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		switch BaseType(name) {
		case Int, Bool, Double, String:
			return BaseType(name), nil
		}
		return nil, &InvalidTypeSpecError{Value: string(raw)}
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) != 2 {
		return nil, &InvalidTypeSpecError{Value: string(raw)}
	}
	var kind string
	if err := json.Unmarshal(parts[0], &kind); err != nil {
		return nil, &InvalidTypeSpecError{Value: string(raw)}
	}

	switch kind {
	case "LIST":
		element, err := ParseTypeSpec(parts[1])
		if err != nil {
			return nil, err
		}
		return List(element), nil
	case "DICT":
		var rawFields map[string]json.RawMessage
		if err := json.Unmarshal(parts[1], &rawFields); err != nil {
			return nil, &InvalidTypeSpecError{Value: string(raw)}
		}
		fields := make(map[string]TypeSpec, len(rawFields))
		for name, rawField := range rawFields {
			field, err := ParseTypeSpec(rawField)
			if err != nil {
				return nil, err
			}
			fields[name] = field
		}
		return Dict(fields), nil
	case "INTERFACE":
		var ref []string
		if err := json.Unmarshal(parts[1], &ref); err != nil || len(ref) != 3 {
			return nil, &InvalidTypeSpecError{Value: string(raw)}
		}
		return InterfaceRef{Registry: ref[0], Name: ref[1], Version: ref[2]}, nil
	}
	return nil, &InvalidTypeSpecError{Value: string(raw)}
}
