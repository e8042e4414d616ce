// SPDX-License-Identifier: MPL-2.0

package declare

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownDirection is returned when a Direction value is not one of
	// Input, Output or Parameter.
	ErrUnknownDirection = errors.New("unknown declaration direction")
	// ErrDuplicateField is returned when the same (method, direction, name)
	// is registered twice.
	ErrDuplicateField = errors.New("duplicate declaration field")
)

// Direction classifies a declared field.
type Direction int

// Declaration directions.
const (
	Input Direction = iota
	Output
	Parameter
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case Parameter:
		return "parameter"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

type (
	// Field is one declared input, output or parameter.
	Field struct {
		Name string
		Type TypeSpec
	}

	// Method is the declared interface of one component method. Field
	// slices preserve registration order.
	Method struct {
		Name       string
		URI        string
		Query      string
		Inputs     []Field
		Outputs    []Field
		Parameters []Field
	}

	// Interface is an immutable interface descriptor: every method of a
	// component with its declared fields, methods sorted by name.
	Interface struct {
		methods []Method
	}

	// Builder accumulates declarations into an Interface. The zero value
	// is not usable; construct with NewBuilder.
	Builder struct {
		methods map[string]*Method
	}
)

// NewBuilder returns an empty declaration builder.
func NewBuilder() *Builder {
	return &Builder{methods: make(map[string]*Method)}
}

// Describe records the uri and query metadata of a method, creating the
// method if it is not yet known.
func (b *Builder) Describe(method, uri, query string) *Builder {
	m := b.method(method)
	m.URI = uri
	m.Query = query
	return b
}

// Register declares one field of a method. Fields keep registration order
// within their direction. Registering the same (method, direction, name)
// twice fails with ErrDuplicateField.
func (b *Builder) Register(method, name string, t TypeSpec, direction Direction) error {
	m := b.method(method)
	var fields *[]Field
	switch direction {
	case Input:
		fields = &m.Inputs
	case Output:
		fields = &m.Outputs
	case Parameter:
		fields = &m.Parameters
	default:
		return fmt.Errorf("registering %s.%s: %w", method, name, ErrUnknownDirection)
	}
	for _, f := range *fields {
		if f.Name == name {
			return fmt.Errorf("%s %s.%s: %w", direction, method, name, ErrDuplicateField)
		}
	}
	*fields = append(*fields, Field{Name: name, Type: t})
	return nil
}

// Build returns the immutable descriptor. The builder may keep accumulating
// afterwards; the returned Interface never changes.
func (b *Builder) Build() *Interface {
	names := make([]string, 0, len(b.methods))
	for name := range b.methods {
		names = append(names, name)
	}
	sort.Strings(names)

	methods := make([]Method, 0, len(names))
	for _, name := range names {
		m := *b.methods[name]
		m.Inputs = append([]Field(nil), m.Inputs...)
		m.Outputs = append([]Field(nil), m.Outputs...)
		m.Parameters = append([]Field(nil), m.Parameters...)
		methods = append(methods, m)
	}
	return &Interface{methods: methods}
}

func (b *Builder) method(name string) *Method {
	if m, ok := b.methods[name]; ok {
		return m
	}
	m := &Method{Name: name}
	b.methods[name] = m
	return m
}

// Methods returns the declared methods sorted by name.
func (i *Interface) Methods() []Method {
	return append([]Method(nil), i.methods...)
}

// Len returns the number of declared methods.
func (i *Interface) Len() int { return len(i.methods) }
