// SPDX-License-Identifier: MPL-2.0

package declare

import (
	"errors"
	"testing"
)

func TestBuilderBuild(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.Describe("fetch", "https://example.com/data", "q=weather")
	if err := b.Register("fetch", "rows", List(Dict(map[string]TypeSpec{"temp": Double})), Output); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := b.Register("fetch", "station", String, Parameter); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	b.Describe("aggregate", "", "")
	if err := b.Register("aggregate", "rows", List(Double), Input); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := b.Register("aggregate", "mean", Double, Output); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	iface := b.Build()
	if iface.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", iface.Len())
	}

	methods := iface.Methods()
	if methods[0].Name != "aggregate" || methods[1].Name != "fetch" {
		t.Errorf("Methods() order = %q, %q; want aggregate, fetch", methods[0].Name, methods[1].Name)
	}
	if methods[1].URI != "https://example.com/data" || methods[1].Query != "q=weather" {
		t.Errorf("fetch metadata = %q %q", methods[1].URI, methods[1].Query)
	}
	if len(methods[1].Outputs) != 1 || methods[1].Outputs[0].Name != "rows" {
		t.Errorf("fetch outputs = %+v, want one field rows", methods[1].Outputs)
	}
	if len(methods[0].Inputs) != 1 || len(methods[0].Outputs) != 1 {
		t.Errorf("aggregate fields = %+v", methods[0])
	}
}

func TestBuilderFieldOrderPreserved(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := b.Register("m", name, Int, Output); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}
	}

	outputs := b.Build().Methods()[0].Outputs
	want := []string{"zeta", "alpha", "mid"}
	for i, field := range outputs {
		if field.Name != want[i] {
			t.Errorf("Outputs[%d] = %q, want %q", i, field.Name, want[i])
		}
	}
}

func TestBuilderDuplicateField(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	if err := b.Register("m", "x", Int, Input); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	// Same name in another direction is fine.
	if err := b.Register("m", "x", Int, Output); err != nil {
		t.Fatalf("Register() other direction error = %v", err)
	}
	if err := b.Register("m", "x", Bool, Input); !errors.Is(err, ErrDuplicateField) {
		t.Errorf("Register() duplicate error = %v, want ErrDuplicateField", err)
	}
}

func TestBuilderUnknownDirection(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	if err := b.Register("m", "x", Int, Direction(99)); !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("Register() error = %v, want ErrUnknownDirection", err)
	}
}

func TestBuildIsImmutable(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	if err := b.Register("m", "x", Int, Output); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	iface := b.Build()

	if err := b.Register("m", "y", Int, Output); err != nil {
		t.Fatalf("Register() after Build() error = %v", err)
	}
	if got := len(iface.Methods()[0].Outputs); got != 1 {
		t.Errorf("earlier Build() sees %d outputs, want 1", got)
	}
}
