// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestMemoryStoreCreateOperator(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if err := s.CreateOperator(Operator{Name: "weather", GitRemoteURL: "/tmp/weather"}); err != nil {
		t.Fatalf("CreateOperator() error = %v", err)
	}

	op, err := s.GetOperator("weather")
	if err != nil {
		t.Fatalf("GetOperator() error = %v", err)
	}
	if op.Name != "weather" || op.GitRemoteURL != "/tmp/weather" {
		t.Errorf("GetOperator() = %+v", op)
	}
	if op.Versions == nil || len(op.Versions) != 0 {
		t.Errorf("Versions = %v, want empty non-nil list", op.Versions)
	}

	// A taken name leaves the original record untouched.
	err = s.CreateOperator(Operator{Name: "weather", GitRemoteURL: "/tmp/other"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("CreateOperator() duplicate error = %v, want ErrConflict", err)
	}
	op, _ = s.GetOperator("weather")
	if op.GitRemoteURL != "/tmp/weather" {
		t.Errorf("GitRemoteURL after conflict = %q, want original", op.GitRemoteURL)
	}
}

func TestMemoryStoreGetOperatorNotFound(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if _, err := s.GetOperator("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetOperator() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreGetOperatorReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if err := s.CreateOperator(Operator{Name: "weather", GitRemoteURL: "/tmp/weather"}); err != nil {
		t.Fatalf("CreateOperator() error = %v", err)
	}
	if err := s.AppendVersion(OperatorVersion{OperatorName: "weather", Version: "0.1.0", Hash: "a", Spec: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("AppendVersion() error = %v", err)
	}

	op, _ := s.GetOperator("weather")
	op.Versions[0] = "tampered"

	fresh, _ := s.GetOperator("weather")
	if fresh.Versions[0] != "0.1.0" {
		t.Errorf("store mutated through returned copy: %v", fresh.Versions)
	}
}

func TestMemoryStoreAppendVersion(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if err := s.CreateOperator(Operator{Name: "weather", GitRemoteURL: "/tmp/weather"}); err != nil {
		t.Fatalf("CreateOperator() error = %v", err)
	}

	rec := OperatorVersion{OperatorName: "weather", Version: "0.1.0", Hash: "a", Spec: json.RawMessage(`{"name": "weather"}`)}
	if err := s.AppendVersion(rec); err != nil {
		t.Fatalf("AppendVersion() error = %v", err)
	}

	// Unknown operator: nothing recorded.
	err := s.AppendVersion(OperatorVersion{OperatorName: "absent", Version: "0.1.0"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AppendVersion(absent) error = %v, want ErrNotFound", err)
	}

	// Duplicate version: list and records unchanged.
	err = s.AppendVersion(OperatorVersion{OperatorName: "weather", Version: "0.1.0", Hash: "b"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("AppendVersion() duplicate error = %v, want ErrConflict", err)
	}

	op, _ := s.GetOperator("weather")
	if !reflect.DeepEqual(op.Versions, []string{"0.1.0"}) {
		t.Errorf("Versions = %v, want [0.1.0]", op.Versions)
	}
	recs, err := s.ListVersions("weather")
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Hash != "a" {
		t.Errorf("ListVersions() = %+v, want the original record only", recs)
	}
}

func TestMemoryStoreVersionOrder(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if err := s.CreateOperator(Operator{Name: "weather", GitRemoteURL: "/tmp/weather"}); err != nil {
		t.Fatalf("CreateOperator() error = %v", err)
	}
	for _, v := range []string{"0.1.0", "0.2.0", "0.2.0.1"} {
		if err := s.AppendVersion(OperatorVersion{OperatorName: "weather", Version: v}); err != nil {
			t.Fatalf("AppendVersion(%s) error = %v", v, err)
		}
	}

	op, _ := s.GetOperator("weather")
	if !reflect.DeepEqual(op.Versions, []string{"0.1.0", "0.2.0", "0.2.0.1"}) {
		t.Errorf("Versions = %v, want registration order", op.Versions)
	}
}

func TestMemoryStoreGetVersion(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if err := s.CreateOperator(Operator{Name: "weather", GitRemoteURL: "/tmp/weather"}); err != nil {
		t.Fatalf("CreateOperator() error = %v", err)
	}
	if err := s.AppendVersion(OperatorVersion{OperatorName: "weather", Version: "0.1.0", Hash: "a"}); err != nil {
		t.Fatalf("AppendVersion() error = %v", err)
	}

	rec, err := s.GetVersion("weather", "0.1.0")
	if err != nil {
		t.Fatalf("GetVersion() error = %v", err)
	}
	if rec.Hash != "a" {
		t.Errorf("GetVersion() = %+v", rec)
	}

	if _, err := s.GetVersion("weather", "9.9.9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVersion(unknown version) error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetVersion("absent", "0.1.0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVersion(unknown operator) error = %v, want ErrNotFound", err)
	}
	if _, err := s.ListVersions("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListVersions(unknown operator) error = %v, want ErrNotFound", err)
	}
}
