// SPDX-License-Identifier: MPL-2.0

// Package registry implements the mezuri component registry: an
// independently-verifying index of published component versions. The
// repository history stays authoritative; the registry only records
// versions whose commit it has re-derived from the remote itself.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mezuri/mezuri/internal/gitx"
)

var (
	// ErrNotFound is returned for unknown operators or versions.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an operator name or an operator version
	// is already taken.
	ErrConflict = errors.New("already exists")
)

type (
	// Operator is a registered component: its unique name, the remote its
	// history lives at, and the ordered, append-only list of verified
	// published version strings.
	Operator struct {
		Name         string     `json:"name"`
		GitRemoteURL gitx.GitURL `json:"gitRemoteUrl"`
		Versions     []string   `json:"versions"`
	}

	// OperatorVersion is one verified published version. It is immutable
	// once created: its hash was re-derived from the operator's remote at
	// registration time and never changes afterwards.
	OperatorVersion struct {
		OperatorName string          `json:"operator_name"`
		Version      string          `json:"version"`
		Hash         gitx.GitCommit  `json:"hash"`
		Spec         json.RawMessage `json:"spec"`
	}

	// Store is the registry's persistence abstraction. Implementations
	// must make AppendVersion atomic: the version list entry and the
	// version record appear together or not at all.
	Store interface {
		CreateOperator(op Operator) error
		GetOperator(name string) (Operator, error)
		ListOperators() ([]Operator, error)
		AppendVersion(rec OperatorVersion) error
		ListVersions(operatorName string) ([]OperatorVersion, error)
		GetVersion(operatorName, version string) (OperatorVersion, error)
	}

	// MemoryStore keeps the registry in process memory. Reads run
	// concurrently; writes take the exclusive lock.
	MemoryStore struct {
		mu        sync.RWMutex
		operators map[string]*Operator
		versions  []OperatorVersion
	}
)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{operators: make(map[string]*Operator)}
}

// CreateOperator records a new operator with an empty version list. It
// fails with ErrConflict if the name is taken, leaving the original record
// untouched.
func (s *MemoryStore) CreateOperator(op Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.operators[op.Name]; exists {
		return fmt.Errorf("operator %s: %w", op.Name, ErrConflict)
	}
	op.Versions = []string{}
	s.operators[op.Name] = &op
	return nil
}

// GetOperator returns a copy of the named operator.
func (s *MemoryStore) GetOperator(name string) (Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	op, exists := s.operators[name]
	if !exists {
		return Operator{}, fmt.Errorf("operator %s: %w", name, ErrNotFound)
	}
	return copyOperator(op), nil
}

// ListOperators returns copies of all operators.
func (s *MemoryStore) ListOperators() ([]Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ops := make([]Operator, 0, len(s.operators))
	for _, op := range s.operators {
		ops = append(ops, copyOperator(op))
	}
	return ops, nil
}

// AppendVersion atomically appends the version to the operator's list and
// stores the immutable version record. It fails with ErrNotFound for an
// unknown operator and ErrConflict for a duplicate version; on failure
// nothing is mutated.
func (s *MemoryStore) AppendVersion(rec OperatorVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, exists := s.operators[rec.OperatorName]
	if !exists {
		return fmt.Errorf("operator %s: %w", rec.OperatorName, ErrNotFound)
	}
	for _, v := range op.Versions {
		if v == rec.Version {
			return fmt.Errorf("operator %s version %s: %w", rec.OperatorName, rec.Version, ErrConflict)
		}
	}
	op.Versions = append(op.Versions, rec.Version)
	s.versions = append(s.versions, rec)
	return nil
}

// ListVersions returns the version records of an operator in registration
// order.
func (s *MemoryStore) ListVersions(operatorName string) ([]OperatorVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.operators[operatorName]; !exists {
		return nil, fmt.Errorf("operator %s: %w", operatorName, ErrNotFound)
	}
	var recs []OperatorVersion
	for _, rec := range s.versions {
		if rec.OperatorName == operatorName {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// GetVersion returns one version record.
func (s *MemoryStore) GetVersion(operatorName, version string) (OperatorVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.operators[operatorName]; !exists {
		return OperatorVersion{}, fmt.Errorf("operator %s: %w", operatorName, ErrNotFound)
	}
	for _, rec := range s.versions {
		if rec.OperatorName == operatorName && rec.Version == version {
			return rec, nil
		}
	}
	return OperatorVersion{}, fmt.Errorf("operator %s version %s: %w", operatorName, version, ErrNotFound)
}

func copyOperator(op *Operator) Operator {
	out := *op
	out.Versions = append([]string{}, op.Versions...)
	return out
}
