// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/mezuri/mezuri/internal/gitx"
)

type (
	// Service enforces the registry's consistency contract on top of a
	// Store: operator names are unique, version lists only grow, and no
	// version is recorded whose commit was not independently verified.
	//
	// Reads go straight to the store and may run concurrently with an
	// in-flight mutation. Mutations are serialized by the service mutex so
	// no two concurrent registrations of the same operator name or the
	// same operator+version can both succeed.
	Service struct {
		store    Store
		verifier Verifier
		logger   *log.Logger

		// mu serializes RegisterOperator and RegisterVersion, including the
		// verification fetch inside RegisterVersion.
		mu sync.Mutex
	}
)

// NewService creates a registry service over the given store and verifier.
func NewService(store Store, verifier Verifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, verifier: verifier, logger: logger}
}

// RegisterOperator creates an operator with an empty version list. It fails
// with ErrConflict if the name exists; the original record is unaffected.
func (s *Service) RegisterOperator(name string, remoteURL gitx.GitURL) (Operator, error) {
	if err := remoteURL.Validate(); err != nil {
		return Operator{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	op := Operator{Name: name, GitRemoteURL: remoteURL}
	if err := s.store.CreateOperator(op); err != nil {
		return Operator{}, err
	}
	s.logger.Info("operator registered", "name", name, "remote", remoteURL)
	return s.store.GetOperator(name)
}

// ListOperators returns all registered operators.
func (s *Service) ListOperators() ([]Operator, error) {
	return s.store.ListOperators()
}

// GetOperator returns the named operator or ErrNotFound.
func (s *Service) GetOperator(name string) (Operator, error) {
	return s.store.GetOperator(name)
}

// RegisterVersion records a published version after independently verifying
// the claim against the operator's remote. The call is all-or-nothing:
//   - unknown operator — ErrNotFound, nothing fetched
//   - version already recorded — ErrConflict, nothing fetched
//   - verification failure — the verifier's error, no partial record
//
// Only when the independently resolved commit equals claimed does the
// version join the operator's list, together with its immutable record.
func (s *Service) RegisterVersion(ctx context.Context, operatorName, version, versionTag string, claimed gitx.GitCommit) (OperatorVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, err := s.store.GetOperator(operatorName)
	if err != nil {
		return OperatorVersion{}, err
	}
	for _, v := range op.Versions {
		if v == version {
			return OperatorVersion{}, fmt.Errorf("operator %s version %s: %w", operatorName, version, ErrConflict)
		}
	}

	specBlob, err := s.verifier.FetchSpec(ctx, op.GitRemoteURL, versionTag, claimed)
	if err != nil {
		s.logger.Warn("verification failed",
			"operator", operatorName, "version", version, "tag", versionTag, "err", err)
		return OperatorVersion{}, err
	}

	rec := OperatorVersion{
		OperatorName: operatorName,
		Version:      version,
		Hash:         claimed,
		Spec:         specBlob,
	}
	if err := s.store.AppendVersion(rec); err != nil {
		return OperatorVersion{}, err
	}
	s.logger.Info("version registered", "operator", operatorName, "version", version, "hash", claimed)
	return rec, nil
}

// ListVersions returns the operator's verified version records.
func (s *Service) ListVersions(operatorName string) ([]OperatorVersion, error) {
	return s.store.ListVersions(operatorName)
}

// GetVersion returns one verified version record, spec included.
func (s *Service) GetVersion(operatorName, version string) (OperatorVersion, error) {
	return s.store.GetVersion(operatorName, version)
}
