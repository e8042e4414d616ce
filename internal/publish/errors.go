// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"
	"fmt"

	"github.com/mezuri/mezuri/pkg/version"
)

var (
	// ErrAlreadyInitialized is returned when initializing a directory that
	// already belongs to a component.
	ErrAlreadyInitialized = errors.New("component already initialized")
	// ErrNotInitialized is returned when an operation requires an
	// initialized component and none exists at or above the directory.
	ErrNotInitialized = errors.New("component not initialized")
	// ErrMissingDeclaration is returned when committing a component whose
	// interface declaration has not been generated into the spec.
	ErrMissingDeclaration = errors.New("component interface declaration not added")
	// ErrVersionConflict is the sentinel error wrapped by VersionConflictError.
	ErrVersionConflict = errors.New("version conflict")
	// ErrNoVersions is returned when publishing a component without any
	// committed versions.
	ErrNoVersions = errors.New("component does not have any versions to publish")
	// ErrPushConflict is returned when the remote refuses a code or tag
	// push. It signals a concurrent publisher; the caller must resynchronize
	// and retry, never force-push.
	ErrPushConflict = errors.New("push conflict")
)

type (
	// VersionConflictError is returned when a candidate version does not
	// strictly exceed the latest existing tag, or when the candidate's tag
	// was claimed by a concurrent actor between the ordering check and tag
	// creation.
	VersionConflictError struct {
		Candidate version.Version
		Latest    version.Version

		// TagRace is true when the conflict surfaced as an existing tag
		// after the local commit was recorded. The commit persists; the
		// caller must pick a new version and retry.
		TagRace bool
	}

	// RegistryNotifyError is returned when the publish succeeded locally
	// and remotely but the registry could not record the version. The
	// pushed commit and tag remain the durable source of truth; the
	// notification is safe to repeat by re-invoking publish.
	RegistryNotifyError struct {
		Tag version.Tag
		Err error
	}
)

// Error implements the error interface.
func (e *VersionConflictError) Error() string {
	if e.TagRace {
		return fmt.Sprintf("version %s already tagged by a concurrent actor; pick a new version and retry", e.Candidate)
	}
	return fmt.Sprintf("version %s not greater than %s", e.Candidate, e.Latest)
}

// Unwrap returns ErrVersionConflict so callers can use errors.Is for programmatic detection.
func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

// Error implements the error interface.
func (e *RegistryNotifyError) Error() string {
	return fmt.Sprintf("component %s pushed but could not be registered: %v (re-invoke publish to retry)", e.Tag, e.Err)
}

// Unwrap returns the registry failure.
func (e *RegistryNotifyError) Unwrap() error { return e.Err }
