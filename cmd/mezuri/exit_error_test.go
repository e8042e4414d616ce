// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mezuri/mezuri/internal/publish"
	"github.com/mezuri/mezuri/internal/registry"
	"github.com/mezuri/mezuri/pkg/types"
	"github.com/mezuri/mezuri/pkg/version"
)

func TestClassifyExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode types.ExitCode
	}{
		{
			name: "stale version",
			err: &publish.VersionConflictError{
				Candidate: version.Version{Minor: 9},
				Latest:    version.Version{Major: 1},
			},
			wantCode: 2,
		},
		{
			name:     "tag race",
			err:      &publish.VersionConflictError{Candidate: version.Version{Major: 1}, TagRace: true},
			wantCode: 2,
		},
		{
			name:     "push rejected",
			err:      fmt.Errorf("%w: remote has newer history", publish.ErrPushConflict),
			wantCode: 2,
		},
		{
			name: "registry conflict after push",
			err: &publish.RegistryNotifyError{
				Tag: version.Tag{ComponentType: "sources", Version: version.Version{Major: 1}},
				Err: registry.ErrConflict,
			},
			wantCode: 2,
		},
		{
			name:     "not initialized",
			err:      publish.ErrNotInitialized,
			wantCode: 1,
		},
		{
			name:     "missing declaration",
			err:      publish.ErrMissingDeclaration,
			wantCode: 1,
		},
		{
			name:     "plain failure",
			err:      errors.New("disk full"),
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := classifyExitCode(tt.err); got != tt.wantCode {
				t.Errorf("classifyExitCode(%v) = %d, want %d", tt.err, got, tt.wantCode)
			}
		})
	}
}

func TestExitErrorUnwrap(t *testing.T) {
	t.Parallel()

	conflict := &publish.VersionConflictError{
		Candidate: version.Version{Minor: 9},
		Latest:    version.Version{Major: 1},
	}
	err := error(&ExitError{Code: classifyExitCode(conflict), Err: conflict})

	// Wrapping must not hide the cause from the explanation renderer.
	var got *publish.VersionConflictError
	if !errors.As(err, &got) {
		t.Fatal("errors.As() failed to recover the wrapped conflict")
	}
	if !errors.Is(err, publish.ErrVersionConflict) {
		t.Error("errors.Is(err, ErrVersionConflict) = false, want true")
	}
	if err.Error() != conflict.Error() {
		t.Errorf("Error() = %q, want the wrapped message %q", err.Error(), conflict.Error())
	}
}

func TestExitErrorWithoutCause(t *testing.T) {
	t.Parallel()

	err := &ExitError{Code: 3}
	if err.Error() != "exit status 3" {
		t.Errorf("Error() = %q, want %q", err.Error(), "exit status 3")
	}
	if err.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", err.Unwrap())
	}
}
