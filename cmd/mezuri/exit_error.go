// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/mezuri/mezuri/internal/publish"
	"github.com/mezuri/mezuri/internal/registry"
	"github.com/mezuri/mezuri/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// classifyExitCode maps a workflow error to the process exit code.
// Conflicts (a concurrent publisher won the race, or the chosen version is
// stale) use exit code 2 so scripts can tell them from plain failures;
// everything else uses exit code 1.
func classifyExitCode(err error) types.ExitCode {
	switch {
	case errors.Is(err, publish.ErrVersionConflict):
		return 2
	case errors.Is(err, publish.ErrPushConflict):
		return 2
	case errors.Is(err, registry.ErrConflict):
		return 2
	default:
		return 1
	}
}
