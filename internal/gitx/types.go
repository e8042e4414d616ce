// SPDX-License-Identifier: MPL-2.0

package gitx

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidGitURL is the sentinel error wrapped by InvalidGitURLError.
	ErrInvalidGitURL = errors.New("invalid git URL")
	// ErrInvalidGitCommit is the sentinel error wrapped by InvalidGitCommitError.
	ErrInvalidGitCommit = errors.New("invalid git commit")

	// gitCommitPattern validates a 40-character lowercase hex SHA.
	gitCommitPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

type (
	// GitURL represents a git repository URL (HTTPS, SSH, git@ or a local
	// path for on-disk remotes).
	GitURL string

	// InvalidGitURLError is returned when a GitURL value is empty.
	InvalidGitURLError struct {
		Value GitURL
	}

	// GitCommit represents a 40-character lowercase hexadecimal git commit SHA.
	GitCommit string

	// InvalidGitCommitError is returned when a GitCommit value does not match
	// the expected 40-character lowercase hex format.
	InvalidGitCommitError struct {
		Value GitCommit
	}
)

// Error implements the error interface.
func (e *InvalidGitURLError) Error() string {
	return fmt.Sprintf("invalid git URL %q", e.Value)
}

// Unwrap returns ErrInvalidGitURL so callers can use errors.Is for programmatic detection.
func (e *InvalidGitURLError) Unwrap() error { return ErrInvalidGitURL }

// Validate returns nil if the GitURL is usable as a remote address.
func (u GitURL) Validate() error {
	if strings.TrimSpace(string(u)) == "" {
		return &InvalidGitURLError{Value: u}
	}
	return nil
}

// String returns the string representation of the GitURL.
func (u GitURL) String() string { return string(u) }

// Error implements the error interface.
func (e *InvalidGitCommitError) Error() string {
	return fmt.Sprintf("invalid git commit %q (must be a 40-character lowercase hex SHA)", e.Value)
}

// Unwrap returns ErrInvalidGitCommit so callers can use errors.Is for programmatic detection.
func (e *InvalidGitCommitError) Unwrap() error { return ErrInvalidGitCommit }

// Validate returns nil if the GitCommit is a valid 40-character lowercase hex SHA.
func (c GitCommit) Validate() error {
	if !gitCommitPattern.MatchString(string(c)) {
		return &InvalidGitCommitError{Value: c}
	}
	return nil
}

// String returns the string representation of the GitCommit.
func (c GitCommit) String() string { return string(c) }
