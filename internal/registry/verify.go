// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/mezuri/mezuri/internal/gitx"
	"github.com/mezuri/mezuri/pkg/spec"
)

var (
	// ErrHashMismatch is returned when the commit the remote's tag resolves
	// to differs from the publisher's claimed hash. This is the defense
	// against a tag being reassigned or spoofed between push and
	// registration.
	ErrHashMismatch = errors.New("remote tag does not match claimed hash")
	// ErrSpecNotFound is returned when the checked-out commit has no
	// readable spec file.
	ErrSpecNotFound = errors.New("specification not found in repository")
)

type (
	// Verifier independently re-derives a publish claim from the remote
	// repository before the registry accepts it.
	Verifier interface {
		FetchSpec(ctx context.Context, remoteURL gitx.GitURL, tag string, claimed gitx.GitCommit) (json.RawMessage, error)
	}

	// GitVerifier verifies claims by cloning the remote into a fresh
	// scratch directory. Each call gets its own directory, removed on every
	// exit path; concurrent verifications never share scratch space.
	GitVerifier struct {
		// ScratchRoot is the parent directory for per-call scratch clones.
		// Empty means the system temp directory.
		ScratchRoot string

		Log *log.Logger
	}
)

// FetchSpec clones remoteURL, confirms that tag resolves to the claimed
// commit, checks that commit out and returns the spec file contents. Any
// failure aborts verification:
//   - gitx.ErrRemoteUnreachable — clone failed
//   - ErrHashMismatch — tag missing or pointing at a different commit
//   - ErrSpecNotFound — spec file missing or not valid JSON
func (v *GitVerifier) FetchSpec(ctx context.Context, remoteURL gitx.GitURL, tag string, claimed gitx.GitCommit) (_ json.RawMessage, err error) {
	dir, err := os.MkdirTemp(v.ScratchRoot, "mezuri-verify-")
	if err != nil {
		return nil, fmt.Errorf("allocating scratch directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil && err == nil {
			err = fmt.Errorf("releasing scratch directory: %w", rmErr)
		}
	}()

	v.logf("verifying", "remote", remoteURL, "tag", tag, "claimed", claimed)

	repo, err := gitx.Clone(ctx, remoteURL, dir)
	if err != nil {
		return nil, err
	}

	resolved, err := repo.ResolveTag(tag)
	if err != nil {
		return nil, fmt.Errorf("tag %s not resolvable on remote: %w", tag, ErrHashMismatch)
	}
	if resolved != claimed {
		return nil, fmt.Errorf("tag %s resolves to %s, claimed %s: %w", tag, resolved, claimed, ErrHashMismatch)
	}

	if err := repo.Checkout(claimed); err != nil {
		return nil, fmt.Errorf("claimed commit not checkoutable: %w", ErrHashMismatch)
	}

	data, err := os.ReadFile(filepath.Join(dir, spec.Filename))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Filename, ErrSpecNotFound)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s is not valid JSON: %w", spec.Filename, ErrSpecNotFound)
	}

	v.logf("verified", "remote", remoteURL, "tag", tag)
	return json.RawMessage(data), nil
}

func (v *GitVerifier) logf(msg string, kv ...any) {
	if v.Log != nil {
		v.Log.Debug(msg, kv...)
	}
}
