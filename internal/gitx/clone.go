// SPDX-License-Identifier: MPL-2.0

package gitx

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrRemoteUnreachable is returned when a remote repository cannot be
// cloned: network failure, authentication failure or a missing repository.
var ErrRemoteUnreachable = errors.New("remote repository unreachable")

// Clone clones remoteURL into dir with its full history and tags.
func Clone(ctx context.Context, remoteURL GitURL, dir string) (*Repo, error) {
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  remoteURL.String(),
		Auth: remoteAuth(),
		Tags: git.AllTags,
	})
	if err != nil {
		return nil, fmt.Errorf("cloning %s: %w: %v", remoteURL, ErrRemoteUnreachable, err)
	}
	return newRepo(repo, DefaultSignature), nil
}

// ResolveTag returns the commit the named tag points to in this clone,
// dereferencing annotated tags. This is the registry's independent view of
// what the tag means, compared against the publisher's claim.
func (r *Repo) ResolveTag(name string) (GitCommit, error) {
	return r.TagCommit(name)
}

// Checkout moves the working tree to the given commit.
func (r *Repo) Checkout(hash GitCommit) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{
		Hash:  plumbing.NewHash(hash.String()),
		Force: true,
	}); err != nil {
		return fmt.Errorf("checking out %s: %w", hash, err)
	}
	return nil
}
