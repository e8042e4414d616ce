// SPDX-License-Identifier: MPL-2.0

// Package gitx is the version-control layer: a thin abstraction over go-git
// providing the operations the publish and verification workflows need.
// Tag creation and tag push are the distributed compare-and-swap primitives
// of the publish protocol; their failure modes (ErrTagExists,
// ErrPushRejected) are the authoritative concurrent-publish signals and are
// never resolved silently here.
package gitx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var (
	// ErrTagExists is returned when creating a tag whose name is already
	// taken, locally or by a concurrent actor.
	ErrTagExists = errors.New("tag already exists")
	// ErrTagNotFound is returned when a named tag does not exist.
	ErrTagNotFound = errors.New("tag not found")
	// ErrPushRejected is returned when the remote refuses a push. A
	// rejected push means a concurrent publisher moved the ref first.
	ErrPushRejected = errors.New("push rejected by remote")
	// ErrNothingToCommit is returned when a commit is requested on a clean
	// working tree.
	ErrNothingToCommit = errors.New("nothing to commit")
	// ErrRemoteNotFound is returned when a named remote is not configured.
	ErrRemoteNotFound = errors.New("remote not found")
)

type (
	// Repo wraps a local git working repository.
	Repo struct {
		repo *git.Repository

		// author signs commits created through this Repo.
		author Signature
	}

	// Signature identifies a commit author.
	Signature struct {
		Name  string
		Email string
	}
)

// DefaultSignature is used when no author is configured. The publish
// workflow also commits spec metadata updates under this identity rather
// than the user's.
var DefaultSignature = Signature{Name: "mezuri", Email: "mezuri@localhost"}

// Init creates a new git repository with a working tree at dir.
func Init(dir string, author Signature) (*Repo, error) {
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("initializing repository at %s: %w", dir, err)
	}
	return newRepo(repo, author), nil
}

// Open opens the existing repository containing dir.
func Open(dir string, author Signature) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	return newRepo(repo, author), nil
}

func newRepo(repo *git.Repository, author Signature) *Repo {
	if author == (Signature{}) {
		author = DefaultSignature
	}
	return &Repo{repo: repo, author: author}
}

// Stage adds path (relative to the repository root) to the index.
func (r *Repo) Stage(path string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if _, err := wt.Add(path); err != nil {
		return fmt.Errorf("staging %s: %w", path, err)
	}
	return nil
}

// Commit records the staged changes. It fails with ErrNothingToCommit when
// the index matches HEAD.
func (r *Repo) Commit(message string) (GitCommit, error) {
	return r.commit(message, r.author)
}

// CommitAs records the staged changes under a substitute author.
func (r *Repo) CommitAs(message string, author Signature) (GitCommit, error) {
	return r.commit(message, author)
}

func (r *Repo) commit(message string, author Signature) (GitCommit, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", err
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return "", ErrNothingToCommit
		}
		return "", fmt.Errorf("committing: %w", err)
	}
	return GitCommit(hash.String()), nil
}

// IsClean reports whether the working tree and index match HEAD.
func (r *Repo) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	return status.IsClean(), nil
}

// Head returns the commit HEAD points to.
func (r *Repo) Head() (GitCommit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", err
	}
	return GitCommit(head.Hash().String()), nil
}

// CreateTag creates an annotated tag at HEAD carrying message. It fails
// with ErrTagExists if the name is taken; the caller must treat that as a
// concurrent publish, not overwrite it.
func (r *Repo) CreateTag(name, message string) error {
	head, err := r.repo.Head()
	if err != nil {
		return err
	}
	_, err = r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  r.author.Name,
			Email: r.author.Email,
			When:  time.Now(),
		},
		Message: message,
	})
	if err != nil {
		if errors.Is(err, git.ErrTagExists) {
			return fmt.Errorf("tag %s: %w", name, ErrTagExists)
		}
		return fmt.Errorf("creating tag %s: %w", name, err)
	}
	return nil
}

// ListTags returns the names of all tags in the repository.
func (r *Repo) ListTags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, err
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// TagMessage returns the message of an annotated tag. Lightweight tags have
// no message.
func (r *Repo) TagMessage(name string) (string, error) {
	ref, err := r.repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err != nil {
		return "", fmt.Errorf("tag %s: %w", name, ErrTagNotFound)
	}
	tagObj, err := r.repo.TagObject(ref.Hash())
	if err != nil {
		// Lightweight tag.
		return "", nil
	}
	return tagObj.Message, nil
}

// TagCommit returns the commit a tag points to, dereferencing annotated
// tags to their target.
func (r *Repo) TagCommit(name string) (GitCommit, error) {
	ref, err := r.repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err != nil {
		return "", fmt.Errorf("tag %s: %w", name, ErrTagNotFound)
	}
	if tagObj, err := r.repo.TagObject(ref.Hash()); err == nil {
		return GitCommit(tagObj.Target.String()), nil
	}
	return GitCommit(ref.Hash().String()), nil
}

// Remotes returns the names of configured remotes.
func (r *Repo) Remotes() ([]string, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(remotes))
	for _, remote := range remotes {
		names = append(names, remote.Config().Name)
	}
	return names, nil
}

// RemoteURL returns the first URL of a named remote.
func (r *Repo) RemoteURL(name string) (GitURL, error) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("remote %s: %w", name, ErrRemoteNotFound)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s: %w", name, ErrRemoteNotFound)
	}
	return GitURL(urls[0]), nil
}

// AddRemote configures a new remote.
func (r *Repo) AddRemote(name string, url GitURL) error {
	_, err := r.repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{url.String()},
	})
	if err != nil {
		return fmt.Errorf("adding remote %s: %w", name, err)
	}
	return nil
}

// Push pushes the current branch history to the named remote. A refused
// push fails with ErrPushRejected; a remote already holding the history is
// success.
func (r *Repo) Push(ctx context.Context, remote string) error {
	head, err := r.repo.Head()
	if err != nil {
		return err
	}
	refspec := config.RefSpec(fmt.Sprintf("%s:%s", head.Name(), head.Name()))
	return r.push(ctx, remote, refspec)
}

// PushTag pushes a single tag ref to the named remote. The remote rejecting
// the ref (a concurrent publisher claimed the tag) fails with
// ErrPushRejected; the tag already present with the same target is success,
// which is what makes a partially failed publish safely re-invocable.
func (r *Repo) PushTag(ctx context.Context, remote, tag string) error {
	refspec := config.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag))
	return r.push(ctx, remote, refspec)
}

func (r *Repo) push(ctx context.Context, remote string, refspec config.RefSpec) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refspec},
		Auth:       remoteAuth(),
	})
	switch {
	case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate):
		return nil
	default:
		return fmt.Errorf("pushing %s to %s: %w: %v", refspec, remote, ErrPushRejected, err)
	}
}
