// SPDX-License-Identifier: MPL-2.0

// Package publish implements the client-side component workflow: commit a
// new version, tag it, push history and tag to the remote, and notify the
// registry. The workflow is single-threaded and blocking; git tag creation
// and push serve as the distributed compare-and-swap, so every conflict
// surfaces as an error for the user to resolve instead of being merged or
// overridden silently.
package publish

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/mezuri/mezuri/internal/gitx"
	"github.com/mezuri/mezuri/internal/registry"
	"github.com/mezuri/mezuri/pkg/spec"
	"github.com/mezuri/mezuri/pkg/version"
)

// specUpdateMessage is the commit message for the metadata-only commit that
// records the publish target in the spec.
const specUpdateMessage = "Update specification"

// State describes how far a component has progressed through the publish
// lifecycle. States only ever advance; no operation skips initialization.
type State int

// Lifecycle states.
const (
	StateUninitialized State = iota
	StateInitialized
	StateCommitted
	StatePublished
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateCommitted:
		return "committed"
	case StatePublished:
		return "published"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type (
	// Notifier is the registry transport the publisher calls after a
	// successful push. *registry.Client satisfies it.
	Notifier interface {
		Push(ctx context.Context, operatorName string, remoteURL gitx.GitURL, tag version.Tag, hash gitx.GitCommit) (registry.OperatorVersion, error)
	}

	// NotifierFactory builds a Notifier for a registry base URL.
	NotifierFactory func(registryURL string) Notifier

	// Publisher runs the component workflow rooted at Dir.
	Publisher struct {
		// Dir is the directory the workflow operates in; the component
		// root is found by walking up from it.
		Dir string

		// Provider supplies configuration the original workflow prompted
		// for.
		Provider ConfigProvider

		// Registry builds the notifier once the registry URL is known.
		// Nil means registry.NewClient.
		Registry NotifierFactory

		// Author signs commits; the zero value falls back to the gitx
		// default identity.
		Author gitx.Signature

		Logger *log.Logger
	}

	// Status is a point-in-time view of the lifecycle.
	Status struct {
		State State
		// Commits is the number of committed component versions (mezuri
		// tags); only meaningful from StateCommitted on.
		Commits int
	}
)

// Init creates a new component of the given type in Dir: the initial spec
// file, a git repository, and the spec staged for the first commit. It
// fails with ErrAlreadyInitialized when Dir is already inside a component.
func (p *Publisher) Init(componentType string) error {
	if _, err := spec.FindRoot(p.Dir); err == nil {
		return ErrAlreadyInitialized
	}

	cfg, err := p.Provider.ComponentInit(componentType)
	if err != nil {
		return err
	}

	s := spec.New(componentType)
	s.Name = cfg.Name
	s.Description = cfg.Description
	s.Version = cfg.Version

	repo, err := gitx.Init(p.Dir, p.Author)
	if err != nil {
		// Re-initializing inside an existing repository is fine; only the
		// spec file is new.
		repo, err = gitx.Open(p.Dir, p.Author)
		if err != nil {
			return err
		}
	}

	if err := s.Save(filepath.Join(p.Dir, spec.Filename)); err != nil {
		return err
	}
	p.logf("component initialized", "name", cfg.Name, "type", componentType)
	return repo.Stage(spec.Filename)
}

// Commit records a new component version: it persists the target version
// into the spec, commits the spec and definition file, and claims the
// version's tag.
//
// The candidate version must strictly exceed every existing mezuri tag;
// otherwise Commit fails with VersionConflictError before anything is
// mutated. If the tag turns out to be taken at creation time (a concurrent
// actor claimed it between check and create), the commit persists and the
// error reports the race; the caller picks a new version and retries.
func (p *Publisher) Commit(message string, explicit *version.Version) (version.Tag, error) {
	root, s, err := p.loadSpec()
	if err != nil {
		return version.Tag{}, err
	}
	if !s.HasDeclaration() {
		return version.Tag{}, ErrMissingDeclaration
	}

	repo, err := gitx.Open(root, p.Author)
	if err != nil {
		return version.Tag{}, err
	}

	target := s.Version
	if explicit != nil {
		target = *explicit
	}
	candidate := version.Tag{
		ComponentType: s.ComponentType,
		ComponentName: s.Name,
		Version:       target,
	}

	tags, err := repo.ListTags()
	if err != nil {
		return version.Tag{}, err
	}
	if latest, found := version.Latest(tags); found && !latest.Less(candidate) {
		return version.Tag{}, &VersionConflictError{Candidate: target, Latest: latest.Version}
	}

	s.Version = target
	if err := s.Save(filepath.Join(root, spec.Filename)); err != nil {
		return version.Tag{}, err
	}
	if err := repo.Stage(spec.Filename); err != nil {
		return version.Tag{}, err
	}
	if s.Definition != nil {
		if err := repo.Stage(s.Definition.File); err != nil {
			return version.Tag{}, err
		}
	}

	if _, err := repo.Commit(message); err != nil {
		return version.Tag{}, err
	}

	if err := repo.CreateTag(candidate.String(), message); err != nil {
		if errors.Is(err, gitx.ErrTagExists) {
			return version.Tag{}, &VersionConflictError{Candidate: target, TagRace: true}
		}
		return version.Tag{}, err
	}

	p.logf("version committed", "tag", candidate.String())
	return candidate, nil
}

// Publish pushes the component's history and its latest version tag to the
// remote, then notifies the registry.
//
// The remote is the arbiter: a rejected code or tag push fails with
// ErrPushConflict and is never force-pushed. A registry failure after a
// successful push does not roll anything back — the repository remains the
// source of truth — and surfaces as RegistryNotifyError; re-invoking
// Publish repeats the push (a no-op once the remote has the refs) and the
// notification.
func (p *Publisher) Publish(ctx context.Context) (version.Tag, error) {
	root, s, err := p.loadSpec()
	if err != nil {
		return version.Tag{}, err
	}

	repo, err := gitx.Open(root, p.Author)
	if err != nil {
		return version.Tag{}, err
	}

	tags, err := repo.ListTags()
	if err != nil {
		return version.Tag{}, err
	}
	candidate, found := version.Latest(tags)
	if !found {
		return version.Tag{}, ErrNoVersions
	}
	candidate.ComponentName = s.Name

	target, err := p.resolveTarget(repo, s)
	if err != nil {
		return version.Tag{}, err
	}

	if err := repo.Push(ctx, target.Remote.Name); err != nil {
		return version.Tag{}, fmt.Errorf("%w: %v", ErrPushConflict, err)
	}

	// Record the publish target in the spec. When that (or any other
	// metadata-only change) dirties the tree, the already-tagged content is
	// republished under an incremented update counter reusing the original
	// tag message, instead of minting a new semantic version.
	s.Publish = &target
	if err := s.Save(filepath.Join(root, spec.Filename)); err != nil {
		return version.Tag{}, err
	}
	if err := repo.Stage(spec.Filename); err != nil {
		return version.Tag{}, err
	}
	switch _, err := repo.CommitAs(specUpdateMessage, gitx.DefaultSignature); {
	case err == nil:
		message, err := repo.TagMessage(candidate.String())
		if err != nil {
			return version.Tag{}, err
		}
		candidate = candidate.WithIncrementedUpdateNum()
		if err := repo.CreateTag(candidate.String(), message); err != nil && !errors.Is(err, gitx.ErrTagExists) {
			return version.Tag{}, err
		}
	case errors.Is(err, gitx.ErrNothingToCommit):
		// Spec unchanged; publish the candidate tag as-is.
	default:
		return version.Tag{}, err
	}

	if err := repo.PushTag(ctx, target.Remote.Name, candidate.String()); err != nil {
		return version.Tag{}, fmt.Errorf("%w: %v", ErrPushConflict, err)
	}

	hash, err := repo.TagCommit(candidate.String())
	if err != nil {
		return version.Tag{}, err
	}

	notifier := p.notifier(target.Registry)
	if _, err := notifier.Push(ctx, s.Name, gitx.GitURL(target.Remote.URL), candidate, hash); err != nil {
		return candidate, &RegistryNotifyError{Tag: candidate, Err: err}
	}

	p.logf("version published", "tag", candidate.String(), "registry", target.Registry)
	return candidate, nil
}

// Status derives the lifecycle state from the component's on-disk state.
func (p *Publisher) Status() (Status, error) {
	root, s, err := p.loadSpec()
	if errors.Is(err, ErrNotInitialized) {
		return Status{State: StateUninitialized}, nil
	}
	if err != nil {
		return Status{}, err
	}

	repo, err := gitx.Open(root, p.Author)
	if err != nil {
		return Status{State: StateInitialized}, nil
	}
	tags, err := repo.ListTags()
	if err != nil {
		return Status{}, err
	}
	commits := 0
	for _, raw := range tags {
		if _, err := version.ParseTag(raw); err == nil {
			commits++
		}
	}

	switch {
	case s.Publish != nil:
		return Status{State: StatePublished, Commits: commits}, nil
	case commits > 0:
		return Status{State: StateCommitted, Commits: commits}, nil
	default:
		return Status{State: StateInitialized}, nil
	}
}

// resolveTarget returns the publish target, consulting the provider (and
// persisting its choice) the first time a component is published.
func (p *Publisher) resolveTarget(repo *gitx.Repo, s *spec.Spec) (spec.Publish, error) {
	if s.Publish != nil {
		return *s.Publish, nil
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return spec.Publish{}, err
	}
	target, err := p.Provider.PublishTarget(remotes)
	if err != nil {
		return spec.Publish{}, err
	}

	configured := false
	for _, name := range remotes {
		if name == target.Remote.Name {
			configured = true
			break
		}
	}
	if configured {
		if target.Remote.URL == "" {
			url, err := repo.RemoteURL(target.Remote.Name)
			if err != nil {
				return spec.Publish{}, err
			}
			target.Remote.URL = url.String()
		}
	} else {
		if err := repo.AddRemote(target.Remote.Name, gitx.GitURL(target.Remote.URL)); err != nil {
			return spec.Publish{}, err
		}
	}
	return target, nil
}

func (p *Publisher) loadSpec() (string, *spec.Spec, error) {
	root, err := spec.FindRoot(p.Dir)
	if err != nil {
		return "", nil, ErrNotInitialized
	}
	s, err := spec.Load(filepath.Join(root, spec.Filename))
	if err != nil {
		return "", nil, err
	}
	return root, s, nil
}

func (p *Publisher) notifier(registryURL string) Notifier {
	if p.Registry != nil {
		return p.Registry(registryURL)
	}
	return registry.NewClient(registryURL)
}

func (p *Publisher) logf(msg string, kv ...any) {
	if p.Logger != nil {
		p.Logger.Info(msg, kv...)
	}
}
