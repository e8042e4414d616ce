// SPDX-License-Identifier: MPL-2.0

// Package issue maps workflow failures onto user-facing explanations:
// markdown rendered to the terminal with the concrete steps that resolve
// the failure. Errors carry the machine taxonomy; issues carry the advice.
package issue

import (
	"errors"

	"github.com/charmbracelet/glamour"

	"github.com/mezuri/mezuri/internal/gitx"
	"github.com/mezuri/mezuri/internal/publish"
	"github.com/mezuri/mezuri/internal/registry"
)

// Id identifies an issue type.
type Id int

// Issue identifiers.
const (
	NotInitializedId Id = iota + 1
	MissingDeclarationId
	VersionConflictId
	NoVersionsId
	PushConflictId
	RegistryConflictId
	RegistryNotifyFailedId
)

type (
	// MarkdownMsg is markdown text rendered for the user.
	MarkdownMsg string

	// Issue pairs an identifier with its rendered explanation.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

// Id returns the issue identifier.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the raw markdown.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Render returns the markdown rendered for the terminal.
func (i *Issue) Render() (string, error) {
	return glamour.Render(string(i.mdMsg), "auto")
}

var (
	notInitializedIssue = &Issue{
		id: NotInitializedId,
		mdMsg: `
# Component not initialized

No specification file was found in this directory or any parent.

## Things you can try:
- Initialize a new component here:
~~~
$ mezuri source init
~~~
- Or move into an existing component's directory first.`,
	}

	missingDeclarationIssue = &Issue{
		id: MissingDeclarationId,
		mdMsg: `
# Component interface declaration not added

The specification has no interface declaration yet, so there is nothing
meaningful to version.

## Things you can try:
- Generate the declaration from your definition file:
~~~
$ mezuri source generate -f source.py
~~~`,
	}

	versionConflictIssue = &Issue{
		id: VersionConflictId,
		mdMsg: `
# Version conflict

The version you are committing does not exceed an already-tagged version,
or another publisher claimed the same version first.

## Things you can try:
- Pick a strictly greater version:
~~~
$ mezuri source commit "message" --component-version <greater-version>
~~~
- Or bump the version in the specification file and commit again.`,
	}

	noVersionsIssue = &Issue{
		id: NoVersionsId,
		mdMsg: `
# Nothing to publish

The component has no committed versions.

## Things you can try:
- Commit a version first:
~~~
$ mezuri source commit "initial version"
~~~`,
	}

	pushConflictIssue = &Issue{
		id: PushConflictId,
		mdMsg: `
# Push rejected by the remote

A concurrent publisher moved the remote first. mezuri never force-pushes:
the remote's history wins until you resynchronize.

## Things you can try:
- Fetch and reconcile the remote history, then re-run:
~~~
$ mezuri source publish
~~~`,
	}

	registryConflictIssue = &Issue{
		id: RegistryConflictId,
		mdMsg: `
# Version already registered

The registry already records this exact version. If a previous publish
attempt failed after the registry call, this publish has in fact completed.`,
	}

	registryNotifyFailedIssue = &Issue{
		id: RegistryNotifyFailedId,
		mdMsg: `
# Published, but the registry was not notified

Your code and tag were pushed successfully; the repository remains the
source of truth. Only the registry notification failed.

## Things you can try:
- Re-run the publish; the notification is safe to repeat:
~~~
$ mezuri source publish
~~~`,
	}
)

// FromError maps an error from the publish workflow onto its issue, or nil
// when the error has no dedicated explanation.
func FromError(err error) *Issue {
	var notifyErr *publish.RegistryNotifyError
	switch {
	case errors.As(err, &notifyErr):
		if errors.Is(err, registry.ErrConflict) {
			return registryConflictIssue
		}
		return registryNotifyFailedIssue
	case errors.Is(err, publish.ErrNotInitialized):
		return notInitializedIssue
	case errors.Is(err, publish.ErrMissingDeclaration):
		return missingDeclarationIssue
	case errors.Is(err, publish.ErrVersionConflict), errors.Is(err, gitx.ErrTagExists):
		return versionConflictIssue
	case errors.Is(err, publish.ErrNoVersions):
		return noVersionsIssue
	case errors.Is(err, publish.ErrPushConflict), errors.Is(err, gitx.ErrPushRejected):
		return pushConflictIssue
	default:
		return nil
	}
}
