// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"

	"github.com/mezuri/mezuri/pkg/spec"
	"github.com/mezuri/mezuri/pkg/version"
)

// ErrNoPublishTarget is returned when a provider cannot supply a publish
// target for a never-published component.
var ErrNoPublishTarget = errors.New("no publish target configured")

type (
	// InitConfig seeds a freshly initialized component's spec.
	InitConfig struct {
		Name        string
		Description string
		Version     version.Version
	}

	// ConfigProvider supplies the inputs the original workflow gathered
	// interactively, so the whole publish path runs headless. CLI builds
	// wire a prompting provider; tests and automation wire a static one.
	ConfigProvider interface {
		// ComponentInit returns the initial spec values for a new component.
		ComponentInit(componentType string) (InitConfig, error)

		// PublishTarget resolves the git remote and registry for a
		// component that has never been published. existingRemotes lists
		// the remotes already configured in the repository; a provider may
		// pick one of them (returning it with its configured URL) or name
		// a new remote to be added.
		PublishTarget(existingRemotes []string) (spec.Publish, error)
	}

	// StaticProvider is a ConfigProvider with fixed answers.
	StaticProvider struct {
		Init   InitConfig
		Target spec.Publish
	}
)

// ComponentInit returns the fixed init values.
func (p *StaticProvider) ComponentInit(string) (InitConfig, error) {
	return p.Init, nil
}

// PublishTarget returns the fixed publish target, failing with
// ErrNoPublishTarget when none was set.
func (p *StaticProvider) PublishTarget([]string) (spec.Publish, error) {
	if p.Target.Remote.Name == "" || p.Target.Registry == "" {
		return spec.Publish{}, ErrNoPublishTarget
	}
	return p.Target, nil
}
