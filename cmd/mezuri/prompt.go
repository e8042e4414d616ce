// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mezuri/mezuri/internal/publish"
	"github.com/mezuri/mezuri/pkg/spec"
	"github.com/mezuri/mezuri/pkg/version"
)

// componentNameRegex constrains component names to registry-safe slugs.
var componentNameRegex = regexp.MustCompile(`^[a-z][a-z-]*$`)

type (
	// promptDefaults carries flag-supplied answers; empty fields are
	// prompted for interactively.
	promptDefaults struct {
		name        string
		description string
		version     string

		remoteName string
		remoteURL  string
		registry   string
	}

	// promptProvider implements publish.ConfigProvider: it answers from
	// flags when given and falls back to asking on the command's streams.
	promptProvider struct {
		defaults promptDefaults
		in       *bufio.Reader
		out      io.Writer
	}
)

func newPromptProvider(cmd *cobra.Command, defaults promptDefaults) (*promptProvider, error) {
	if defaults.name != "" && !componentNameRegex.MatchString(defaults.name) {
		return nil, fmt.Errorf("invalid component name %q: only lowercase letters and dashes are allowed", defaults.name)
	}
	if defaults.version != "" {
		if _, err := version.Parse(defaults.version); err != nil {
			return nil, err
		}
	}
	return &promptProvider{
		defaults: defaults,
		in:       bufio.NewReader(cmd.InOrStdin()),
		out:      cmd.OutOrStdout(),
	}, nil
}

// ComponentInit gathers the initial spec values for a new component.
func (p *promptProvider) ComponentInit(componentType string) (publish.InitConfig, error) {
	name := p.defaults.name
	for name == "" || !componentNameRegex.MatchString(name) {
		if name != "" {
			fmt.Fprintln(p.out, ErrorStyle.Render("Only lowercase letters and dashes are allowed."))
		}
		var err error
		name, err = p.ask(fmt.Sprintf("Name of the %s component: ", strings.TrimSuffix(componentType, "s")))
		if err != nil {
			return publish.InitConfig{}, err
		}
	}

	description := p.defaults.description
	if description == "" {
		var err error
		description, err = p.ask("Description: ")
		if err != nil {
			return publish.InitConfig{}, err
		}
	}

	raw := p.defaults.version
	if raw == "" {
		var err error
		raw, err = p.ask("Initial version [0.0.0]: ")
		if err != nil {
			return publish.InitConfig{}, err
		}
	}
	v := version.Zero
	if raw != "" {
		var err error
		v, err = version.Parse(raw)
		if err != nil {
			return publish.InitConfig{}, err
		}
	}

	return publish.InitConfig{Name: name, Description: description, Version: v}, nil
}

// PublishTarget resolves the remote and registry for a first publish.
func (p *promptProvider) PublishTarget(existingRemotes []string) (spec.Publish, error) {
	name := p.defaults.remoteName
	if name == "" {
		prompt := "Name of the git remote to publish to: "
		if len(existingRemotes) > 0 {
			prompt = fmt.Sprintf("Name of the git remote to publish to (configured: %s): ",
				strings.Join(existingRemotes, ", "))
		}
		var err error
		name, err = p.ask(prompt)
		if err != nil {
			return spec.Publish{}, err
		}
	}
	if name == "" {
		return spec.Publish{}, publish.ErrNoPublishTarget
	}

	url := p.defaults.remoteURL
	if url == "" && !contains(existingRemotes, name) {
		var err error
		url, err = p.ask(fmt.Sprintf("URL of remote %s: ", name))
		if err != nil {
			return spec.Publish{}, err
		}
		if url == "" {
			return spec.Publish{}, publish.ErrNoPublishTarget
		}
	}

	registry := p.defaults.registry
	if registry == "" {
		return spec.Publish{}, publish.ErrNoPublishTarget
	}

	return spec.Publish{
		Remote:   spec.Remote{Name: name, URL: url},
		Registry: registry,
	}, nil
}

func (p *promptProvider) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
