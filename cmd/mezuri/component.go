// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mezuri/mezuri/internal/gitx"
	"github.com/mezuri/mezuri/internal/publish"
	"github.com/mezuri/mezuri/pkg/declare"
	"github.com/mezuri/mezuri/pkg/version"
)

// newComponentCommand builds the command group for one component type:
// `mezuri source …` works with sources, `mezuri operator …` with operators.
// Both share the same publish workflow; only the component type and the
// default definition file differ.
func newComponentCommand(use, componentType, defaultDefinition string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Work with %s", componentType),
	}

	cmd.AddCommand(newInitCommand(componentType))
	cmd.AddCommand(newGenerateCommand(componentType, defaultDefinition))
	cmd.AddCommand(newCommitCommand(componentType))
	cmd.AddCommand(newPublishCommand(componentType))
	cmd.AddCommand(newStatusCommand(componentType))
	return cmd
}

func newInitCommand(componentType string) *cobra.Command {
	var (
		initName        string
		initDescription string
		initVersion     string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a component",
		Long: `Initialize a component in the current directory: create its
specification file and a git repository, and stage the specification
for the first commit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider, err := newPromptProvider(cmd, promptDefaults{
				name:        initName,
				description: initDescription,
				version:     initVersion,
			})
			if err != nil {
				return err
			}
			publisher, err := newPublisher(cmd, provider)
			if err != nil {
				return err
			}
			if err := publisher.Init(componentType); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Component initialized."))
			return nil
		},
	}

	cmd.Flags().StringVar(&initName, "name", "", "component name (only a-z and dashes; prompted for when omitted)")
	cmd.Flags().StringVar(&initDescription, "description", "", "component description")
	cmd.Flags().StringVar(&initVersion, "component-version", "", "initial version (default 0.0.0)")
	return cmd
}

func newGenerateCommand(componentType, defaultDefinition string) *cobra.Command {
	var definitionFile string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the interface declaration from the definition file",
		Long: `Generate the component's interface declaration from its definition
file and record it in the specification, staging both files for the
next commit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			publisher, err := newPublisher(cmd, nil)
			if err != nil {
				return err
			}
			if err := publisher.Generate(&declare.ManifestExtractor{}, definitionFile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Declaration generated."))
			return nil
		},
	}

	cmd.Flags().StringVarP(&definitionFile, "file", "f", defaultDefinition,
		fmt.Sprintf("the definition file (default %s)", defaultDefinition))
	return cmd
}

func newCommitCommand(componentType string) *cobra.Command {
	var explicitVersion string

	cmd := &cobra.Command{
		Use:   "commit <message>",
		Short: "Commit a new version of the component",
		Long: `Commit a new version of the component. The version must be strictly
greater than every previously committed version; it is taken from the
specification file unless --component-version is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var explicit *version.Version
			if explicitVersion != "" {
				v, err := version.Parse(explicitVersion)
				if err != nil {
					return err
				}
				explicit = &v
			}

			publisher, err := newPublisher(cmd, nil)
			if err != nil {
				return err
			}
			tag, err := publisher.Commit(args[0], explicit)
			if err != nil {
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				SuccessStyle.Render("Version committed:"), tag.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&explicitVersion, "component-version", "",
		"the new version; must be greater than the previous version (default: the version in the specification)")
	return cmd
}

func newPublishCommand(componentType string) *cobra.Command {
	var (
		remoteName  string
		remoteURL   string
		registryURL string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the component to an online registry",
		Long: `Publish the component's latest committed version: push the history
and the version tag to the git remote, then register the version with
the registry. The registry independently verifies the pushed tag
before recording anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if registryURL == "" {
				registryURL = cfg.Registry
			}
			provider, err := newPromptProvider(cmd, promptDefaults{
				remoteName: remoteName,
				remoteURL:  remoteURL,
				registry:   registryURL,
			})
			if err != nil {
				return err
			}
			publisher, err := newPublisher(cmd, provider)
			if err != nil {
				return err
			}
			tag, err := publisher.Publish(cmd.Context())
			if err != nil {
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				SuccessStyle.Render("Version published:"), tag.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&remoteName, "remote-name", "", "git remote to publish to (prompted for on first publish)")
	cmd.Flags().StringVar(&remoteURL, "remote-url", "", "url of the git remote (prompted for on first publish)")
	cmd.Flags().StringVar(&registryURL, "registry", "", "registry base url (default from configuration)")
	return cmd
}

func newStatusCommand(componentType string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the component's publish lifecycle state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			publisher, err := newPublisher(cmd, nil)
			if err != nil {
				return err
			}
			status, err := publisher.Status()
			if err != nil {
				return err
			}
			if status.State >= publish.StateCommitted {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d committed version(s))\n", status.State, status.Commits)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), status.State)
			}
			return nil
		},
	}
}

// newPublisher builds the publish workflow rooted at the current directory.
func newPublisher(cmd *cobra.Command, provider publish.ConfigProvider) (*publish.Publisher, error) {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return nil, err
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &publish.Publisher{
		Dir:      dir,
		Provider: provider,
		Author:   gitx.Signature{Name: cfg.AuthorName, Email: cfg.AuthorEmail},
		Logger:   newLogger(),
	}, nil
}
