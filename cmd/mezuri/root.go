// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for mezuri.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mezuri/mezuri/internal/config"
	"github.com/mezuri/mezuri/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug logging.
	verbose bool
	// cfgFile allows specifying a custom config file.
	cfgFile string

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = &cobra.Command{
		Use:   "mezuri",
		Short: "Version and publish mezuri components",
		Long: TitleStyle.Render("mezuri") + SubtitleStyle.Render(" - component versioning and publishing") + `

mezuri versions reusable components (sources and operators) whose code
lives in a git repository, and publishes them to a central registry.
The repository history stays the source of truth: versions are claimed
through annotated tags, and the registry independently verifies every
published version against the remote before recording it.

` + SubtitleStyle.Render("Quick Start:") + `
  1. mezuri source init                   Initialize a component
  2. mezuri source generate -f <file>     Generate its interface declaration
  3. mezuri source commit "message"       Commit and tag a version
  4. mezuri source publish                Push and register the version

` + SubtitleStyle.Render("Registry:") + `
  mezuri registry serve                   Host a component registry`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/mezuri/config.yaml)")

	rootCmd.AddCommand(newComponentCommand("source", "sources", "source.json"))
	rootCmd.AddCommand(newComponentCommand("operator", "operators", "operator.json"))
	rootCmd.AddCommand(newRegistryCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// loadConfig loads the CLI configuration honoring the --config flag.
func loadConfig(ctx context.Context) (*config.Config, error) {
	return config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
}

// newLogger builds the CLI logger honoring --verbose.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err == nil {
		return
	}

	if rendered, renderErr := renderIssue(err); renderErr == nil && rendered != "" {
		fmt.Fprint(os.Stderr, rendered)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(int(exitErr.Code))
	}
	os.Exit(1)
}

// renderIssue returns the rendered explanation for errors that have one.
func renderIssue(err error) (string, error) {
	iss := issue.FromError(err)
	if iss == nil {
		return "", nil
	}
	return iss.Render()
}
