// SPDX-License-Identifier: MPL-2.0

// Package config loads mezuri's CLI configuration: the defaults a user can
// keep out of every invocation. Configuration never decides publish
// semantics; it only seeds the injectable providers.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mezuri/mezuri/pkg/types"
)

const (
	// AppName is the application name.
	AppName = "mezuri"

	// DefaultRegistry is the registry used when neither configuration nor
	// the publish provider names one.
	DefaultRegistry = "http://registry.mezuri.org"

	// DefaultListenPort is the registry server's default port.
	DefaultListenPort = 5000
)

type (
	// Config holds the CLI-level settings.
	Config struct {
		// Registry is the default registry base URL for publishing.
		Registry string `mapstructure:"registry"`

		// AuthorName and AuthorEmail sign commits created by the workflow.
		AuthorName  string `mapstructure:"author_name"`
		AuthorEmail string `mapstructure:"author_email"`

		// ScratchRoot is the parent directory for the registry server's
		// verification clones. Empty means the system temp directory.
		ScratchRoot types.FilesystemPath `mapstructure:"scratch_root"`

		// ListenPort is the registry server's default port.
		ListenPort types.ListenPort `mapstructure:"listen_port"`
	}

	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider backed by the config file
// and MEZURI_* environment variables.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source. A missing config
// file is not an error; defaults and environment variables apply.
func (p *fileProvider) Load(_ context.Context, opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetDefault("registry", DefaultRegistry)
	v.SetDefault("listen_port", DefaultListenPort)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFilePath != "" {
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", opts.ConfigFilePath, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := defaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.ListenPort.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}
