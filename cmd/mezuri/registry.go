// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mezuri/mezuri/internal/registry"
	"github.com/mezuri/mezuri/pkg/types"
)

// newRegistryCommand builds the `mezuri registry` command group.
func newRegistryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Host a component registry",
	}
	cmd.AddCommand(newRegistryServeCommand())
	return cmd
}

func newRegistryServeCommand() *cobra.Command {
	var (
		port       int
		scratchDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registry HTTP server",
		Long: `Run the registry HTTP server. Every registered version is verified
before it is recorded: the registry clones the claimed git remote into a
scratch directory and checks the tag, the commit hash and the
specification file independently of what the publisher reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if port == 0 {
				port = int(cfg.ListenPort)
			}
			if err := types.ListenPort(port).Validate(); err != nil {
				return err
			}
			if scratchDir == "" {
				scratchDir = cfg.ScratchRoot.String()
			}

			logger := newLogger()
			service := registry.NewService(
				registry.NewMemoryStore(),
				&registry.GitVerifier{ScratchRoot: scratchDir, Log: logger},
				logger,
			)

			addr := fmt.Sprintf(":%d", port)
			server := &http.Server{
				Addr:              addr,
				Handler:           registry.NewServer(service, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			logger.Info("registry listening", "addr", addr)
			return server.ListenAndServe()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from configuration)")
	cmd.Flags().StringVar(&scratchDir, "scratch-dir", "", "parent directory for verification clones (default: system temp)")
	return cmd
}
