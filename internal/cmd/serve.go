// Package cmd defines the Cobra subcommands (serve, publish) and
// their Wire provider sets. It bridges configuration, dependency
// injection, and the transport/application layers.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canopyhost/canopy/internal/cmd/serve"
	"github.com/canopyhost/canopy/internal/config"
)

// ServeInjector builds the serve runtime with its dependency graph.
type ServeInjector func() (*serve.Server, func(), error)

// NewServeCommand returns the "serve" subcommand. The server itself
// is constructed lazily through the injector so that backends are
// only initialised when the command actually runs.
func NewServeCommand(conf *config.Config, newServer ServeInjector) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start the host that provides gRPC and HTTP endpoints for workload resources",
		Example: "canopy serve --address=:8600 --backend=fake",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, cleanup, err := newServer()
			if err != nil {
				return fmt.Errorf("failed to initialize server: %w", err)
			}
			defer cleanup()

			cfg := serve.Config{
				Address:        conf.ServeAddress(),
				AllowedOrigins: conf.ServeAllowedOrigins(),
				AuthToken:      conf.ServeAuthToken(),
			}

			return srv.Run(cmd.Context(), cfg)
		},
	}

	if err := conf.BindFlags(cmd.Flags(), config.ServeOptions); err != nil {
		return nil, err
	}

	return cmd, nil
}
