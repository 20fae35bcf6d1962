package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canopyhost/canopy/internal/compose"
	"github.com/canopyhost/canopy/internal/config"
	"github.com/canopyhost/canopy/internal/manifest"
)

// NewPublishCommand returns the "publish" subcommand. It composes an
// application model from the configured relays and parameters and
// writes its manifest to the output path.
func NewPublishCommand(conf *config.Config, version string) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "publish [app-name]",
		Short:   "Compose an application model and write its deployment manifest",
		Example: "canopy publish shop --relays=events --parameters=api-key --output=canopy.manifest.json",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appName := "app"
			if len(args) > 0 {
				appName = args[0]
			}

			builder, err := buildModel(appName, conf.PublishRelays(), conf.PublishParameters())
			if err != nil {
				return err
			}

			publisher := manifest.NewPublisher(version)
			output := conf.PublishOutput()
			if err := publisher.PublishFile(cmd.Context(), builder.Model(), output); err != nil {
				return fmt.Errorf("publish %q: %w", appName, err)
			}
			return nil
		},
	}

	if err := conf.BindFlags(cmd.Flags(), config.PublishOptions); err != nil {
		return nil, err
	}

	return cmd, nil
}

// buildModel assembles the compose model from the configured resource
// lists. Parameter specs are either "name" or "name=default".
func buildModel(appName string, relays, parameters []string) (*compose.Builder, error) {
	builder := compose.NewBuilder(appName)

	for _, spec := range parameters {
		name, defaultValue, hasDefault := strings.Cut(spec, "=")
		var opts []compose.ParameterOption
		if hasDefault {
			opts = append(opts, compose.WithDefault(defaultValue))
		}
		if _, err := builder.AddParameter(name, opts...); err != nil {
			return nil, fmt.Errorf("add parameter %q: %w", name, err)
		}
	}

	for _, name := range relays {
		if _, err := builder.AddMessageRelay(name); err != nil {
			return nil, err
		}
	}

	return builder, nil
}
