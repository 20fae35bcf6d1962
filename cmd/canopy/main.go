// Package main is the entry point for the canopy binary. It supports
// two subcommands:
//
//   - serve:   runs the workload API host (gRPC + HTTP)
//   - publish: composes an application model and writes its manifest
//
// Dependencies are assembled via Google Wire; see wire.go.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/canopyhost/canopy/internal/cmd"
	"github.com/canopyhost/canopy/internal/cmd/serve"
	"github.com/canopyhost/canopy/internal/config"
)

// version is injected at build time via -ldflags
// (e.g. -ldflags "-X main.version=v1.2.3").
var version = "devel"

func main() {
	// Cancel on SIGINT (Ctrl+C) or SIGTERM (container runtime).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Cobra is configured with SilenceErrors: true, so we
		// print the error here for consistent formatting.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires all dependencies and executes the root Cobra command.
func run(ctx context.Context) error {
	conf, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if conf.ServeDebugEnabled() {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	rootCmd, err := newCmd(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return rootCmd.ExecuteContext(ctx)
}

// newCmd constructs the root Cobra command and registers the serve
// and publish subcommands. The serve runtime is built lazily through
// the Wire injector so the backend is only touched when serving.
func newCmd(conf *config.Config) (*cobra.Command, error) {
	c := &cobra.Command{
		Use:           "canopy",
		Short:         "Canopy: a local host for distributed applications and their deployment manifests.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd, err := cmd.NewServeCommand(conf, func() (*serve.Server, func(), error) {
		return wireServe(conf)
	})
	if err != nil {
		return nil, err
	}

	publishCmd, err := cmd.NewPublishCommand(conf, version)
	if err != nil {
		return nil, err
	}

	c.AddCommand(serveCmd, publishCmd)

	return c, nil
}
