//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/canopyhost/canopy/internal/cmd"
	"github.com/canopyhost/canopy/internal/cmd/serve"
	"github.com/canopyhost/canopy/internal/config"
	"github.com/canopyhost/canopy/internal/core"
	"github.com/canopyhost/canopy/internal/handler"
	"github.com/canopyhost/canopy/internal/providers"
)

func wireServe(*config.Config) (*serve.Server, func(), error) {
	panic(wire.Build(
		cmd.ProviderSet,
		handler.ProviderSet,
		core.ProviderSet,
		providers.ProviderSet,
	))
}
