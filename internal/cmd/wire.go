package cmd

import (
	"github.com/google/wire"

	"github.com/canopyhost/canopy/internal/cmd/serve"
)

// ProviderSet is the Wire provider set for the CLI layer.
var ProviderSet = wire.NewSet(
	serve.NewServer,
	serve.NewHandler,
)
