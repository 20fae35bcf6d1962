// Package providers aggregates the workload backend implementations
// (fake, kubernetes) into a single Wire provider set and selects the
// active backend from configuration.
package providers

import (
	"fmt"

	"github.com/google/wire"

	"github.com/canopyhost/canopy/internal/config"
	"github.com/canopyhost/canopy/internal/core"
	"github.com/canopyhost/canopy/internal/providers/fake"
	"github.com/canopyhost/canopy/internal/providers/kubernetes"
)

// ProviderSet is the Wire provider set for all workload backends.
var ProviderSet = wire.NewSet(
	NewWorkloadClient,
)

// NewWorkloadClient constructs the workload backend named by the
// configuration: the in-memory fake (default) or a real Kubernetes
// cluster.
func NewWorkloadClient(conf *config.Config) (core.WorkloadClient, error) {
	switch backend := conf.ServeBackend(); backend {
	case config.BackendFake:
		return fake.NewClient(fake.WithPortStart(conf.FakePortStart())), nil
	case config.BackendKubernetes:
		restConfig, err := kubernetes.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("load kubernetes config: %w", err)
		}
		return kubernetes.New(restConfig)
	default:
		return nil, fmt.Errorf("unknown workload backend %q", backend)
	}
}
