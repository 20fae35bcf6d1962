// Package compose models a distributed application as an ordered
// collection of named resources. Extension helpers (AddMessageRelay,
// AddParameter) register resources into the model declaratively; no
// provisioning happens here — the model only emits manifest documents
// that a downstream provisioner consumes.
package compose

import (
	"fmt"

	"github.com/canopyhost/canopy/internal/manifest"
)

// Builder accumulates an application's model resources. Resource
// names are unique across the whole model; registration order is
// preserved through to the published manifest.
type Builder struct {
	appName   string
	resources []manifest.Resource
	byName    map[string]manifest.Resource
}

// NewBuilder returns an empty application model builder.
func NewBuilder(appName string) *Builder {
	return &Builder{
		appName: appName,
		byName:  make(map[string]manifest.Resource),
	}
}

// AppName returns the name of the application being composed.
func (b *Builder) AppName() string {
	return b.appName
}

// Add registers a model resource. Names must be unique.
func (b *Builder) Add(r manifest.Resource) error {
	name := r.ResourceName()
	if name == "" {
		return fmt.Errorf("model resource name is required")
	}
	if _, exists := b.byName[name]; exists {
		return fmt.Errorf("model already contains a resource named %q", name)
	}
	b.byName[name] = r
	b.resources = append(b.resources, r)
	return nil
}

// Lookup returns the registered resource with the given name.
func (b *Builder) Lookup(name string) (manifest.Resource, bool) {
	r, ok := b.byName[name]
	return r, ok
}

// Model returns the registered resources in registration order. The
// returned slice is a copy; the model itself stays owned by the
// builder.
func (b *Builder) Model() []manifest.Resource {
	out := make([]manifest.Resource, len(b.resources))
	copy(out, b.resources)
	return out
}
