// Package core holds the domain model of the host: the workload
// resource tagged union, the control-plane client surface, the watch
// vocabulary, and the use-cases consumed by the CLI and handlers.
// It is free of infrastructure dependencies.
package core

import (
	"context"
	"io"
)

// WorkloadUseCase validates requests and delegates to the configured
// workload backend.
type WorkloadUseCase struct {
	client WorkloadClient
}

// NewWorkloadUseCase returns a WorkloadUseCase backed by the given
// client.
func NewWorkloadUseCase(client WorkloadClient) *WorkloadUseCase {
	return &WorkloadUseCase{client: client}
}

// GetResource returns a single resource by kind, namespace, and name.
func (uc *WorkloadUseCase) GetResource(ctx context.Context, kind ResourceKind, namespace, name string) (*Resource, error) {
	if err := validateRef(kind, name); err != nil {
		return nil, err
	}
	return uc.client.Get(ctx, kind, namespace, name)
}

// CreateResource validates and stores a new resource, returning the
// stored copy with backend-assigned fields populated.
func (uc *WorkloadUseCase) CreateResource(ctx context.Context, resource *Resource) (*Resource, error) {
	if resource == nil {
		return nil, &ErrInvalidInput{Field: "resource", Message: "resource is required"}
	}
	if err := resource.Validate(); err != nil {
		return nil, err
	}
	return uc.client.Create(ctx, resource)
}

// DeleteResource removes a resource. Whether deletion is supported
// depends on the backend.
func (uc *WorkloadUseCase) DeleteResource(ctx context.Context, kind ResourceKind, namespace, name string) error {
	if err := validateRef(kind, name); err != nil {
		return err
	}
	return uc.client.Delete(ctx, kind, namespace, name)
}

// ListResources returns all resources of a kind in the namespace.
func (uc *WorkloadUseCase) ListResources(ctx context.Context, kind ResourceKind, namespace string) ([]*Resource, error) {
	if !kind.Valid() {
		return nil, &ErrInvalidInput{Field: "kind", Message: "unknown resource kind"}
	}
	return uc.client.List(ctx, kind, namespace)
}

// WatchResources opens a watch stream for a kind.
func (uc *WorkloadUseCase) WatchResources(ctx context.Context, kind ResourceKind, namespace string) (Watcher, error) {
	if !kind.Valid() {
		return nil, &ErrInvalidInput{Field: "kind", Message: "unknown resource kind"}
	}
	return uc.client.Watch(ctx, kind, namespace)
}

// StreamLogs opens a log reader for the referenced resource.
func (uc *WorkloadUseCase) StreamLogs(ctx context.Context, kind ResourceKind, namespace, name string, streamType LogStreamType, opts LogOptions) (io.ReadCloser, error) {
	resource, err := uc.GetResource(ctx, kind, namespace, name)
	if err != nil {
		return nil, err
	}
	return uc.client.LogStream(ctx, resource, streamType, opts)
}

func validateRef(kind ResourceKind, name string) error {
	if !kind.Valid() {
		return &ErrInvalidInput{Field: "kind", Message: "unknown resource kind"}
	}
	if name == "" {
		return &ErrInvalidInput{Field: "name", Message: "name is required"}
	}
	return nil
}
