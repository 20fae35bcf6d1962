package core

import (
	"context"
	"io"
)

// LogStreamType selects which output stream of a workload to read.
type LogStreamType string

const (
	LogStreamStdOut LogStreamType = "stdout"
	LogStreamStdErr LogStreamType = "stderr"
)

// LogOptions controls log streaming behaviour.
type LogOptions struct {
	// Follow keeps the stream open and delivers new output as the
	// workload produces it.
	Follow bool
	// Timestamps prefixes each line with its emission time.
	Timestamps bool
}

// WorkloadClient is the control-plane surface the host talks to. It
// is implemented by the in-memory fake backend (deterministic tests,
// dry runs) and by the Kubernetes backend; both must accept and
// reject the same resource shapes.
//
//nolint:revive // allows this exported interface name.
type WorkloadClient interface {
	// Get returns the unique resource of the given kind matching
	// namespace and name. The empty namespace is the default
	// namespace. Fails with a NotFound domain error when absent.
	Get(ctx context.Context, kind ResourceKind, namespace, name string) (*Resource, error)

	// Create stores a deep copy of the resource, applies kind
	// side effects (service address and port allocation), and
	// returns the stored copy. Callers must treat the returned
	// resource as read-only.
	Create(ctx context.Context, resource *Resource) (*Resource, error)

	// Delete removes the resource. Backends that do not support
	// deletion fail with an Unimplemented domain error.
	Delete(ctx context.Context, kind ResourceKind, namespace, name string) error

	// List returns all resources of the given kind whose namespace
	// equals the filter, in insertion order.
	List(ctx context.Context, kind ResourceKind, namespace string) ([]*Resource, error)

	// Watch replays every currently stored resource of the kind as
	// an ADDED event, then streams subsequent events of that kind
	// until ctx is cancelled or the watcher is stopped.
	Watch(ctx context.Context, kind ResourceKind, namespace string) (Watcher, error)

	// LogStream opens a reader over the workload's log output.
	// Callers must treat the stream as opaque text and close it.
	LogStream(ctx context.Context, resource *Resource, streamType LogStreamType, opts LogOptions) (io.ReadCloser, error)
}
