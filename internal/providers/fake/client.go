// Package fake provides an in-memory core.WorkloadClient for
// deterministic testing and dry runs. It simulates the control-plane
// client surface (create, get, list, watch, log streaming) without a
// real cluster.
package fake

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/canopyhost/canopy/internal/core"
)

// DefaultPortStart is the pre-increment base for auto-assigned service
// ports: the first allocated port is DefaultPortStart+1.
const DefaultPortStart = 52000

// Option configures a Client.
type Option func(*Client)

// WithPortStart overrides the base of the service port counter.
func WithPortStart(port int32) Option {
	return func(c *Client) { c.portStart = port }
}

// WithLogger configures a structured logger. Defaults to slog.Default
// with a "component" attribute.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Client is an in-memory workload backend. The resource collection
// and the subscriber list share one mutex so that "append resource +
// broadcast to current subscribers" is a single indivisible step: a
// watcher registered concurrently with a create either replays the
// new resource or receives its event, never both and never neither.
//
// The port counter is a per-instance atomic, not process state;
// construct one Client per test fixture to avoid cross-test leakage.
type Client struct {
	log       *slog.Logger
	portStart int32
	nextPort  atomic.Int32

	mu        sync.Mutex
	resources []*core.Resource
	subs      map[*subscription]struct{}
}

// NewClient returns an empty in-memory backend.
func NewClient(opts ...Option) *Client {
	c := &Client{
		portStart: DefaultPortStart,
		subs:      make(map[*subscription]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default().With("component", "fake-workload")
	}
	c.nextPort.Store(c.portStart)
	return c
}

var _ core.WorkloadClient = (*Client)(nil)

// Get returns the stored resource matching (kind, namespace, name).
// The empty namespace is the default namespace.
func (c *Client) Get(_ context.Context, kind core.ResourceKind, namespace, name string) (*core.Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.resources {
		if r.Kind == kind && r.Metadata.Namespace == namespace && r.Metadata.Name == name {
			return r, nil
		}
	}
	return nil, core.NewNotFound(kind, namespace, name)
}

// Create stores a deep copy of the resource and broadcasts an ADDED
// event to every subscription of the same kind. Namespace is not
// consulted at publish time; subscriptions self-filter by kind only.
// The input is cloned through a JSON round trip so the caller's
// reference never aliases stored state.
func (c *Client) Create(_ context.Context, resource *core.Resource) (*core.Resource, error) {
	stored, err := resource.DeepCopy()
	if err != nil {
		return nil, err
	}

	// Service side effects happen before the stored copy becomes
	// visible. The counter is atomic so allocation stays correct
	// even for concurrent creates racing toward the lock.
	if stored.Kind == core.KindService {
		c.allocateServiceEndpoint(stored)
	}
	stored.Metadata.UID = uuid.New().String()
	stored.Metadata.CreationTimestamp = time.Now().UTC()

	c.mu.Lock()
	c.resources = append(c.resources, stored)
	for sub := range c.subs {
		if sub.kind == stored.Kind {
			sub.publish(core.WatchEvent{Type: core.WatchEventAdded, Resource: stored})
		}
	}
	c.mu.Unlock()

	c.log.Debug("created resource",
		"kind", stored.Kind,
		"namespace", stored.Metadata.Namespace,
		"name", stored.Metadata.Name,
	)

	return stored, nil
}

// Delete is deliberately unsupported: the fake has no delete
// semantics, and inventing them would let tests pass against
// behaviour the double cannot honour.
func (c *Client) Delete(_ context.Context, _ core.ResourceKind, _, _ string) error {
	return core.NewUnimplemented("delete")
}

// List returns all stored resources of the kind whose namespace
// equals the filter, in insertion order.
func (c *Client) List(_ context.Context, kind core.ResourceKind, namespace string) ([]*core.Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*core.Resource
	for _, r := range c.resources {
		if r.Kind == kind && r.Metadata.Namespace == namespace {
			out = append(out, r)
		}
	}
	return out, nil
}

// Watch replays every currently stored resource of the kind as ADDED,
// in insertion order, then streams each future creation of that kind.
// The namespace argument is accepted for interface parity with the
// real client but is not applied to the live stream. Registration and
// replay snapshot happen under the store lock, so no creation is
// missed or delivered twice around the subscription point.
func (c *Client) Watch(ctx context.Context, kind core.ResourceKind, _ string) (core.Watcher, error) {
	sub := newSubscription(c, kind)

	c.mu.Lock()
	for _, r := range c.resources {
		if r.Kind == kind {
			sub.queue = append(sub.queue, core.WatchEvent{Type: core.WatchEventAdded, Resource: r})
		}
	}
	c.subs[sub] = struct{}{}
	c.mu.Unlock()

	go sub.forward()
	go func() {
		select {
		case <-ctx.Done():
			sub.Stop()
		case <-sub.done:
		}
	}()

	return sub, nil
}

// LogStream returns a fixed descriptive text stream. The fake has no
// real log source; callers must treat the payload as opaque text.
func (c *Client) LogStream(_ context.Context, resource *core.Resource, streamType core.LogStreamType, opts core.LogOptions) (io.ReadCloser, error) {
	ns := resource.Metadata.Namespace
	if ns == "" {
		ns = "default"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "logs for %s %s/%s (%s stream)\n", resource.Kind, ns, resource.Metadata.Name, streamType)
	if opts.Follow {
		b.WriteString("follow enabled\n")
	}
	if opts.Timestamps {
		b.WriteString("timestamps enabled\n")
	}
	return io.NopCloser(strings.NewReader(b.String())), nil
}

// allocateServiceEndpoint fills in the computed service status. An
// explicit desired port wins and leaves the counter untouched; an
// unset port draws the next value from the monotonic counter.
func (c *Client) allocateServiceEndpoint(r *core.Resource) {
	address := "localhost"
	if r.Service.Spec.Address != nil {
		address = *r.Service.Spec.Address
	}

	port := int32(0)
	if r.Service.Spec.Port != nil {
		port = *r.Service.Spec.Port
	} else {
		port = c.nextPort.Add(1)
	}

	r.Service.Status = core.ServiceStatus{
		EffectiveAddress: address,
		EffectivePort:    port,
	}
}

func (c *Client) removeSubscription(sub *subscription) {
	c.mu.Lock()
	delete(c.subs, sub)
	c.mu.Unlock()
}
