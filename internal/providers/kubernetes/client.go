package kubernetes

import (
	"context"
	"io"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/canopyhost/canopy/internal/core"
)

// Client implements core.WorkloadClient by delegating to the typed
// Kubernetes clientset. Executable resources have no cluster analog
// and fail with Unimplemented.
type Client struct {
	clientset kubernetes.Interface
}

var _ core.WorkloadClient = (*Client)(nil)

// Get returns a single resource by kind, namespace, and name.
func (c *Client) Get(ctx context.Context, kind core.ResourceKind, namespace, name string) (*core.Resource, error) {
	ns := namespaceOrDefault(namespace)

	switch kind {
	case core.KindService:
		svc, err := c.clientset.CoreV1().Services(ns).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, wrapK8sError(err)
		}
		return serviceToResource(svc), nil
	case core.KindContainer:
		pod, err := c.clientset.CoreV1().Pods(ns).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, wrapK8sError(err)
		}
		return podToResource(pod), nil
	default:
		return nil, core.NewUnimplemented("get " + string(kind))
	}
}

// Create submits the resource to the cluster and returns the stored
// state. Service address and port assignment is performed by the
// cluster, not by this client.
func (c *Client) Create(ctx context.Context, resource *core.Resource) (*core.Resource, error) {
	ns := namespaceOrDefault(resource.Metadata.Namespace)

	switch resource.Kind {
	case core.KindService:
		created, err := c.clientset.CoreV1().Services(ns).Create(ctx, resourceToService(resource), metav1.CreateOptions{})
		if err != nil {
			return nil, wrapK8sError(err)
		}
		return serviceToResource(created), nil
	case core.KindContainer:
		created, err := c.clientset.CoreV1().Pods(ns).Create(ctx, resourceToPod(resource), metav1.CreateOptions{})
		if err != nil {
			return nil, wrapK8sError(err)
		}
		return podToResource(created), nil
	default:
		return nil, core.NewUnimplemented("create " + string(resource.Kind))
	}
}

// Delete removes the resource from the cluster.
func (c *Client) Delete(ctx context.Context, kind core.ResourceKind, namespace, name string) error {
	ns := namespaceOrDefault(namespace)

	switch kind {
	case core.KindService:
		return wrapK8sError(c.clientset.CoreV1().Services(ns).Delete(ctx, name, metav1.DeleteOptions{}))
	case core.KindContainer:
		return wrapK8sError(c.clientset.CoreV1().Pods(ns).Delete(ctx, name, metav1.DeleteOptions{}))
	default:
		return core.NewUnimplemented("delete " + string(kind))
	}
}

// List returns all resources of the kind in the namespace, in the
// order the API server reports them.
func (c *Client) List(ctx context.Context, kind core.ResourceKind, namespace string) ([]*core.Resource, error) {
	ns := namespaceOrDefault(namespace)

	switch kind {
	case core.KindService:
		list, err := c.clientset.CoreV1().Services(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, wrapK8sError(err)
		}
		out := make([]*core.Resource, 0, len(list.Items))
		for i := range list.Items {
			out = append(out, serviceToResource(&list.Items[i]))
		}
		return out, nil
	case core.KindContainer:
		list, err := c.clientset.CoreV1().Pods(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, wrapK8sError(err)
		}
		out := make([]*core.Resource, 0, len(list.Items))
		for i := range list.Items {
			out = append(out, podToResource(&list.Items[i]))
		}
		return out, nil
	default:
		return nil, core.NewUnimplemented("list " + string(kind))
	}
}

// Watch opens a long-lived watch for the kind, translating
// apimachinery events into the domain vocabulary. Unlike the fake
// backend, the namespace filter applies to the live stream here:
// this is the real client behaviour the fake deviates from.
func (c *Client) Watch(ctx context.Context, kind core.ResourceKind, namespace string) (core.Watcher, error) {
	ns := namespaceOrDefault(namespace)
	opts := metav1.ListOptions{Watch: true}

	switch kind {
	case core.KindService:
		w, err := c.clientset.CoreV1().Services(ns).Watch(ctx, opts)
		if err != nil {
			return nil, wrapK8sError(err)
		}
		return newWatcherAdapter(w, func(obj any) *core.Resource {
			svc, ok := obj.(*corev1.Service)
			if !ok {
				return nil
			}
			return serviceToResource(svc)
		}), nil
	case core.KindContainer:
		w, err := c.clientset.CoreV1().Pods(ns).Watch(ctx, opts)
		if err != nil {
			return nil, wrapK8sError(err)
		}
		return newWatcherAdapter(w, func(obj any) *core.Resource {
			pod, ok := obj.(*corev1.Pod)
			if !ok {
				return nil
			}
			return podToResource(pod)
		}), nil
	default:
		return nil, core.NewUnimplemented("watch " + string(kind))
	}
}

// LogStream opens a streaming log reader for a container resource.
func (c *Client) LogStream(ctx context.Context, resource *core.Resource, streamType core.LogStreamType, opts core.LogOptions) (io.ReadCloser, error) {
	if resource.Kind != core.KindContainer {
		return nil, core.NewUnimplemented("log streaming for " + string(resource.Kind))
	}
	if streamType != core.LogStreamStdOut {
		// The pod log API merges stdout and stderr; only the
		// combined stream is addressable.
		return nil, core.NewUnimplemented("log stream type " + string(streamType))
	}

	ns := namespaceOrDefault(resource.Metadata.Namespace)
	logOpts := &corev1.PodLogOptions{
		Follow:     opts.Follow,
		Timestamps: opts.Timestamps,
	}

	stream, err := c.clientset.CoreV1().Pods(ns).GetLogs(resource.Metadata.Name, logOpts).Stream(ctx)
	if err != nil {
		return nil, wrapK8sError(err)
	}
	return stream, nil
}

func namespaceOrDefault(namespace string) string {
	if namespace == "" {
		return metav1.NamespaceDefault
	}
	return namespace
}
