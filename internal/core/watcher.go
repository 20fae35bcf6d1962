package core

// WatchEventType represents the type of a resource watch event.
// This is a domain-level type that decouples the core layer from
// k8s.io/apimachinery/pkg/watch.EventType.
type WatchEventType string

const (
	WatchEventAdded    WatchEventType = "ADDED"
	WatchEventModified WatchEventType = "MODIFIED"
	WatchEventDeleted  WatchEventType = "DELETED"
	WatchEventError    WatchEventType = "ERROR"
)

// WatchEvent is a single event on a resource watch stream. Resource
// is owned by the emitting backend; consumers must treat it as
// read-only.
type WatchEvent struct {
	Type     WatchEventType
	Resource *Resource
}

// Watcher provides a channel of WatchEvents and a way to stop the
// underlying watch, keeping the domain layer free of client-go watch
// types. ResultChan is closed when the watch ends or Stop is called;
// Stop is idempotent and safe to call concurrently with channel
// reads.
type Watcher interface {
	ResultChan() <-chan WatchEvent
	Stop()
}
