package kubernetes

import (
	"sync"

	"k8s.io/apimachinery/pkg/watch"

	"github.com/canopyhost/canopy/internal/core"
)

// watcherAdapter translates an apimachinery watch stream into the
// domain's watch vocabulary. Bookmark events and objects the convert
// function cannot map are dropped.
type watcherAdapter struct {
	inner   watch.Interface
	convert func(obj any) *core.Resource

	out      chan core.WatchEvent
	done     chan struct{}
	stopOnce sync.Once
}

func newWatcherAdapter(inner watch.Interface, convert func(obj any) *core.Resource) *watcherAdapter {
	a := &watcherAdapter{
		inner:   inner,
		convert: convert,
		out:     make(chan core.WatchEvent),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

var _ core.Watcher = (*watcherAdapter)(nil)

func (a *watcherAdapter) ResultChan() <-chan core.WatchEvent {
	return a.out
}

func (a *watcherAdapter) Stop() {
	a.stopOnce.Do(func() {
		a.inner.Stop()
		close(a.done)
	})
}

func (a *watcherAdapter) run() {
	defer close(a.out)
	for ev := range a.inner.ResultChan() {
		mapped, ok := a.mapEvent(ev)
		if !ok {
			continue
		}
		select {
		case a.out <- mapped:
		case <-a.done:
			return
		}
	}
}

func (a *watcherAdapter) mapEvent(ev watch.Event) (core.WatchEvent, bool) {
	var t core.WatchEventType
	switch ev.Type {
	case watch.Added:
		t = core.WatchEventAdded
	case watch.Modified:
		t = core.WatchEventModified
	case watch.Deleted:
		t = core.WatchEventDeleted
	case watch.Error:
		return core.WatchEvent{Type: core.WatchEventError}, true
	default:
		return core.WatchEvent{}, false
	}

	resource := a.convert(ev.Object)
	if resource == nil {
		return core.WatchEvent{}, false
	}
	return core.WatchEvent{Type: t, Resource: resource}, true
}
