package fake

import (
	"sync"

	"github.com/canopyhost/canopy/internal/core"
)

// subscription is one watcher's private event queue. Publishing
// appends under the subscription's own lock and never blocks the
// creator; a slow consumer accumulates events in its own backlog
// instead of stalling the store.
type subscription struct {
	client *Client
	kind   core.ResourceKind

	mu    sync.Mutex
	queue []core.WatchEvent

	wake chan struct{}
	done chan struct{}
	out  chan core.WatchEvent

	stopOnce sync.Once
}

func newSubscription(client *Client, kind core.ResourceKind) *subscription {
	return &subscription{
		client: client,
		kind:   kind,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan core.WatchEvent),
	}
}

var _ core.Watcher = (*subscription)(nil)

// ResultChan returns the channel events are delivered on. It is
// closed after Stop, or once the watch context is cancelled.
func (s *subscription) ResultChan() <-chan core.WatchEvent {
	return s.out
}

// Stop deregisters the subscription from the store's broadcast list
// and terminates the forwarder. Idempotent; runs on every watch exit
// path so a cancelled watcher cannot leak into future broadcasts.
func (s *subscription) Stop() {
	s.stopOnce.Do(func() {
		s.client.removeSubscription(s)
		close(s.done)
	})
}

// publish enqueues an event. Called with the store lock held, which
// is safe because only s.mu is taken here.
func (s *subscription) publish(ev core.WatchEvent) {
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// forward drains the backlog into the delivery channel in order,
// sleeping on wake when the backlog is empty. The buffered wake
// channel means a publish between the empty check and the wait is
// never lost.
func (s *subscription) forward() {
	defer close(s.out)
	for {
		s.mu.Lock()
		var (
			ev core.WatchEvent
			ok bool
		)
		if len(s.queue) > 0 {
			ev, ok = s.queue[0], true
			s.queue = s.queue[1:]
		}
		s.mu.Unlock()

		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}

		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}
