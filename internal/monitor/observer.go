package monitor

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Observer receives process change events from the Monitor. Delivery is
// best-effort and synchronous with the poll that produced the event; a
// failing observer never blocks delivery to the others.
type Observer interface {
	ProcessAdded(p TrackedProcess)
	ProcessRemoved(pid int32)
	ProcessUpdated(p TrackedProcess)
}

// BatchObserver is implemented by observers that want category re-class
// updates as a single call instead of one ProcessUpdated per record.
type BatchObserver interface {
	Observer
	ProcessesUpdated(ps []TrackedProcess)
}

// registry holds strong observer references keyed by subscription id.
// Cleanup is caller-driven through unsubscribe.
type registry struct {
	mu        sync.Mutex
	observers map[string]Observer
	logger    *slog.Logger
}

func newRegistry(logger *slog.Logger) *registry {
	return &registry{
		observers: make(map[string]Observer),
		logger:    logger,
	}
}

func (r *registry) subscribe(o Observer) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.observers[id] = o
	r.mu.Unlock()
	return id
}

func (r *registry) unsubscribe(id string) {
	r.mu.Lock()
	delete(r.observers, id)
	r.mu.Unlock()
}

func (r *registry) list() []Observer {
	r.mu.Lock()
	defer r.mu.Unlock()

	observers := make([]Observer, 0, len(r.observers))
	for _, o := range r.observers {
		observers = append(observers, o)
	}
	return observers
}

func (r *registry) notifyAdded(p TrackedProcess) {
	for _, o := range r.list() {
		r.deliver("added", func() { o.ProcessAdded(p) })
	}
}

func (r *registry) notifyRemoved(pid int32) {
	for _, o := range r.list() {
		r.deliver("removed", func() { o.ProcessRemoved(pid) })
	}
}

func (r *registry) notifyUpdated(p TrackedProcess) {
	for _, o := range r.list() {
		r.deliver("updated", func() { o.ProcessUpdated(p) })
	}
}

func (r *registry) notifyBatchUpdated(ps []TrackedProcess) {
	for _, o := range r.list() {
		r.deliver("batch update", func() {
			if b, ok := o.(BatchObserver); ok {
				b.ProcessesUpdated(ps)
				return
			}
			for _, p := range ps {
				o.ProcessUpdated(p)
			}
		})
	}
}

// deliver invokes one observer callback, recovering a panic so a broken
// subscriber cannot abort the poll or starve other subscribers.
func (r *registry) deliver(event string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("observer callback panicked", "event", event, "panic", rec)
		}
	}()
	fn()
}
