package searchkit

import "sync"

// registry tracks the ordered set of active widgets. Registration order is
// significant: it is the fold order of every parameter composition.
//
// The registry is synchronous and side-effect-free: onChange fires inline
// and the manager, not the registry, is responsible for debouncing.
type registry struct {
	mu       sync.Mutex
	widgets  []*Widget
	onChange func()
}

func newRegistry(onChange func()) *registry {
	return &registry{onChange: onChange}
}

// register appends the widget and signals the change.
func (r *registry) register(w *Widget) {
	r.mu.Lock()
	r.widgets = append(r.widgets, w)
	r.mu.Unlock()
	r.notify()
}

// unregister removes the widget by identity, preserving the order of the
// remaining widgets. Unknown widgets are ignored silently.
func (r *registry) unregister(w *Widget) {
	r.mu.Lock()
	removed := false
	for i, cur := range r.widgets {
		if cur == w {
			r.widgets = append(r.widgets[:i], r.widgets[i+1:]...)
			removed = true
			break
		}
	}
	r.mu.Unlock()
	if removed {
		r.notify()
	}
}

// list returns a snapshot of the widget set in registration order.
func (r *registry) list() []*Widget {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Widget, len(r.widgets))
	copy(out, r.widgets)
	return out
}

// touched signals that a widget's declared configuration changed without a
// membership change.
func (r *registry) touched() {
	r.notify()
}

func (r *registry) notify() {
	if r.onChange != nil {
		r.onChange()
	}
}
