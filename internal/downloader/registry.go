package downloader

import "sync"

// Registry maps in-flight job ids to their one-shot stop signal.
type Registry struct {
	signals map[string]chan struct{}
	mu      sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{signals: make(map[string]chan struct{})}
}

// Register creates the stop signal for id, replacing any stale entry.
func (r *Registry) Register(id string) <-chan struct{} {
	ch := make(chan struct{})
	r.mu.Lock()
	r.signals[id] = ch
	r.mu.Unlock()
	return ch
}

// Cancel fires and removes the signal for id. It returns false when id has no
// registered signal.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	ch, ok := r.signals[id]
	delete(r.signals, id)
	r.mu.Unlock()

	if ok {
		close(ch)
	}
	return ok
}

// Unregister drops the signal for id without firing it.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.signals, id)
	r.mu.Unlock()
}

func (r *Registry) IsRegistered(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.signals[id]
	return ok
}
