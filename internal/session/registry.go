package session

import "sync"

// Registry hands out one mutex per session ID so operations on the same
// session are serialized while different sessions proceed in parallel.
// Entries are reference counted and dropped once no caller holds or waits
// on them.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*lockEntry)}
}

// Lock blocks until the caller holds the exclusion scope of id and returns
// the function that releases it.
func (r *Registry) Lock(id string) (unlock func()) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = &lockEntry{}
		r.entries[id] = e
	}
	e.refs++
	r.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			r.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(r.entries, id)
			}
			r.mu.Unlock()
		})
	}
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
