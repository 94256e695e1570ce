package engine

import "sync"

// StopRegistry tracks stop requests per simulation id. It is owned by the
// orchestrator and shared across batch workers; all access goes through the
// single internal lock.
type StopRegistry struct {
	mu    sync.Mutex
	flags map[string]bool
}

// NewStopRegistry creates an empty registry.
func NewStopRegistry() *StopRegistry {
	return &StopRegistry{flags: make(map[string]bool)}
}

// Register creates (or resets) the token for a simulation id. Called when
// orchestration starts.
func (r *StopRegistry) Register(id string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags[id] = false
}

// RequestStop flags the simulation for cancellation. It reports whether the
// request was registered; an empty id is ignored.
func (r *StopRegistry) RequestStop(id string) bool {
	if id == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags[id] = true
	return true
}

// IsStopRequested reports whether a stop has been requested for the id.
// Unknown ids are not stopped.
func (r *StopRegistry) IsStopRequested(id string) bool {
	if id == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flags[id]
}

// Known reports whether the id currently has a token.
func (r *StopRegistry) Known(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.flags[id]
	return ok
}

// Discard drops the token once the simulation (or batch) ends.
func (r *StopRegistry) Discard(id string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flags, id)
}
