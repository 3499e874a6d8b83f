package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks live Sessions by a generated id, so collaborators
// that need to refer to many Sessions at once (a Server's connected
// players) hold ids rather than a web of Session pointers into each
// other. bridge.Bridge keeps no Registry of its Pairs.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]*Session
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Session)}
}

// Add registers s under a freshly generated id and returns it.
func (r *Registry) Add(s *Session) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.byID[id] = s
	r.mu.Unlock()
	return id
}

// Remove drops id from the registry. A no-op if id is unknown.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

// Get returns the Session registered under id, if any.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

// Len reports how many Sessions are currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Each calls fn for every currently registered (id, Session) pair. fn
// observes a point-in-time snapshot; Sessions added or removed during
// the call are not visited.
func (r *Registry) Each(fn func(id string, s *Session)) {
	r.mu.RLock()
	snapshot := make(map[string]*Session, len(r.byID))
	for id, s := range r.byID {
		snapshot[id] = s
	}
	r.mu.RUnlock()
	for id, s := range snapshot {
		fn(id, s)
	}
}
