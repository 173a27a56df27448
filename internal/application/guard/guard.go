// Package guard provides a keyed in-flight registry. Mutating operations
// acquire their key before touching the backend so a double-submit of the
// same action is rejected instead of executed twice.
package guard

import (
	"sync"

	"github.com/astren/core/internal/domain/entities"
)

// Registry tracks which operation keys are currently executing.
type Registry struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		inFlight: make(map[string]struct{}),
	}
}

// TryAcquire claims key for the caller. When the key is already held it
// returns entities.ErrOperationInFlight and the caller must not proceed.
func (r *Registry) TryAcquire(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, held := r.inFlight[key]; held {
		return entities.ErrOperationInFlight
	}
	r.inFlight[key] = struct{}{}
	return nil
}

// Release frees key. Releasing an unheld key is a no-op so callers can
// defer it unconditionally.
func (r *Registry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, key)
}

// Held reports whether key is currently claimed.
func (r *Registry) Held(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, held := r.inFlight[key]
	return held
}
