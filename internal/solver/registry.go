package solver

import (
	"sync"

	"github.com/zyedidia/generic/mapset"

	"github.com/rybkr/orepack/internal/board"
)

// Registry records every grid the search has produced, so that boards reached
// through different placement orders are explored only once.
// It is safe for concurrent use.
type Registry struct {
	mu   sync.Mutex
	seen mapset.Set[string]
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{seen: mapset.New[string]()}
}

// TryRegister records b and returns true if its grid was not seen before.
// It returns false otherwise.
func (r *Registry) TryRegister(b *board.Board) bool {
	key := b.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen.Has(key) {
		return false
	}
	r.seen.Put(key)
	return true
}

// Len returns the number of distinct grids registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen.Size()
}
