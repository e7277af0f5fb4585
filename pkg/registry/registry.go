package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/history"
)

// SliceReducer reduces one named slice of a session document.
type SliceReducer = history.Reducer[any, domain.Action]

// Registry manages the available slice reducers.
type Registry struct {
	mu     sync.RWMutex
	slices map[string]SliceReducer
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		slices: make(map[string]SliceReducer),
	}
}

// Register adds a slice reducer to the registry.
// If a slice with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn SliceReducer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slices[name] = fn
}

// Names returns the registered slice names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.slices))
	for name := range r.slices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the reducers for the given names, ready for history.Combine.
// An empty selection returns every registered slice.
func (r *Registry) Select(names ...string) (map[string]SliceReducer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := make(map[string]SliceReducer)
	if len(names) == 0 {
		for name, fn := range r.slices {
			selected[name] = fn
		}
		return selected, nil
	}

	for _, name := range names {
		fn, ok := r.slices[name]
		if !ok {
			return nil, fmt.Errorf("slice not found: %s", name)
		}
		selected[name] = fn
	}
	return selected, nil
}
