package simulation

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a fresh, unconfigured simulation
type Factory func() Simulation

// Registry maps simulation names to factories
type Registry struct {
	mu          sync.RWMutex
	simulations map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{simulations: make(map[string]Factory)}
}

// Register adds a simulation. Names are unique.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("simulation name is required")
	}
	if factory == nil {
		return fmt.Errorf("simulation %s has no factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.simulations[name]; exists {
		return fmt.Errorf("simulation %s already registered", name)
	}
	r.simulations[name] = factory
	return nil
}

// Get returns a new instance of the requested simulation
func (r *Registry) Get(name string) (Simulation, error) {
	r.mu.RLock()
	factory, exists := r.simulations[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("simulation %s not found", name)
	}
	return factory(), nil
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.simulations[name]
	return ok
}

// List returns all registered simulation names in alphabetical order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.simulations))
	for name := range r.simulations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global simulation registry
var DefaultRegistry = NewRegistry()
