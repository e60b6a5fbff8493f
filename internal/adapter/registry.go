package adapter

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// Registry holds the configured interaction sources by name
type Registry struct {
	mu      sync.RWMutex
	sources map[string]InteractionSource
}

// NewRegistry creates an empty source registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]InteractionSource),
	}
}

// Register adds a source under its name
func (r *Registry) Register(source InteractionSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := source.Name()
	if _, exists := r.sources[name]; exists {
		return fmt.Errorf("source %s already registered", name)
	}
	r.sources[name] = source
	log.Printf("Registered interaction source: %s", name)
	return nil
}

// Get returns a source by name
func (r *Registry) Get(name string) (InteractionSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown interaction source %q", name)
	}
	return s, nil
}

// Names lists registered sources, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
