// Package provider holds the plugin registry and the in-tree plugin set.
package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Missonix/SSAI-brain/internal/brain/service/llm/provider/spi"
)

// Registry maps provider names to plugin factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]spi.PluginFactory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]spi.PluginFactory)}
}

// Register adds a plugin factory; duplicate names are an error.
func (r *Registry) Register(name string, factory spi.PluginFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("provider plugin %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister panics on a duplicate registration; used for in-tree wiring.
func (r *Registry) MustRegister(name string, factory spi.PluginFactory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Merge copies another registry's factories in.
func (r *Registry) Merge(other *Registry) error {
	other.mu.RLock()
	defer other.mu.RUnlock()
	for name, factory := range other.factories {
		if err := r.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}

// Get instantiates the named plugin.
func (r *Registry) Get(name string) (spi.ProviderPlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}
