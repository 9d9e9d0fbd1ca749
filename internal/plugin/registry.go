package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Registry maps plugin name to plugin handle. Register initializes a
// plugin before inserting it; a duplicate name replaces the prior
// entry without shutting it down first. Callers that need the old
// instance torn down must arrange that themselves before replacing it.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry returns an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register initializes plugin and inserts it under its own Name().
// On initialization failure the plugin is not inserted.
func (r *Registry) Register(ctx context.Context, p Plugin) error {
	if p == nil {
		return fmt.Errorf("plugin: cannot register nil plugin")
	}
	if err := p.Initialize(ctx); err != nil {
		return fmt.Errorf("plugin: initialize %s: %w", p.Name(), err)
	}

	r.mu.Lock()
	r.plugins[p.Name()] = p
	r.mu.Unlock()
	return nil
}

// Get looks up a plugin by name. The lock is held only for the map
// read; the returned handle may be used for I/O after the lock is
// released.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// List returns the registered plugin names in no particular order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	return names
}

// Shutdown calls every plugin's Shutdown hook, collecting failures
// rather than stopping at the first one, and returns a single
// aggregated error if any plugin failed.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.RLock()
	plugins := make([]Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		plugins = append(plugins, p)
	}
	r.mu.RUnlock()

	var result *multierror.Error
	for _, p := range plugins {
		if err := p.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("plugin %s: %w", p.Name(), err))
		}
	}
	return result.ErrorOrNil()
}
