// Package registry maps stable plugin identifiers to plugin classes and
// supplies descriptive metadata. Replacing a class never touches instances
// created from the old one; they keep the constructor's closures alive.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/amapianolab/groovehost/pkg/plugin"
)

// ErrUnknownPlugin is returned when an identifier resolves to no class.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Entry pairs a registered identifier with its metadata.
type Entry struct {
	ID       string
	Metadata plugin.Metadata
}

// Registry is an in-memory class table. Safe for concurrent use; the loader
// mutates it while the host reads it.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]plugin.Constructor
	meta    map[string]plugin.Metadata
	order   []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		classes: make(map[string]plugin.Constructor),
		meta:    make(map[string]plugin.Metadata),
	}
}

// Register installs a class under id, replacing any previous class. Existing
// instances of the old class are unaffected; new instances use the new one.
func (r *Registry) Register(id string, ctor plugin.Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[id]; !exists {
		r.order = append(r.order, id)
	}
	r.classes[id] = ctor
}

// RegisterWithMetadata installs a class along with externally supplied
// metadata, as the hot-reload loader does for catalog plugins.
func (r *Registry) RegisterWithMetadata(id string, ctor plugin.Constructor, meta plugin.Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[id]; !exists {
		r.order = append(r.order, id)
	}
	r.classes[id] = ctor
	r.meta[id] = meta
}

// Unregister removes a class. Existing instances remain functional until
// explicitly destroyed. Returns false if id was not registered.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[id]; !exists {
		return false
	}
	delete(r.classes, id)
	delete(r.meta, id)
	for i, got := range r.order {
		if got == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get resolves id to its class.
func (r *Registry) Get(id string) (plugin.Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.classes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, id)
	}
	return ctor, nil
}

// Has reports whether id is currently registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.classes[id]
	return ok
}

// List returns every registered class in registration order.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, Entry{ID: id, Metadata: r.metadata(id)})
	}
	return out
}

// Metadata returns the metadata for id. Built-in identifiers come from a
// known table, loader-supplied metadata takes effect for catalog plugins,
// and unknown identifiers get a synthesised stub so lookups never fail.
func (r *Registry) Metadata(id string) plugin.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metadata(id)
}

// metadata resolves without locking. Caller holds r.mu.
func (r *Registry) metadata(id string) plugin.Metadata {
	if meta, ok := builtinMetadata[id]; ok {
		return meta
	}
	if meta, ok := r.meta[id]; ok {
		return meta
	}
	return plugin.Metadata{
		Name:        id,
		Category:    "Unknown",
		Description: "No description available",
		Type:        "unknown",
		Tags:        []string{},
	}
}
