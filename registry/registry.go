/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"sort"
	"sync"
)

// Registry maps case-sensitive names to values. Registering an existing name
// replaces the previous value.
type Registry[C any] struct {
	mu      sync.RWMutex
	entries map[string]C
}

// New creates an empty Registry.
func New[C any]() *Registry[C] {
	return &Registry[C]{entries: make(map[string]C)}
}

// Register associates name with value, replacing any earlier registration.
// It reports whether an earlier registration was replaced.
func (r *Registry[C]) Register(name string, value C) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced = r.entries[name]
	r.entries[name] = value
	return replaced
}

// Lookup retrieves the value registered for name, if any.
func (r *Registry[C]) Lookup(name string) (C, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.entries[name]
	return v, ok
}

// Names returns the registered names in sorted order.
func (r *Registry[C]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove deletes the registration for name.
func (r *Registry[C]) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Clear removes every registration.
func (r *Registry[C]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]C)
}

// Len returns the number of registrations.
func (r *Registry[C]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
