package store

import (
	"fmt"
	"sort"
	"sync"
)

// BackendFactory creates a Backend from a validated configuration.
type BackendFactory func(cfg *Config) (Backend, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]BackendFactory)
)

// RegisterBackend makes a backend type available to Open by name.
// Registering a duplicate name panics; backends register from init.
func RegisterBackend(name string, factory BackendFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("store: backend %q registered twice", name))
	}
	factories[name] = factory
}

// NewBackend creates an unopened backend of the configured type.
func NewBackend(cfg *Config) (Backend, error) {
	factoriesMu.RLock()
	factory, ok := factories[cfg.BackendType]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrBackendNotRegistered, cfg.BackendType, RegisteredBackends())
	}
	return factory(cfg)
}

// RegisteredBackends returns the sorted names of all registered backends.
func RegisteredBackends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
