// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"fmt"
	"sort"
	"sync"
)

// BackendFactory creates a new backend instance.
// Factories are registered via Register() and called by NewBackend().
type BackendFactory func() (Backend, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
)

// Register registers a backend factory with the given name.
// It is typically called from init() in backend packages,
// following the database/sql driver pattern:
//
//	func init() {
//	    gpucore.Register("native", func() (gpucore.Backend, error) {
//	        return Open()
//	    })
//	}
//
// Register panics if factory is nil or the name is already taken.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("gpucore: Register factory is nil")
	}
	if _, dup := backends[name]; dup {
		panic("gpucore: Register called twice for " + name)
	}
	backends[name] = factory
}

// Unregister removes a backend from the registry. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// NewBackend creates a new backend instance by name.
//
//	import _ "github.com/gogpu/shadergraph/backend/native"
//
//	b, err := gpucore.NewBackend("native")
func NewBackend(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("gpucore: unknown backend %q (forgotten import?)", name)
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("gpucore: open backend %q: %w", name, err)
	}
	return b, nil
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}
