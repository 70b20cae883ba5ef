// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package registry provides a name-keyed registry of values. It's in a
// separate package to facilitate testing.
package registry

import (
	"sort"
	"sync"
)

// Registry maps names to values. The zero value is not usable; call New.
type Registry[T any] struct {
	kind  string
	mu    sync.RWMutex
	items map[string]T
	isNil func(T) bool
}

// New returns an empty registry. kind names the registered values in panic
// messages. isNil reports whether a value should be rejected as nil.
func New[T any](kind string, isNil func(T) bool) *Registry[T] {
	return &Registry[T]{
		kind:  kind,
		items: make(map[string]T),
		isNil: isNil,
	}
}

// Register makes v available by the provided name. If Register is called
// twice with the same name, or if name is empty or v is nil, it panics.
func (r *Registry[T]) Register(name string, v T) {
	if r.isNil != nil && r.isNil(v) {
		panic("couchdoc: Register " + r.kind + " is nil")
	}
	if name == "" {
		panic("couchdoc: Register " + r.kind + " name is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.items[name]; dup {
		panic("couchdoc: Register called twice for " + r.kind + " " + name)
	}
	r.items[name] = v
}

// Lookup returns the value registered with the requested name, and whether
// it was found.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[name]
	return v, ok
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
