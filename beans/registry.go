// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package beans

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Factory creates a bean instance. Dependencies are obtained from c.
type Factory func(c *Container) (any, error)

// Definition declares a bean.
type Definition struct {
	// Name identifies the bean. Defaults to TypeName of Type.
	Name string
	// Type is the bean type.
	Type reflect.Type
	// Factory creates the single instance on first lookup.
	Factory Factory
	// DependsOn lists the names of beans the factory uses.
	DependsOn []string
	// Root beans are entry points and are never pruned.
	Root bool
	// Unremovable beans are never pruned.
	Unremovable bool
}

// TypeName returns the fully qualified name of t with pointers stripped,
// for example "rivaas.dev/funqy/jsonmapper.ObjectMapper".
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// NameOf returns the bean name for type T.
func NameOf[T any]() string {
	return TypeName(reflect.TypeFor[T]())
}

// Registry holds bean definitions during assembly.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	defs  map[string]Definition
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition.
func (r *Registry) Register(def Definition) error {
	if def.Type == nil {
		return &Error{Bean: def.Name, Op: "register", Err: fmt.Errorf("type is required")}
	}
	if def.Factory == nil {
		return &Error{Bean: def.Name, Op: "register", Err: fmt.Errorf("factory is required")}
	}
	if def.Name == "" {
		def.Name = TypeName(def.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return &Error{Bean: def.Name, Op: "register", Err: ErrDuplicate}
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Option adjusts a definition created by [Provide] or [Singleton].
type Option func(*Definition)

// AsRoot marks the bean as a root.
func AsRoot() Option {
	return func(d *Definition) { d.Root = true }
}

// AsUnremovable marks the bean as unremovable.
func AsUnremovable() Option {
	return func(d *Definition) { d.Unremovable = true }
}

// Named overrides the bean name.
func Named(name string) Option {
	return func(d *Definition) { d.Name = name }
}

// DependsOn records dependencies on other beans by name.
func DependsOn(names ...string) Option {
	return func(d *Definition) { d.DependsOn = append(d.DependsOn, names...) }
}

// Provide registers a bean of type T created by factory.
func Provide[T any](r *Registry, factory func(c *Container) (T, error), opts ...Option) error {
	def := Definition{
		Type: reflect.TypeFor[T](),
		Factory: func(c *Container) (any, error) {
			return factory(c)
		},
	}
	for _, opt := range opts {
		opt(&def)
	}
	return r.Register(def)
}

// Singleton registers an existing value as a bean.
func Singleton[T any](r *Registry, value T, opts ...Option) error {
	return Provide(r, func(*Container) (T, error) { return value, nil }, opts...)
}

// Names returns the registered bean names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Definition returns the definition registered under name.
func (r *Registry) Definition(name string) (Definition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.defs[name]
	return def, ok
}

// Prune removes every bean that is neither reachable from a root or
// unremovable bean nor matched by keep. It returns the removed names in
// registration order.
func (r *Registry) Prune(keep func(name string) bool) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := make(map[string]bool, len(r.defs))
	var visit func(name string)
	visit = func(name string) {
		if live[name] {
			return
		}
		def, ok := r.defs[name]
		if !ok {
			return
		}
		live[name] = true
		for _, dep := range def.DependsOn {
			visit(dep)
		}
	}

	for _, name := range r.order {
		def := r.defs[name]
		if def.Root || def.Unremovable || (keep != nil && keep(name)) {
			visit(name)
		}
	}

	var removed []string
	kept := r.order[:0]
	for _, name := range r.order {
		if live[name] {
			kept = append(kept, name)
			continue
		}
		removed = append(removed, name)
		delete(r.defs, name)
	}
	r.order = kept
	return removed
}

// Build creates the runtime container from the current definitions.
func (r *Registry) Build() *Container {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Container{instances: make(map[string]*instance, len(r.defs))}
	for name, def := range r.defs {
		c.instances[name] = &instance{def: def}
	}
	return c
}
