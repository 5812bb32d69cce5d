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
	"sync"
)

type instance struct {
	def   Definition
	once  sync.Once
	value any
	err   error
}

// Container resolves bean instances at runtime. Every bean is created once,
// on first lookup. Factories must not depend on each other cyclically.
//
// Container is safe for concurrent use.
type Container struct {
	instances map[string]*instance
}

// Get returns the instance of the bean registered under name.
func (c *Container) Get(name string) (any, error) {
	if c == nil {
		return nil, &Error{Bean: name, Op: "lookup", Err: ErrNotFound}
	}
	inst, ok := c.instances[name]
	if !ok {
		return nil, &Error{Bean: name, Op: "lookup", Err: ErrNotFound}
	}

	inst.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				inst.err = fmt.Errorf("factory panic: %v", r)
			}
		}()
		inst.value, inst.err = inst.def.Factory(c)
	})
	if inst.err != nil {
		return nil, &Error{Bean: name, Op: "create", Err: inst.err}
	}
	return inst.value, nil
}

// Has reports whether a bean is registered under name.
func (c *Container) Has(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.instances[name]
	return ok
}

// Lookup returns the bean of type T registered under its type name.
func Lookup[T any](c *Container) (T, error) {
	var zero T
	v, err := c.Get(NameOf[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &Error{Bean: NameOf[T](), Op: "lookup", Err: fmt.Errorf("instance has type %T", v)}
	}
	return typed, nil
}
