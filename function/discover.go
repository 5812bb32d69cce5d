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

package function

import (
	"fmt"
	"reflect"
	"slices"

	"rivaas.dev/funqy/beans"
)

var manifestType = reflect.TypeFor[Manifest]()

// Register declares a bean exposing functions. The bean is a root so it
// survives pruning.
func Register[T Manifest](r *beans.Registry, factory func(c *beans.Container) (T, error), opts ...beans.Option) error {
	return beans.Provide(r, factory, append([]beans.Option{beans.AsRoot()}, opts...)...)
}

// Scan returns the descriptors declared by a bean of type t registered under
// name. Types not implementing [Manifest] declare no functions.
func Scan(name string, t reflect.Type) ([]Descriptor, error) {
	if !t.Implements(manifestType) {
		return nil, nil
	}

	funcs := manifestOf(t).Funcs()
	methods := make([]string, 0, len(funcs))
	for m := range funcs {
		methods = append(methods, m)
	}
	slices.Sort(methods)

	descriptors := make([]Descriptor, 0, len(methods))
	for _, m := range methods {
		d := Descriptor{Bean: name, BeanType: t, FunctionName: funcs[m], MethodName: m}
		if _, err := signatureOf(d); err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

// Discover scans every bean of r in registration order. Function names must
// be unique across beans.
func Discover(r *beans.Registry) ([]Descriptor, error) {
	var all []Descriptor
	seen := make(map[string]Descriptor)

	for _, name := range r.Names() {
		def, ok := r.Definition(name)
		if !ok {
			continue
		}
		found, err := Scan(name, def.Type)
		if err != nil {
			return nil, err
		}
		for _, d := range found {
			if prev, dup := seen[d.Name()]; dup {
				return nil, fmt.Errorf("function %q declared by both %s and %s", d.Name(), prev, d)
			}
			seen[d.Name()] = d
			all = append(all, d)
		}
	}
	return all, nil
}

// manifestOf returns a Manifest backed by the zero value of t.
func manifestOf(t reflect.Type) Manifest {
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface().(Manifest)
	}
	return reflect.Zero(t).Interface().(Manifest)
}
