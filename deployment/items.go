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

package deployment

import (
	"log/slog"

	"rivaas.dev/router"

	"rivaas.dev/funqy/beans"
)

// ExecutionTime selects when a recorded step runs.
type ExecutionTime int

const (
	// StaticInit steps run once while the application image is prepared.
	StaticInit ExecutionTime = iota
	// RuntimeInit steps run on every application start, after StaticInit.
	RuntimeInit
)

// String returns the execution time name.
func (e ExecutionTime) String() string {
	if e == StaticInit {
		return "static-init"
	}
	return "runtime-init"
}

// LogValue implements [slog.LogValuer].
func (e ExecutionTime) LogValue() slog.Value {
	return slog.StringValue(e.String())
}

// Feature signals that a named capability is active in the current build.
type Feature struct {
	Name string
}

// Route asks the HTTP core to serve Handler at Path. Path is relative to the
// configured HTTP root path. An empty Methods list means every method.
type Route struct {
	Path    string
	Methods []string
	Handler router.HandlerFunc
}

// RouteOption configures a [Route].
type RouteOption func(*Route)

// WithMethods restricts a route to the given HTTP methods.
func WithMethods(methods ...string) RouteOption {
	return func(r *Route) {
		r.Methods = append(r.Methods, methods...)
	}
}

// NewRoute creates a route item.
func NewRoute(path string, handler router.HandlerFunc, opts ...RouteOption) Route {
	r := Route{Path: path, Handler: handler}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RequireBodyHandler asks the HTTP core to install its request body handler
// in front of every route.
type RequireBodyHandler struct{}

// BeanClassNameExclusion matches beans by fully qualified type name, for
// example "rivaas.dev/funqy/jsonmapper.ObjectMapper".
type BeanClassNameExclusion string

// Matches reports whether the bean type name matches the exclusion.
func (e BeanClassNameExclusion) Matches(typeName string) bool {
	return string(e) == typeName
}

// UnremovableBean prevents beans matching Exclusion from being pruned.
type UnremovableBean struct {
	Exclusion BeanClassNameExclusion
}

// FunctionInitialized signals that at least one function was discovered.
// Steps receive it as a pointer; nil means no functions exist.
type FunctionInitialized struct{}

// BeanContainer carries the runtime bean container to recorders.
type BeanContainer struct {
	container *beans.Container
}

// NewBeanContainer wraps c.
func NewBeanContainer(c *beans.Container) *BeanContainer {
	return &BeanContainer{container: c}
}

// Value returns the wrapped container.
func (b *BeanContainer) Value() *beans.Container {
	if b == nil {
		return nil
	}
	return b.container
}
