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

// Package function discovers invokable functions on beans and calls them.
//
// A bean exposes functions by implementing [Manifest]. Each entry of the
// manifest becomes one [Descriptor]; its method must have one of the shapes
//
//	func (b *Bean) M()
//	func (b *Bean) M(ctx context.Context, in In) (Out, error)
//
// where the context, the input, the output and the error are each optional,
// in that order.
package function

import (
	"reflect"
)

// Descriptor describes one discovered function.
type Descriptor struct {
	// Bean is the name of the bean declaring the method.
	Bean string
	// BeanType is the type of the bean.
	BeanType reflect.Type
	// FunctionName is the explicitly declared name. May be empty.
	FunctionName string
	// MethodName is the name of the underlying method.
	MethodName string
}

// Name returns the explicit function name, falling back to the method name.
func (d Descriptor) Name() string {
	if d.FunctionName != "" {
		return d.FunctionName
	}
	return d.MethodName
}

// String implements fmt.Stringer.
func (d Descriptor) String() string {
	return d.Bean + "#" + d.MethodName
}

// Manifest is implemented by beans exposing functions. Funcs maps method
// names to function names; an empty function name selects the method name.
type Manifest interface {
	Funcs() map[string]string
}
