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
	"context"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// SignatureError reports a method that cannot be exposed as a function.
type SignatureError struct {
	Function Descriptor
	Reason   string
}

// Error implements error.
func (e *SignatureError) Error() string {
	return fmt.Sprintf("function %s: %s", e.Function, e.Reason)
}

type signature struct {
	method     reflect.Method
	hasContext bool
	input      reflect.Type
	output     reflect.Type
	hasError   bool
}

func signatureOf(d Descriptor) (signature, error) {
	fail := func(format string, args ...any) (signature, error) {
		return signature{}, &SignatureError{Function: d, Reason: fmt.Sprintf(format, args...)}
	}

	m, ok := d.BeanType.MethodByName(d.MethodName)
	if !ok {
		return fail("method %s not found on %s", d.MethodName, d.BeanType)
	}
	s := signature{method: m}
	mt := m.Type

	// Index 0 is the receiver.
	in := 1
	if in < mt.NumIn() && mt.In(in) == contextType {
		s.hasContext = true
		in++
	}
	if in < mt.NumIn() {
		s.input = mt.In(in)
		in++
	}
	if in < mt.NumIn() {
		return fail("too many parameters")
	}

	switch mt.NumOut() {
	case 0:
	case 1:
		if mt.Out(0) == errorType {
			s.hasError = true
		} else {
			s.output = mt.Out(0)
		}
	case 2:
		if mt.Out(1) != errorType {
			return fail("second result must be error")
		}
		s.output = mt.Out(0)
		s.hasError = true
	default:
		return fail("too many results")
	}
	return s, nil
}

// Invoker calls one function on bean instances.
type Invoker struct {
	descriptor Descriptor
	sig        signature
}

// NewInvoker validates the method signature of d and returns its invoker.
func NewInvoker(d Descriptor) (*Invoker, error) {
	sig, err := signatureOf(d)
	if err != nil {
		return nil, err
	}
	return &Invoker{descriptor: d, sig: sig}, nil
}

// Descriptor returns the invoked function's descriptor.
func (i *Invoker) Descriptor() Descriptor {
	return i.descriptor
}

// HasInput reports whether the function takes an input value.
func (i *Invoker) HasInput() bool {
	return i.sig.input != nil
}

// InputType returns the input type, or nil.
func (i *Invoker) InputType() reflect.Type {
	return i.sig.input
}

// NewInput returns a pointer to a fresh value to decode the input into, or
// nil when the function takes no input.
func (i *Invoker) NewInput() any {
	if i.sig.input == nil {
		return nil
	}
	if i.sig.input.Kind() == reflect.Pointer {
		return reflect.New(i.sig.input.Elem()).Interface()
	}
	return reflect.New(i.sig.input).Interface()
}

// Invoke calls the function on bean. input is a value returned by NewInput,
// or nil to pass the zero input. A nil output is returned as nil.
func (i *Invoker) Invoke(ctx context.Context, bean any, input any) (any, error) {
	receiver := reflect.ValueOf(bean)
	if !receiver.IsValid() || !receiver.Type().AssignableTo(i.descriptor.BeanType) {
		return nil, fmt.Errorf("function %s: bean has type %T, want %s", i.descriptor, bean, i.descriptor.BeanType)
	}

	args := []reflect.Value{receiver}
	if i.sig.hasContext {
		args = append(args, reflect.ValueOf(&ctx).Elem())
	}
	if i.sig.input != nil {
		arg, err := i.inputValue(input)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	results := i.sig.method.Func.Call(args)

	var err error
	if i.sig.hasError {
		if e := results[len(results)-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
	}
	if i.sig.output == nil {
		return nil, err
	}
	out := results[0]
	switch out.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if out.IsNil() {
			return nil, err
		}
	}
	return out.Interface(), err
}

func (i *Invoker) inputValue(input any) (reflect.Value, error) {
	want := i.sig.input
	if input == nil {
		return reflect.Zero(want), nil
	}
	v := reflect.ValueOf(input)
	switch {
	case v.Type() == want:
		return v, nil
	case v.Kind() == reflect.Pointer && v.Type().Elem() == want:
		return v.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("function %s: input has type %T, want %s", i.descriptor, input, want)
}
