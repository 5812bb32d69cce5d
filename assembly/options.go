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

package assembly

import (
	"errors"
	"log/slog"

	"rivaas.dev/funqy/beans"
	"rivaas.dev/funqy/config"
	"rivaas.dev/funqy/funchttp/runtime"
	"rivaas.dev/funqy/function"
	"rivaas.dev/funqy/jsonmapper"
)

// Option configures an [Application].
type Option func(*Application) error

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		a.logger = logger
		return nil
	}
}

// WithConfig adds configuration options, such as sources and roots.
func WithConfig(opts ...config.Option) Option {
	return func(a *Application) error {
		a.configOpts = append(a.configOpts, opts...)
		return nil
	}
}

// WithBeans registers beans on the application's registry.
func WithBeans(register func(r *beans.Registry) error) Option {
	return func(a *Application) error {
		if register == nil {
			return errors.New("bean registration cannot be nil")
		}
		a.registrations = append(a.registrations, register)
		return nil
	}
}

// WithFunctions registers a bean exposing functions.
func WithFunctions[T function.Manifest](factory func(c *beans.Container) (T, error), opts ...beans.Option) Option {
	return WithBeans(func(r *beans.Registry) error {
		return function.Register(r, factory, opts...)
	})
}

// WithObjectMapper configures the JSON object mapper used for function
// inputs and outputs.
func WithObjectMapper(opts ...jsonmapper.Option) Option {
	return func(a *Application) error {
		a.mapperOpts = append(a.mapperOpts, opts...)
		return nil
	}
}

// WithRuntimeOptions configures the function binding runtime.
func WithRuntimeOptions(opts ...runtime.Option) Option {
	return func(a *Application) error {
		a.runtimeOpts = append(a.runtimeOpts, opts...)
		return nil
	}
}
