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

// Package assembly builds and runs a function application.
//
// An [Application] runs a fixed pipeline: it loads configuration, binds the
// build-time roots, discovers functions, marks beans that must survive,
// prunes the rest, initializes the function binding, binds the runtime roots
// and finally boots the HTTP routes. [Application.Run] then serves requests
// until its context is cancelled and runs the shutdown tasks in reverse
// registration order.
//
//	app := assembly.MustNew(
//	    assembly.WithConfig(config.WithFile("application.yaml")),
//	    assembly.WithFunctions(func(*beans.Container) (*Greeter, error) {
//	        return &Greeter{}, nil
//	    }),
//	)
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package assembly
