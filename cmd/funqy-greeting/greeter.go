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

package main

import (
	"context"
	"net/http"
	"strings"

	"rivaas.dev/funqy/funchttp/runtime"
)

// Greeting is the input and output of the greeting functions.
type Greeting struct {
	Name    string `json:"name" validate:"required,max=64"`
	Message string `json:"message,omitempty"`
}

// Greeter exposes the greeting functions.
type Greeter struct {
	salutation string
}

// NewGreeter returns a greeter using salutation.
func NewGreeter(salutation string) *Greeter {
	return &Greeter{salutation: salutation}
}

// Funcs implements function.Manifest.
func (*Greeter) Funcs() map[string]string {
	return map[string]string{
		"Greet":   "greet",
		"Shout":   "shout",
		"Version": "",
	}
}

// Greet greets in.Name.
func (g *Greeter) Greet(_ context.Context, in Greeting) (Greeting, error) {
	if strings.EqualFold(in.Name, "nobody") {
		return Greeting{}, runtime.Errorf(http.StatusUnprocessableEntity, "cannot greet %s", in.Name)
	}
	return Greeting{Name: in.Name, Message: g.salutation + " " + in.Name}, nil
}

// Shout greets in.Name loudly.
func (g *Greeter) Shout(ctx context.Context, in Greeting) (Greeting, error) {
	out, err := g.Greet(ctx, in)
	if err != nil {
		return Greeting{}, err
	}
	out.Message = strings.ToUpper(out.Message) + "!"
	return out, nil
}

// Version reports the service version.
func (*Greeter) Version() string {
	return "1.0.0"
}
