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
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no bean is registered under a name.
	ErrNotFound = errors.New("bean not found")

	// ErrDuplicate is returned when a bean name is registered twice.
	ErrDuplicate = errors.New("duplicate bean")
)

// Error describes a failed bean operation.
type Error struct {
	Bean string
	Op   string // "register", "lookup", "create"
	Err  error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("beans: %s %s: %v", e.Op, e.Bean, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
