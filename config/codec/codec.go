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

// Package codec decodes configuration documents into generic key/value maps.
package codec

import (
	"fmt"
	"sync"
)

// Type identifies a configuration document format.
type Type string

// Decoder converts an encoded document into the value pointed to by v.
// Implementations must be safe for concurrent use.
type Decoder interface {
	Decode(data []byte, v any) error
}

var (
	decodersMu sync.RWMutex
	decoders   = map[Type]Decoder{}
)

// Register makes a decoder available under the given type.
// Registering the same type twice replaces the previous decoder.
func Register(t Type, d Decoder) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[t] = d
}

// Lookup returns the decoder registered for t.
func Lookup(t Type) (Decoder, error) {
	decodersMu.RLock()
	defer decodersMu.RUnlock()

	d, ok := decoders[t]
	if !ok {
		return nil, fmt.Errorf("no decoder registered for type %q", t)
	}
	return d, nil
}
