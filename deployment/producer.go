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

import "sync"

// Producer accepts build items of type T.
type Producer[T any] interface {
	Produce(item T)
}

// ProducerFunc adapts a function to [Producer].
type ProducerFunc[T any] func(item T)

// Produce implements [Producer].
func (f ProducerFunc[T]) Produce(item T) {
	f(item)
}

// Items collects produced build items in production order.
//
// Items is safe for concurrent use.
type Items[T any] struct {
	mu    sync.Mutex
	items []T
}

// Produce implements [Producer].
func (c *Items[T]) Produce(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

// All returns a copy of the collected items.
func (c *Items[T]) All() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of collected items.
func (c *Items[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
