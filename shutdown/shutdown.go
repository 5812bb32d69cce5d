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

// Package shutdown collects tasks that run when the application stops.
package shutdown

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Registrar accepts shutdown tasks.
type Registrar interface {
	// AddShutdownTask registers fn to run during graceful shutdown.
	AddShutdownTask(fn func(context.Context))
	// AddLastShutdownTask registers fn to run after every other task.
	AddLastShutdownTask(fn func())
}

// Context is the default [Registrar]. Tasks run once, in reverse
// registration order (LIFO); last tasks run afterwards in best-effort mode.
type Context struct {
	mu     sync.Mutex
	tasks  []func(context.Context)
	last   []func()
	done   bool
	logger *slog.Logger
}

// New creates a shutdown context. A nil logger discards panic reports.
func New(logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Context{logger: logger}
}

// AddShutdownTask implements [Registrar]. It panics after [Context.Run].
func (s *Context) AddShutdownTask(fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		panic("cannot register shutdown task after shutdown")
	}
	s.tasks = append(s.tasks, fn)
}

// AddLastShutdownTask implements [Registrar]. It panics after [Context.Run].
func (s *Context) AddLastShutdownTask(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		panic("cannot register shutdown task after shutdown")
	}
	s.last = append(s.last, fn)
}

// Run executes the registered tasks. Only the first call has an effect.
// A panicking task is logged and does not stop the remaining ones.
func (s *Context) Run(ctx context.Context) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	tasks := s.tasks
	last := s.last
	s.mu.Unlock()

	for i := len(tasks) - 1; i >= 0; i-- {
		s.safely(ctx, i, func() { tasks[i](ctx) })
	}
	for i, fn := range last {
		s.safely(ctx, len(tasks)+i, fn)
	}
}

func (s *Context) safely(ctx context.Context, index int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "shutdown task panic", "task", index, "error", fmt.Sprint(r))
		}
	}()
	fn()
}
