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

// Package executor dispatches blocking work onto a bounded set of goroutines.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrClosed is returned by Submit after the pool was shut down.
var ErrClosed = errors.New("executor: closed")

// Executor runs tasks asynchronously.
type Executor interface {
	// Submit schedules task. It blocks while the executor is saturated and
	// returns ctx.Err() if ctx is done first.
	Submit(ctx context.Context, task func()) error
}

// Pool is an [Executor] limited to a fixed number of concurrent tasks.
type Pool struct {
	sem    *semaphore.Weighted
	size   int64
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// Option configures a [Pool].
type Option func(*Pool)

// WithSize sets the maximum number of concurrent tasks.
// Values below one are ignored.
func WithSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.size = int64(n)
		}
	}
}

// WithLogger sets the logger used to report task panics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPool creates a pool sized to GOMAXPROCS unless [WithSize] is given.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		size:   int64(runtime.GOMAXPROCS(0)),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.sem = semaphore.NewWeighted(p.size)
	return p
}

// Size returns the concurrency limit.
func (p *Pool) Size() int {
	return int(p.size)
}

// Submit implements [Executor].
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("executor task panic", "error", r)
			}
		}()
		task()
	}()
	return nil
}

// Shutdown rejects new tasks and waits until running tasks finish or ctx is done.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	if err := p.sem.Acquire(ctx, p.size); err != nil {
		return err
	}
	p.sem.Release(p.size)
	return nil
}

// Run submits task and waits for it to finish. It returns early with
// ctx.Err() if ctx is done before the task is scheduled or completes.
// A task that completed is reported as such even when ctx is done too.
func Run(ctx context.Context, exec Executor, task func()) error {
	done := make(chan struct{})
	if err := exec.Submit(ctx, func() {
		defer close(done)
		task()
	}); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		select {
		case <-done:
			return nil
		default:
			return ctx.Err()
		}
	}
}
