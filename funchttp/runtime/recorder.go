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

package runtime

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/router"

	"rivaas.dev/funqy/beans"
	"rivaas.dev/funqy/executor"
	"rivaas.dev/funqy/function"
	"rivaas.dev/funqy/httpcore"
	"rivaas.dev/funqy/shutdown"
)

const instrumentationName = "rivaas.dev/funqy/funchttp/runtime"

// Recorder binds discovered functions to a single HTTP request handler.
//
// Init resolves the function invokers; Start builds the handler that every
// function route shares. A Recorder is used for one application boot.
type Recorder struct {
	functions      []function.Descriptor
	logger         *slog.Logger
	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
	validate       *validator.Validate
	problemBaseURL string

	initOnce sync.Once
	invokers map[string]*function.Invoker
	initErr  error
}

// NewRecorder returns a recorder for functions.
func NewRecorder(functions []function.Descriptor, opts ...Option) *Recorder {
	r := defaults()
	r.functions = append([]function.Descriptor(nil), functions...)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init resolves an invoker for every function. Functions with an unsupported
// signature are left unbound and reported by [Recorder.Err].
// Calling Init more than once has no further effect.
func (r *Recorder) Init() {
	r.initOnce.Do(func() {
		r.invokers = make(map[string]*function.Invoker, len(r.functions))
		for _, d := range r.functions {
			inv, err := function.NewInvoker(d)
			if err != nil {
				r.log().Error("function not bound", "function", d.String(), "error", err)
				r.initErr = errors.Join(r.initErr, err)
				continue
			}
			r.invokers[d.Name()] = inv
			r.log().Debug("function bound", "function", d.String(), "name", d.Name())
		}
	})
}

func (r *Recorder) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Err returns the errors collected by Init.
func (r *Recorder) Err() error {
	return r.initErr
}

// Start returns the handler serving every function below rootPath. It registers
// a shutdown task on sd that rejects new invocations and drains in-flight ones.
// A nil exec runs functions on the request goroutine.
func (r *Recorder) Start(rootPath string, core *httpcore.Core, sd shutdown.Registrar, container *beans.Container, exec executor.Executor) router.HandlerFunc {
	return r.start(rootPath, core, sd, container, exec).serve
}

func (r *Recorder) start(rootPath string, core *httpcore.Core, sd shutdown.Registrar, container *beans.Container, exec executor.Executor) *handler {
	r.Init()

	logger := r.logger
	if logger == nil && core != nil {
		logger = core.Logger()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "funqy-http")

	m, err := newMetrics(r.registerer)
	if err != nil {
		logger.Error("invocation metrics not registered", "error", err)
		m, _ = newMetrics(nil)
	}

	h := &handler{
		rootPath:  httpcore.NormalizeRootPath(rootPath),
		invokers:  r.invokers,
		container: container,
		exec:      exec,
		logger:    logger,
		metrics:   m,
		tracer:    r.tracerProvider.Tracer(instrumentationName),
		validate:  r.validate,
		problems:  problems{baseURL: r.problemBaseURL},
		idle:      make(chan struct{}),
	}
	if sd != nil {
		sd.AddShutdownTask(h.shutdown)
	}

	logger.Info("function handler started", "root_path", h.rootPath, "functions", len(h.invokers))
	return h
}
