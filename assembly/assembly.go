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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"

	"rivaas.dev/funqy/beans"
	"rivaas.dev/funqy/config"
	"rivaas.dev/funqy/deployment"
	"rivaas.dev/funqy/executor"
	"rivaas.dev/funqy/funchttp"
	"rivaas.dev/funqy/funchttp/runtime"
	"rivaas.dev/funqy/function"
	"rivaas.dev/funqy/httpcore"
	"rivaas.dev/funqy/jsonmapper"
	"rivaas.dev/funqy/shutdown"
)

// Application assembles functions, beans and configuration into an HTTP
// server. Build runs at most once.
type Application struct {
	logger        *slog.Logger
	configOpts    []config.Option
	registrations []func(*beans.Registry) error
	mapperOpts    []jsonmapper.Option
	runtimeOpts   []runtime.Option

	once     sync.Once
	buildErr error

	cfg         *config.Config
	httpBuild   httpcore.BuildTimeConfig
	httpRuntime httpcore.RuntimeConfig
	funqy       RuntimeConfig

	functions   []function.Descriptor
	removed     []string
	features    deployment.Items[deployment.Feature]
	routes      deployment.Items[deployment.Route]
	unremovable deployment.Items[deployment.UnremovableBean]

	core     *httpcore.Core
	shutdown *shutdown.Context
	pool     *executor.Pool
}

// New creates an application. Option errors are joined.
func New(opts ...Option) (*Application, error) {
	a := &Application{logger: slog.New(slog.DiscardHandler)}

	var errs error
	for _, opt := range opts {
		if err := opt(a); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("invalid application options: %w", errs)
	}
	return a, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Application {
	a, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Build runs the assembly pipeline. Later calls return the first result.
func (a *Application) Build(ctx context.Context) error {
	a.once.Do(func() {
		a.buildErr = a.build(ctx)
		if a.buildErr != nil {
			a.logger.ErrorContext(ctx, "application build failed", "error", a.buildErr)
		}
	})
	return a.buildErr
}

func (a *Application) build(ctx context.Context) error {
	step := &funchttp.BuildStep{Logger: a.logger}

	// Configuration and build-time roots.
	opts := append(slices.Clone(a.configOpts),
		config.WithRoot(&a.httpBuild, config.Root{}),
		config.WithRoot(&a.httpRuntime, config.Root{}),
		config.WithRoot(&a.funqy, config.Root{}),
	)
	cfg, err := config.New(opts...)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	a.cfg = cfg
	if err = cfg.Load(ctx); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err = cfg.BindRoots(config.BuildTime); err != nil {
		return fmt.Errorf("bind build-time configuration: %w", err)
	}

	// Beans and function discovery.
	registry := beans.NewRegistry()
	if err = jsonmapper.Register(registry, a.mapperOpts...); err != nil {
		return fmt.Errorf("register object mapper: %w", err)
	}
	for _, register := range a.registrations {
		if err = register(registry); err != nil {
			return fmt.Errorf("register beans: %w", err)
		}
	}
	if a.functions, err = function.Discover(registry); err != nil {
		return fmt.Errorf("discover functions: %w", err)
	}
	var hasFunctions *deployment.FunctionInitialized
	if len(a.functions) > 0 {
		hasFunctions = &deployment.FunctionInitialized{}
	}
	a.logger.InfoContext(ctx, "functions discovered", "count", len(a.functions))

	step.MarkObjectMapper(&a.unremovable)
	bodyHandler := step.RequestBodyHandler(a.functions)

	a.removed = registry.Prune(a.isUnremovable)
	if len(a.removed) > 0 {
		a.logger.DebugContext(ctx, "unused beans removed", "beans", a.removed)
	}
	container := deployment.NewBeanContainer(registry.Build())

	a.logger.DebugContext(ctx, "build phase", "phase", deployment.StaticInit)
	recorder := runtime.NewRecorder(a.functions, append([]runtime.Option{runtime.WithLogger(a.logger)}, a.runtimeOpts...)...)
	step.StaticInit(recorder, container, hasFunctions, &a.httpBuild)
	if err = recorder.Err(); err != nil {
		return fmt.Errorf("initialize functions: %w", err)
	}

	a.logger.DebugContext(ctx, "build phase", "phase", deployment.RuntimeInit)
	if err = cfg.BindRoots(config.RunTime); err != nil {
		return fmt.Errorf("bind run-time configuration: %w", err)
	}
	a.core, err = httpcore.New(a.httpBuild,
		httpcore.WithLogger(a.logger),
		httpcore.WithRuntimeConfig(a.httpRuntime),
	)
	if err != nil {
		return err
	}
	if bodyHandler != nil {
		a.core.RequireBodyHandler()
	}

	a.shutdown = shutdown.New(a.logger)
	a.pool = executor.NewPool(executor.WithSize(a.funqy.Executor.Size), executor.WithLogger(a.logger))
	a.shutdown.AddLastShutdownTask(func() {
		a.logger.Info("shutdown tasks completed")
	})

	step.Boot(a.shutdown, recorder, &a.features, &a.routes, a.core, hasFunctions,
		a.functions, container, &a.httpBuild, a.pool)

	if err = a.core.Install(a.routes.All()...); err != nil {
		return fmt.Errorf("install routes: %w", err)
	}
	a.logger.InfoContext(ctx, "application built",
		"features", a.Features(),
		"routes", len(a.core.Routes()),
		"root_path", a.core.RootPath(),
	)
	return nil
}

func (a *Application) isUnremovable(name string) bool {
	for _, u := range a.unremovable.All() {
		if u.Exclusion.Matches(name) {
			return true
		}
	}
	return false
}

// Run builds the application if needed and serves it on the configured
// address until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Build(ctx); err != nil {
		return err
	}
	return a.core.ListenAndServe(ctx, a.shutdown)
}

// Serve is like [Application.Run] but serves on ln.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.Build(ctx); err != nil {
		return err
	}
	return a.core.Serve(ctx, ln, a.shutdown)
}

// Handler returns the HTTP handler of a built application, or nil.
func (a *Application) Handler() http.Handler {
	if a.core == nil {
		return nil
	}
	return a.core
}

// Config returns the loaded configuration, or nil before Build.
func (a *Application) Config() *config.Config {
	return a.cfg
}

// Functions returns the discovered functions.
func (a *Application) Functions() []function.Descriptor {
	return slices.Clone(a.functions)
}

// Features returns the names of the activated features.
func (a *Application) Features() []string {
	var names []string
	for _, f := range a.features.All() {
		names = append(names, f.Name)
	}
	return names
}

// Routes returns the routes installed on the HTTP core.
func (a *Application) Routes() []httpcore.InstalledRoute {
	if a.core == nil {
		return nil
	}
	return a.core.Routes()
}

// RemovedBeans returns the beans pruned during Build.
func (a *Application) RemovedBeans() []string {
	return slices.Clone(a.removed)
}
