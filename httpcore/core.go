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

// Package httpcore owns the HTTP route table and server of an application.
//
// Route build items are installed on a rivaas router below the configured root
// path. The core also serves the router and runs shutdown tasks when the serve
// context is cancelled.
package httpcore

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"rivaas.dev/router"
	"rivaas.dev/router/middleware/accesslog"
	"rivaas.dev/router/middleware/bodylimit"
	"rivaas.dev/router/middleware/recovery"

	"rivaas.dev/funqy/deployment"
)

const defaultShutdownTimeout = 30 * time.Second

// AllMethods are the methods a route without explicit methods is served for.
var AllMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
	http.MethodOptions,
}

// InstalledRoute records one method and full path served by the core.
type InstalledRoute struct {
	Method string
	Path   string
}

// Option configures a [Core].
type Option func(*Core)

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRuntimeConfig sets the runtime configuration.
func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(c *Core) {
		c.runtime = cfg
	}
}

// Core is the HTTP core of an application.
type Core struct {
	router  *router.Router
	logger  *slog.Logger
	build   BuildTimeConfig
	runtime RuntimeConfig

	mu          sync.Mutex
	routes      []InstalledRoute
	bodyHandler bool
}

// New creates a core for the given build-time configuration.
func New(build BuildTimeConfig, opts ...Option) (*Core, error) {
	r, err := router.New()
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}
	c := &Core{
		router: r,
		logger: slog.New(slog.DiscardHandler),
		build:  build,
		runtime: RuntimeConfig{
			Host:   "0.0.0.0",
			Port:   8080,
			Limits: LimitsConfig{MaxBodySize: 10 << 20},
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	// The access log wraps recovery so recovered panics are logged with
	// their 500 status.
	if c.runtime.AccessLog.Enabled {
		c.router.Use(accesslog.New(
			accesslog.WithLogger(c.logger),
			accesslog.WithSlowThreshold(c.runtime.AccessLog.SlowThreshold),
		))
	}
	c.router.Use(recovery.New(
		recovery.WithLogger(func(ctx *router.Context, err any, stack []byte) {
			c.logger.ErrorContext(ctx.Request.Context(), "panic recovered",
				"error", err,
				"method", ctx.Request.Method,
				"path", ctx.Request.URL.Path,
				"stack", string(stack),
			)
		}),
	))
	return c, nil
}

// Router returns the underlying router.
func (c *Core) Router() *router.Router {
	return c.router
}

// Logger returns the core's logger.
func (c *Core) Logger() *slog.Logger {
	return c.logger
}

// RootPath returns the normalized root path.
func (c *Core) RootPath() string {
	return NormalizeRootPath(c.build.RootPath)
}

// RequireBodyHandler installs the request body handler, which caps request
// bodies at the configured limit. It must be called before routes are
// installed; later calls are no-ops.
func (c *Core) RequireBodyHandler() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bodyHandler {
		return
	}
	c.bodyHandler = true

	limit := c.runtime.Limits.MaxBodySize
	if limit <= 0 {
		c.logger.Debug("request body handler installed without a limit")
		return
	}
	c.router.Use(bodylimit.New(bodylimit.WithLimit(limit)))
	c.logger.Debug("request body handler installed", "max_body_size", limit)
}

// Install registers route items below the root path.
func (c *Core) Install(routes ...deployment.Route) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs error
	for _, rt := range routes {
		if rt.Handler == nil {
			errs = errors.Join(errs, fmt.Errorf("route %s: handler is nil", rt.Path))
			continue
		}
		path := JoinPath(c.build.RootPath, rt.Path)
		methods := rt.Methods
		if len(methods) == 0 {
			methods = AllMethods
		}
		for _, method := range methods {
			if err := c.handle(method, path, rt.Handler); err != nil {
				errs = errors.Join(errs, err)
				continue
			}
			c.routes = append(c.routes, InstalledRoute{Method: method, Path: path})
			c.logger.Debug("route installed", "method", method, "path", path)
		}
	}
	return errs
}

func (c *Core) handle(method, path string, h router.HandlerFunc) error {
	switch method {
	case http.MethodGet:
		c.router.GET(path, h)
	case http.MethodPost:
		c.router.POST(path, h)
	case http.MethodPut:
		c.router.PUT(path, h)
	case http.MethodDelete:
		c.router.DELETE(path, h)
	case http.MethodPatch:
		c.router.PATCH(path, h)
	case http.MethodOptions:
		c.router.OPTIONS(path, h)
	default:
		return fmt.Errorf("route %s: unsupported method %q", path, method)
	}
	return nil
}

// Routes returns the installed routes in installation order.
func (c *Core) Routes() []InstalledRoute {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.routes)
}

// ServeHTTP implements http.Handler.
func (c *Core) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.router.ServeHTTP(w, r)
}
