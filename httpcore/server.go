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

package httpcore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ShutdownRunner runs shutdown tasks within the given context.
type ShutdownRunner interface {
	Run(ctx context.Context)
}

// ListenAndServe listens on the runtime address and calls [Core.Serve].
func (c *Core) ListenAndServe(ctx context.Context, shutdown ShutdownRunner) error {
	ln, err := net.Listen("tcp", c.runtime.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", c.runtime.Addr(), err)
	}
	return c.Serve(ctx, ln, shutdown)
}

// Serve serves the router on ln until ctx is cancelled. It then runs the
// shutdown tasks and shuts the server down gracefully, both bounded by the
// configured shutdown timeout.
func (c *Core) Serve(ctx context.Context, ln net.Listener, shutdown ShutdownRunner) error {
	server := &http.Server{
		Handler:           c.router,
		ReadHeaderTimeout: c.runtime.ReadHeaderTimeout,
		IdleTimeout:       c.runtime.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		c.logger.InfoContext(ctx, "server started", "addr", ln.Addr().String(), "root_path", c.RootPath(), "routes", len(c.Routes()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		c.logger.InfoContext(ctx, "server shutting down", "reason", ctx.Err())
	}

	// ctx is already cancelled; the shutdown gets its own deadline.
	timeout := c.runtime.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if shutdown != nil {
		shutdown.Run(shutdownCtx)
	}
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	c.logger.InfoContext(shutdownCtx, "server exited")
	return nil
}
