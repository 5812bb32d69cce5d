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

// Command funqy-greeting serves greeting functions over HTTP.
//
// Configuration is read from application.yaml (if present) and from
// FUNQY_-prefixed environment variables, for example
// FUNQY_QUARKUS__HTTP__ROOT_PATH=/fn.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rivaas.dev/funqy/assembly"
	"rivaas.dev/funqy/beans"
	"rivaas.dev/funqy/config"
	"rivaas.dev/funqy/funchttp/runtime"
)

func main() {
	configFile := flag.String("config", "application.yaml", "configuration file")
	metricsAddr := flag.String("metrics-addr", ":9090", "address of the metrics endpoint, empty to disable")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configFile, *metricsAddr); err != nil {
		logger.Error("greeting service failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configFile, metricsAddr string) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	configOpts := []config.Option{config.WithEnv("FUNQY_")}
	if _, err := os.Stat(configFile); err == nil {
		configOpts = append([]config.Option{config.WithFile(configFile)}, configOpts...)
	}

	app, err := assembly.New(
		assembly.WithLogger(logger),
		assembly.WithConfig(configOpts...),
		assembly.WithRuntimeOptions(runtime.WithRegisterer(registry)),
		assembly.WithFunctions(func(*beans.Container) (*Greeter, error) {
			return NewGreeter("Hello"), nil
		}),
	)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		go serveMetrics(ctx, logger, metricsAddr, registry)
	}
	return app.Run(ctx)
}

func serveMetrics(ctx context.Context, logger *slog.Logger, addr string, registry *prometheus.Registry) {
	server := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 2 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}
