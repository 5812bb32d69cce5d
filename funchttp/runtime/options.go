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
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a [Recorder].
type Option func(*Recorder)

// WithLogger sets the logger. Defaults to the HTTP core's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRegisterer registers invocation metrics with reg.
// Without it metrics are collected but not exported.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Recorder) {
		r.registerer = reg
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Recorder) {
		if tp != nil {
			r.tracerProvider = tp
		}
	}
}

// WithValidator sets the validator applied to decoded inputs.
func WithValidator(v *validator.Validate) Option {
	return func(r *Recorder) {
		if v != nil {
			r.validate = v
		}
	}
}

// WithProblemBaseURL sets the base URL of problem type URIs.
func WithProblemBaseURL(base string) Option {
	return func(r *Recorder) {
		r.problemBaseURL = base
	}
}

func defaults() *Recorder {
	return &Recorder{
		tracerProvider: otel.GetTracerProvider(),
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}
