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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/router"
	"rivaas.dev/router/middleware/bodylimit"

	"rivaas.dev/funqy/beans"
	"rivaas.dev/funqy/executor"
	"rivaas.dev/funqy/function"
	"rivaas.dev/funqy/jsonmapper"
)

var (
	// ErrShuttingDown is reported to callers arriving after shutdown began.
	ErrShuttingDown = errors.New("server is shutting down")

	errUnknownFunction = errors.New("function not found")
)

type handler struct {
	rootPath  string
	invokers  map[string]*function.Invoker
	container *beans.Container
	exec      executor.Executor
	logger    *slog.Logger
	metrics   *metrics
	tracer    trace.Tracer
	validate  *validator.Validate
	problems  problems

	mu       sync.Mutex
	closed   bool
	active   int
	idle     chan struct{}
	idleOnce sync.Once
}

func (h *handler) serve(c *router.Context) {
	w, req := c.Response, c.Request

	if !h.begin() {
		h.fail(w, req, http.StatusServiceUnavailable, "unavailable", ErrShuttingDown)
		return
	}
	defer h.end()

	name := h.functionName(req.URL.Path)
	inv, ok := h.invokers[name]
	if !ok {
		h.fail(w, req, http.StatusNotFound, "function-not-found", fmt.Errorf("%w: %q", errUnknownFunction, name))
		return
	}

	ctx, span := h.tracer.Start(req.Context(), "funqy "+name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("faas.name", name),
			attribute.String("code.function", inv.Descriptor().String()),
			attribute.String("http.request.method", req.Method),
		),
	)
	defer span.End()

	input, err := h.readInput(req, inv)
	if err != nil {
		h.metrics.observe(name, outcomeRejected, 0)
		h.failSpan(span, w, req, http.StatusBadRequest, "invalid-input", err)
		return
	}

	start := time.Now()
	out, err := h.invoke(ctx, inv, input)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		h.metrics.observe(name, outcomeError, elapsed)
		h.failSpan(span, w, req, http.StatusInternalServerError, "function-error", err)
		return
	}
	h.metrics.observe(name, outcomeSuccess, elapsed)

	status, err := h.writeOutput(w, out)
	if err != nil {
		h.failSpan(span, w, req, http.StatusInternalServerError, "output-error", err)
		return
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))
}

// functionName returns the path below the root path without trailing slashes.
func (h *handler) functionName(path string) string {
	if !strings.HasPrefix(path, h.rootPath) {
		return ""
	}
	return strings.TrimRight(strings.TrimPrefix(path, h.rootPath), "/")
}

func (h *handler) readInput(req *http.Request, inv *function.Invoker) (any, error) {
	var (
		input any
		err   error
	)
	switch req.Method {
	case http.MethodGet:
		input, err = decodeQuery(req.URL.Query(), inv)
	case http.MethodPost:
		input, err = h.decodeBody(req, inv)
	default:
		return nil, NewError(http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed, use GET or POST", req.Method))
	}
	if err != nil {
		return nil, err
	}
	if !isStruct(inv.InputType()) {
		return input, nil
	}
	// Struct inputs are validated even when no query or body was sent.
	if input == nil {
		input = inv.NewInput()
	}
	if err := h.validate.Struct(input); err != nil {
		return nil, err
	}
	return input, nil
}

// decodeQuery reads a struct or map input from all query parameters, or a
// scalar input from a single parameter. Values are weakly typed.
func decodeQuery(query url.Values, inv *function.Invoker) (any, error) {
	if !inv.HasInput() || len(query) == 0 {
		return nil, nil
	}

	values := make(map[string]any, len(query))
	for k, vs := range query {
		if len(vs) == 1 {
			values[k] = vs[0]
		} else {
			values[k] = vs
		}
	}

	input := inv.NewInput()
	var src any = values
	if !isStruct(inv.InputType()) && !isMap(inv.InputType()) {
		if len(values) != 1 {
			return nil, fmt.Errorf("input of type %s takes exactly one query parameter", inv.InputType())
		}
		for _, v := range values {
			src = v
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           input,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(src); err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}
	return input, nil
}

func (h *handler) decodeBody(req *http.Request, inv *function.Invoker) (any, error) {
	if !inv.HasInput() || req.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		if errors.Is(err, bodylimit.ErrBodyLimitExceeded) {
			return nil, NewError(http.StatusRequestEntityTooLarge, err)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	mapper, err := h.mapper()
	if err != nil {
		return nil, err
	}
	input := inv.NewInput()
	if err := mapper.Read(bytes.NewReader(data), input); err != nil {
		return nil, err
	}
	return input, nil
}

func (h *handler) mapper() (*jsonmapper.ObjectMapper, error) {
	m, err := beans.Lookup[*jsonmapper.ObjectMapper](h.container)
	if err != nil {
		return nil, NewError(http.StatusInternalServerError, fmt.Errorf("object mapper unavailable: %w", err))
	}
	return m, nil
}

type result struct {
	out any
	err error
}

// invoke runs the function on the executor and waits for its result.
func (h *handler) invoke(ctx context.Context, inv *function.Invoker, input any) (any, error) {
	bean, err := h.container.Get(inv.Descriptor().Bean)
	if err != nil {
		return nil, err
	}

	var res result
	call := func() {
		defer func() {
			if r := recover(); r != nil {
				res.err = fmt.Errorf("function %s panicked: %v", inv.Descriptor(), r)
			}
		}()
		res.out, res.err = inv.Invoke(ctx, bean, input)
	}

	if h.exec == nil {
		call()
		return res.out, res.err
	}
	if err := executor.Run(ctx, h.exec, call); err != nil {
		return nil, NewError(http.StatusServiceUnavailable, err)
	}
	return res.out, res.err
}

func (h *handler) writeOutput(w http.ResponseWriter, out any) (int, error) {
	if out == nil {
		w.WriteHeader(http.StatusNoContent)
		return http.StatusNoContent, nil
	}
	mapper, err := h.mapper()
	if err != nil {
		return 0, err
	}
	body, err := mapper.Marshal(out)
	if err != nil {
		return 0, fmt.Errorf("encode output: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("write response failed", "error", err)
	}
	return http.StatusOK, nil
}

func (h *handler) failSpan(span trace.Span, w http.ResponseWriter, req *http.Request, status int, slug string, err error) {
	prob := h.fail(w, req, status, slug, err)
	span.RecordError(err)
	span.SetAttributes(
		attribute.Int("http.response.status_code", prob.Status),
		attribute.String("error.id", fmt.Sprint(prob.Extensions["error_id"])),
	)
	if prob.Status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, err.Error())
	}
}

func (h *handler) fail(w http.ResponseWriter, req *http.Request, status int, slug string, err error) Problem {
	prob := h.problems.build(req, status, slug, err)
	if prob.Status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", "GET, POST")
	}

	level := slog.LevelDebug
	if prob.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(req.Context(), level, "function request failed",
		"path", req.URL.Path,
		"status", prob.Status,
		"error_id", prob.Extensions["error_id"],
		"error", err,
	)

	if werr := writeProblem(w, prob); werr != nil {
		h.logger.Debug("write problem failed", "error", werr)
	}
	return prob
}

func (h *handler) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.active++
	return true
}

func (h *handler) end() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active--
	if h.closed && h.active == 0 {
		h.idleOnce.Do(func() { close(h.idle) })
	}
}

// shutdown rejects new calls and waits for in-flight calls, then drains the
// executor when it is a pool.
func (h *handler) shutdown(ctx context.Context) {
	h.mu.Lock()
	h.closed = true
	if h.active == 0 {
		h.idleOnce.Do(func() { close(h.idle) })
	}
	h.mu.Unlock()

	select {
	case <-h.idle:
	case <-ctx.Done():
		h.logger.Warn("function calls still running at shutdown", "error", ctx.Err())
		return
	}

	if pool, ok := h.exec.(*executor.Pool); ok {
		if err := pool.Shutdown(ctx); err != nil {
			h.logger.Warn("executor drain incomplete", "error", err)
		}
	}
	h.logger.Info("function handler stopped")
}

func isStruct(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func isMap(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Map
}
