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
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"rivaas.dev/router"

	"rivaas.dev/funqy/beans"
	"rivaas.dev/funqy/deployment"
	"rivaas.dev/funqy/executor"
	"rivaas.dev/funqy/function"
	"rivaas.dev/funqy/httpcore"
	"rivaas.dev/funqy/jsonmapper"
	"rivaas.dev/funqy/shutdown"
)

type Order struct {
	Item string `json:"item" validate:"required"`
	Qty  int    `json:"qty" validate:"gte=1"`
}

type Receipt struct {
	Item  string `json:"item"`
	Qty   int    `json:"qty"`
	Total int    `json:"total"`
}

type shop struct {
	price   int
	placed  atomic.Int32
	release chan struct{}
}

func (*shop) Funcs() map[string]string {
	return map[string]string{
		"Place":   "order",
		"Echo":    "",
		"Double":  "",
		"Tags":    "",
		"Fail":    "",
		"Teapot":  "",
		"Panic":   "",
		"Nothing": "",
		"Block":   "",
	}
}

func (s *shop) Place(_ context.Context, o *Order) (*Receipt, error) {
	s.placed.Add(1)
	return &Receipt{Item: o.Item, Qty: o.Qty, Total: o.Qty * s.price}, nil
}

func (*shop) Echo(msg string) string { return msg }

func (*shop) Double(n int) int { return n * 2 }

func (*shop) Tags(in map[string]string) int { return len(in) }

func (*shop) Fail() error { return errors.New("out of stock") }

func (*shop) Teapot() error { return Errorf(http.StatusTeapot, "short and stout") }

func (*shop) Panic() { panic("register jammed") }

func (*shop) Nothing() {}

func (s *shop) Block(ctx context.Context) error {
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fixture struct {
	shop      *shop
	core      *httpcore.Core
	shutdown  *shutdown.Context
	pool      *executor.Pool
	recorder  *Recorder
	handler   *handler
	functions []function.Descriptor
}

type fixtureOptions struct {
	rootPath  string
	noMapper  bool
	recorder  []Option
	bodyLimit int64
}

func newFixture(t *testing.T, fo fixtureOptions) *fixture {
	t.Helper()

	f := &fixture{shop: &shop{price: 3, release: make(chan struct{})}}

	reg := beans.NewRegistry()
	if !fo.noMapper {
		require.NoError(t, jsonmapper.Register(reg))
	}
	require.NoError(t, function.Register(reg, func(*beans.Container) (*shop, error) {
		return f.shop, nil
	}))

	functions, err := function.Discover(reg)
	require.NoError(t, err)
	f.functions = functions

	var coreOpts []httpcore.Option
	if fo.bodyLimit > 0 {
		coreOpts = append(coreOpts, httpcore.WithRuntimeConfig(httpcore.RuntimeConfig{
			Limits: httpcore.LimitsConfig{MaxBodySize: fo.bodyLimit},
		}))
	}
	f.core, err = httpcore.New(httpcore.BuildTimeConfig{RootPath: fo.rootPath}, coreOpts...)
	require.NoError(t, err)
	f.core.RequireBodyHandler()

	f.shutdown = shutdown.New(nil)
	f.pool = executor.NewPool(executor.WithSize(2))
	f.recorder = NewRecorder(functions, fo.recorder...)
	f.recorder.Init()

	f.handler = f.recorder.start(fo.rootPath, f.core, f.shutdown, reg.Build(), f.pool)
	for _, d := range functions {
		require.NoError(t, f.core.Install(deployment.NewRoute("/"+d.Name(), f.handler.serve)))
	}
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.core.ServeHTTP(rec, req)
	return rec
}

// serveWith calls h directly, bypassing the route table.
func (f *fixture) serveWith(h router.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(router.NewContext(rec, httptest.NewRequest(method, target, nil)))
	return rec
}

func (f *fixture) activeCalls() int {
	f.handler.mu.Lock()
	defer f.handler.mu.Unlock()
	return f.handler.active
}
