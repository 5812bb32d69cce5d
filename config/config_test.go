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

//go:build !integration

package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/funqy/config/codec"
)

type limitsRuntimeConfig struct {
	MaxBodySize int64         `config:"max-body-size" default:"1048576"`
	Timeout     time.Duration `config:"timeout" default:"5s"`
	Enabled     bool          `config:"enabled" default:"true"`
	Tags        []string      `config:"tags"`
}

type failingSource struct{}

func (failingSource) Load(context.Context) (map[string]any, error) {
	return nil, errors.New("boom")
}

func TestConfig_LoadAndBindBuildTimeRoot(t *testing.T) {
	t.Parallel()

	var httpCfg HTTPBuildTimeConfig
	cfg := MustNew(
		WithContent([]byte("QUARKUS:\n  HTTP:\n    root-path: /fn\n"), codec.TypeYAML),
		WithRoot(&httpCfg, Root{}),
	)

	require.NoError(t, cfg.Load(context.Background()))
	require.NoError(t, cfg.BindRoots(BuildTime))

	assert.Equal(t, "/fn", httpCfg.RootPath)
	assert.Equal(t, "/fn", cfg.String("quarkus.http.root-path"))
}

func TestConfig_BindRootsOnlyBindsRequestedPhase(t *testing.T) {
	t.Parallel()

	var httpCfg HTTPBuildTimeConfig
	var funqyCfg FunqyRuntimeConfig
	cfg := MustNew(
		WithContent([]byte(`{"quarkus":{"funqy":{"workers":"16"}}}`), codec.TypeJSON),
		WithRoot(&httpCfg, Root{}),
		WithRoot(&funqyCfg, Root{}),
	)
	require.NoError(t, cfg.Load(context.Background()))

	assert.Equal(t, []string{"quarkus.http"}, cfg.Roots(BuildTime))
	assert.Equal(t, []string{"quarkus.funqy"}, cfg.Roots(RunTime))

	require.NoError(t, cfg.BindRoots(BuildTime))
	assert.Equal(t, "/", httpCfg.RootPath, "missing key falls back to default tag")
	assert.Zero(t, funqyCfg.Workers)

	require.NoError(t, cfg.BindRoots(RunTime))
	assert.Equal(t, 16, funqyCfg.Workers)
}

func TestConfig_DefaultsAndWeakTyping(t *testing.T) {
	t.Parallel()

	var limits limitsRuntimeConfig
	cfg := MustNew(
		WithContent([]byte("[quarkus.limits]\ntimeout = \"250ms\"\ntags = \"a,b\"\n"), codec.TypeTOML),
		WithRoot(&limits, Root{Phase: RunTime, Name: "limits"}),
	)
	require.NoError(t, cfg.Load(context.Background()))
	require.NoError(t, cfg.BindRoots(RunTime))

	assert.Equal(t, int64(1<<20), limits.MaxBodySize)
	assert.Equal(t, 250*time.Millisecond, limits.Timeout)
	assert.True(t, limits.Enabled)
	assert.Equal(t, []string{"a", "b"}, limits.Tags)
}

func TestConfig_LaterSourcesOverride(t *testing.T) {
	t.Parallel()

	cfg := MustNew(
		WithContent([]byte("quarkus:\n  http:\n    root-path: /a\n    port: 8080\n"), codec.TypeYAML),
		WithContent([]byte("QUARKUS__HTTP__ROOT_PATH=/b\n"), codec.TypeEnv),
	)
	require.NoError(t, cfg.Load(context.Background()))

	assert.Equal(t, "/b", cfg.String("quarkus.http.root-path"))
	assert.Equal(t, 8080, cfg.Int("quarkus.http.port"))
	assert.Equal(t, "fallback", cfg.StringOr("quarkus.http.host", "fallback"))
}

func TestConfig_LoadSourceError(t *testing.T) {
	t.Parallel()

	cfg := MustNew(WithSource(failingSource{}))
	err := cfg.Load(context.Background())

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "source[0]", cfgErr.Source)
	assert.Equal(t, "load", cfgErr.Operation)
}

func TestConfig_JSONSchema(t *testing.T) {
	t.Parallel()

	schema := []byte(`{
		"type": "object",
		"properties": {"port": {"type": "integer"}},
		"required": ["port"]
	}`)

	cfg := MustNew(
		WithContent([]byte(`{"host": "localhost"}`), codec.TypeJSON),
		WithJSONSchema(schema),
	)
	err := cfg.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json-schema")
}

func TestNew_OptionErrors(t *testing.T) {
	t.Parallel()

	_, err := New(
		WithSource(nil),
		WithFile("settings.ini"),
		WithTag(""),
		WithRoot(HTTPBuildTimeConfig{}, Root{}),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source cannot be nil")
	assert.Contains(t, err.Error(), "WithFileAs")
	assert.Contains(t, err.Error(), "tag name cannot be empty")
	assert.Contains(t, err.Error(), "pointer to a struct")

	assert.Panics(t, func() { MustNew(WithSource(nil)) })
}

func TestConfig_NilAndEmptyKeys(t *testing.T) {
	t.Parallel()

	var cfg *Config
	assert.Nil(t, cfg.Get("a"))
	assert.Nil(t, MustNew().Get(""))
}
