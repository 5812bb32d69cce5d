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

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/funqy/config/codec"
)

func TestFile_Load(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quarkus:\n  http:\n    root-path: /fn\n"), 0o600))

	values, err := NewFile(path, codec.YAML{}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"quarkus": map[string]any{"http": map[string]any{"root-path": "/fn"}}}, values)
}

func TestFile_LoadMissing(t *testing.T) {
	t.Parallel()

	_, err := NewFile(filepath.Join(t.TempDir(), "nope.yaml"), codec.YAML{}).Load(context.Background())
	assert.ErrorContains(t, err, "nope.yaml")
}

func TestContent_Load(t *testing.T) {
	t.Parallel()

	values, err := NewContent([]byte(`{"a":{"b":1}}`), codec.JSON{}).Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, values, "a")
}

func TestEnv_Load(t *testing.T) {
	t.Parallel()

	src := &Env{
		prefix: "FUNQY_",
		environ: func() []string {
			return []string{"FUNQY_QUARKUS__HTTP__ROOT_PATH=/api", "HOME=/root", "FUNQY_DEBUG=1"}
		},
	}

	values, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", values["debug"])
	assert.Equal(t, map[string]any{"http": map[string]any{"root-path": "/api"}}, values["quarkus"])
	assert.NotContains(t, values, "home")
}
