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
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type HTTPBuildTimeConfig struct {
	RootPath string `config:"root-path" default:"/"`
}

type FunqyRuntimeConfig struct {
	Workers int `config:"workers" default:"4"`
}

func (*FunqyRuntimeConfig) ConfigRoot() Root {
	return Root{Phase: RunTime}
}

func TestRoot_NormalizeDefaults(t *testing.T) {
	t.Parallel()

	r := Root{}.Normalize()

	assert.Equal(t, BuildTime, r.Phase)
	assert.Equal(t, "quarkus", r.Prefix)
	assert.Equal(t, HyphenatedElementName, r.Name)
}

func TestRoot_NormalizeKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	r := Root{Phase: RunTime, Prefix: "acme", Name: "web"}.Normalize()

	assert.Equal(t, Root{Phase: RunTime, Prefix: "acme", Name: "web"}, r)
}

func TestRoot_Key(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		root Root
		typ  reflect.Type
		want string
	}{
		{"derived from type", Root{}, reflect.TypeOf(HTTPBuildTimeConfig{}), "quarkus.http"},
		{"pointer type", Root{}, reflect.TypeOf(&FunqyRuntimeConfig{}), "quarkus.funqy"},
		{"explicit name", Root{Name: "vertx-http"}, reflect.TypeOf(HTTPBuildTimeConfig{}), "quarkus.vertx-http"},
		{"explicit prefix", Root{Prefix: "acme"}, reflect.TypeOf(HTTPBuildTimeConfig{}), "acme.http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.root.Key(tt.typ))
		})
	}
}

func TestHyphenate(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"HTTP":          "http",
		"RootPath":      "root-path",
		"HTTPBuildTime": "http-build-time",
		"FunqyHttp":     "funqy-http",
		"maxBodySize":   "max-body-size",
		"OAuth2Client":  "o-auth2-client",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Hyphenate(in), in)
	}
}

func TestPhase_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "build-time", BuildTime.String())
	assert.Equal(t, "run-time", RunTime.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
