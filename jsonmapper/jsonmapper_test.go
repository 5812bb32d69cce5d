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

package jsonmapper

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/funqy/beans"
)

type greeting struct {
	Name string `json:"name"`
}

func TestObjectMapper_ReadWrite(t *testing.T) {
	t.Parallel()

	m := New()
	var g greeting
	require.NoError(t, m.Read(strings.NewReader(`{"name":"Bill","extra":1}`), &g))
	assert.Equal(t, "Bill", g.Name)

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf, greeting{Name: "<b>"}))
	assert.Equal(t, "{\"name\":\"<b>\"}\n", buf.String())
}

func TestObjectMapper_Options(t *testing.T) {
	t.Parallel()

	m := New(WithDisallowUnknownFields(), WithEscapeHTML())

	var g greeting
	assert.Error(t, m.Read(strings.NewReader(`{"name":"Bill","extra":1}`), &g))

	out, err := m.Marshal(greeting{Name: "<b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"\u003cb\u003e"}`, string(out))
}

func TestObjectMapper_ReadMalformed(t *testing.T) {
	t.Parallel()

	var g greeting
	err := New().Read(strings.NewReader(`{"name":`), &g)
	assert.ErrorContains(t, err, "decode json")
}

func TestRegister_BeansArePrunableAndResolvable(t *testing.T) {
	t.Parallel()

	r := beans.NewRegistry()
	require.NoError(t, Register(r, WithEscapeHTML()))

	mapperName := beans.NameOf[ObjectMapper]()
	producerName := beans.NameOf[Producer]()
	assert.Equal(t, "rivaas.dev/funqy/jsonmapper.ObjectMapper", mapperName)
	assert.Equal(t, "rivaas.dev/funqy/jsonmapper.Producer", producerName)

	c := r.Build()
	m, err := beans.Lookup[*ObjectMapper](c)
	require.NoError(t, err)
	assert.True(t, m.escapeHTML)

	removed := r.Prune(nil)
	assert.ElementsMatch(t, []string{mapperName, producerName}, removed)
}
