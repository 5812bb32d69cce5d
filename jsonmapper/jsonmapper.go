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

// Package jsonmapper provides the JSON object mapper bean shared by HTTP
// bindings, and the producer bean that creates it.
package jsonmapper

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"rivaas.dev/funqy/beans"
)

// ObjectMapper reads and writes JSON values.
type ObjectMapper struct {
	disallowUnknownFields bool
	escapeHTML            bool
}

// Option configures an [ObjectMapper].
type Option func(*ObjectMapper)

// WithDisallowUnknownFields makes Read reject objects carrying fields the
// target type does not declare.
func WithDisallowUnknownFields() Option {
	return func(m *ObjectMapper) { m.disallowUnknownFields = true }
}

// WithEscapeHTML enables escaping of <, > and & in written strings.
func WithEscapeHTML() Option {
	return func(m *ObjectMapper) { m.escapeHTML = true }
}

// New creates an object mapper.
func New(opts ...Option) *ObjectMapper {
	m := &ObjectMapper{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Read decodes one JSON value from r into v.
func (m *ObjectMapper) Read(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if m.disallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// Write encodes v as JSON to w.
func (m *ObjectMapper) Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(m.escapeHTML)
	return enc.Encode(v)
}

// Marshal returns the JSON encoding of v without a trailing newline.
func (m *ObjectMapper) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Write(&buf, v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Producer creates the application's [ObjectMapper].
type Producer struct {
	Options []Option
}

// ObjectMapper returns a mapper configured with the producer's options.
func (p *Producer) ObjectMapper() *ObjectMapper {
	return New(p.Options...)
}

// Register declares the producer and the mapper it produces on r. Neither bean
// is a root, so both are pruned unless marked unremovable.
func Register(r *beans.Registry, opts ...Option) error {
	if err := beans.Singleton(r, &Producer{Options: opts}); err != nil {
		return err
	}
	return beans.Provide(r, func(c *beans.Container) (*ObjectMapper, error) {
		p, err := beans.Lookup[*Producer](c)
		if err != nil {
			return nil, err
		}
		return p.ObjectMapper(), nil
	}, beans.DependsOn(beans.NameOf[Producer]()))
}
