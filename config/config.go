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

package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"rivaas.dev/funqy/config/codec"
	"rivaas.dev/funqy/config/source"
)

// Option configures a [Config].
type Option func(c *Config) error

// Config holds configuration values merged from its sources and the set of
// configuration roots bound from them.
//
// Config is safe for concurrent use.
type Config struct {
	mu      sync.RWMutex
	values  map[string]any
	sources []Source
	roots   []rootEntry
	tagName string
	schema  *jsonschema.Schema
}

// WithSource adds a source. Later sources override earlier ones.
func WithSource(src Source) Option {
	return func(c *Config) error {
		if src == nil {
			return errors.New("source cannot be nil")
		}
		c.sources = append(c.sources, src)
		return nil
	}
}

// WithFile adds a file source. The format is detected from the extension
// (.yaml, .yml, .json, .toml, .env). Environment variables in path are expanded.
func WithFile(path string) Option {
	return func(c *Config) error {
		path = os.ExpandEnv(path)
		format, err := detectFormat(path)
		if err != nil {
			return NewError("file-source", "detect-format", err)
		}
		return WithFileAs(path, format)(c)
	}
}

// WithFileAs adds a file source decoded with an explicit format.
func WithFileAs(path string, format codec.Type) Option {
	return func(c *Config) error {
		decoder, err := codec.Lookup(format)
		if err != nil {
			return NewError("file-source", "get-decoder", err)
		}
		c.sources = append(c.sources, source.NewFile(os.ExpandEnv(path), decoder))
		return nil
	}
}

// WithContent adds an in-memory document.
//
// Example:
//
//	config.WithContent([]byte("quarkus:\n  http:\n    root-path: /fn"), codec.TypeYAML)
func WithContent(data []byte, format codec.Type) Option {
	return func(c *Config) error {
		decoder, err := codec.Lookup(format)
		if err != nil {
			return NewError("content-source", "get-decoder", err)
		}
		c.sources = append(c.sources, source.NewContent(data, decoder))
		return nil
	}
}

// WithEnv adds the process environment filtered by prefix, see [codec.Env]
// for the key mapping.
func WithEnv(prefix string) Option {
	return func(c *Config) error {
		c.sources = append(c.sources, source.NewEnv(prefix))
		return nil
	}
}

// WithTag sets the struct tag used for binding roots (default "config").
func WithTag(tagName string) Option {
	return func(c *Config) error {
		if tagName == "" {
			return errors.New("tag name cannot be empty")
		}
		c.tagName = tagName
		return nil
	}
}

// WithJSONSchema validates the merged values against a JSON schema on Load.
func WithJSONSchema(schema []byte) Option {
	return func(c *Config) error {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
		if err != nil {
			return NewError("json-schema", "parse", err)
		}
		compiler := jsonschema.NewCompiler()
		if err = compiler.AddResource("config.schema.json", doc); err != nil {
			return NewError("json-schema", "add-resource", err)
		}
		if c.schema, err = compiler.Compile("config.schema.json"); err != nil {
			return NewError("json-schema", "compile", err)
		}
		return nil
	}
}

// WithRoot registers target as a configuration root described by root.
// target must be a pointer to a struct.
//
// Example:
//
//	var httpCfg HTTPBuildTimeConfig
//	config.WithRoot(&httpCfg, config.Root{Phase: config.BuildTime})
func WithRoot(target any, root Root) Option {
	return func(c *Config) error {
		return c.AddRoot(target, root)
	}
}

// New creates a Config. Option errors are joined and returned together with
// the partially configured Config.
func New(options ...Option) (*Config, error) {
	c := &Config{
		values:  map[string]any{},
		tagName: "config",
	}

	var errs error
	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return c, errs //nolint:nilnil // partial config is returned on purpose
}

// MustNew is like [New] but panics on error.
func MustNew(options ...Option) *Config {
	c, err := New(options...)
	if err != nil {
		panic(fmt.Sprintf("config: failed to create config: %v", err))
	}
	return c
}

// AddRoot registers a configuration root. Types implementing [RootDeclarer]
// contribute their own descriptor when root is the zero value.
func (c *Config) AddRoot(target any, root Root) error {
	if target == nil {
		return errors.New("root target cannot be nil")
	}
	t := reflect.TypeOf(target)
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("root target must be a pointer to a struct, got %T", target)
	}
	if d, ok := target.(RootDeclarer); ok && root == (Root{}) {
		root = d.ConfigRoot()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.roots = append(c.roots, rootEntry{target: target, root: root.Normalize()})
	return nil
}

// Roots returns the keys of the registered roots of the given phase.
func (c *Config) Roots(phase Phase) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys []string
	for _, e := range c.roots {
		if e.root.Phase == phase {
			keys = append(keys, e.key())
		}
	}
	return keys
}

// Load reads every source in order, merges the results and validates them.
// Values are replaced atomically; on error the previous values are kept.
func (c *Config) Load(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context cannot be nil")
	}

	merged := make(map[string]any)
	for i, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		values, err := src.Load(ctx)
		if err != nil {
			return NewError(fmt.Sprintf("source[%d]", i), "load", err)
		}
		if err = mergo.Map(&merged, lowerKeys(values), mergo.WithOverride); err != nil {
			return NewError(fmt.Sprintf("source[%d]", i), "merge", err)
		}
	}

	if c.schema != nil {
		if err := c.schema.Validate(merged); err != nil {
			return NewError("json-schema", "validate", err)
		}
	}

	c.mu.Lock()
	c.values = merged
	c.mu.Unlock()
	return nil
}

// BindRoots decodes the loaded values into every root registered for phase.
// Fields missing from the configuration receive their `default` tag value.
func (c *Config) BindRoots(phase Phase) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.roots {
		if e.root.Phase != phase {
			continue
		}
		key := e.key()
		if err := c.bind(lookup(c.values, key), e.target); err != nil {
			return NewError("root["+key+"]", "bind", err)
		}
	}
	return nil
}

func (c *Config) bind(values any, target any) error {
	if values != nil {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          c.tagName,
			Squash:           true,
			WeaklyTypedInput: true,
			Result:           target,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.StringToTimeHookFunc(time.RFC3339),
			),
		})
		if err != nil {
			return fmt.Errorf("create decoder: %w", err)
		}
		if err = decoder.Decode(values); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
	}
	return applyDefaults(target)
}

// Get returns the raw value at a dotted, case-insensitive key, or nil.
func (c *Config) Get(key string) any {
	if c == nil || key == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lookup(c.values, key)
}

// lookup walks a dotted key through nested maps.
func lookup(values map[string]any, key string) any {
	key = strings.ToLower(key)
	if v, ok := values[key]; ok {
		return v
	}

	var current any = values
	for _, segment := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		if current, ok = m[segment]; !ok {
			return nil
		}
	}
	return current
}

// lowerKeys recursively lowercases map keys for case-insensitive merging.
func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = lowerKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}
