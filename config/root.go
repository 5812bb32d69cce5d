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
	"reflect"
	"strings"
	"unicode"
)

// Phase determines when the values of a configuration root are resolved.
type Phase int

const (
	// BuildTime roots are bound while the application is assembled and are
	// visible to build steps and static-init recorders.
	BuildTime Phase = iota
	// RunTime roots are bound during runtime init, after static init completed.
	RunTime
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case BuildTime:
		return "build-time"
	case RunTime:
		return "run-time"
	default:
		return "unknown"
	}
}

const (
	// DefaultPrefix is the legacy key prefix of every configuration root.
	DefaultPrefix = "quarkus"

	// HyphenatedElementName is the placeholder base key meaning "derive the key
	// from the hyphenated name of the annotated type".
	HyphenatedElementName = "<<hyphenated element name>>"
)

// Root marks a type as a configuration root. Instances of such types are bound
// from the loaded configuration at the root's phase and handed to build steps or
// recorders.
//
// The zero value is a build-time root with the default prefix and a derived name.
type Root struct {
	// Phase selects when the root is bound.
	Phase Phase

	// Prefix is the legacy key prefix.
	//
	// Deprecated: declare the full key with a mapping instead. Kept for
	// compatibility with existing configuration files.
	Prefix string

	// Name is the legacy base key below Prefix.
	//
	// Deprecated: declare the full key with a mapping instead.
	Name string
}

// RootDeclarer is implemented by configuration types that carry their own
// root descriptor.
type RootDeclarer interface {
	ConfigRoot() Root
}

// Normalize returns a copy of r with documented defaults filled in.
func (r Root) Normalize() Root {
	if r.Prefix == "" {
		r.Prefix = DefaultPrefix
	}
	if r.Name == "" {
		r.Name = HyphenatedElementName
	}
	return r
}

// Key returns the dotted configuration key the root of type t is bound from.
func (r Root) Key(t reflect.Type) string {
	r = r.Normalize()
	name := r.Name
	if name == HyphenatedElementName {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		name = Hyphenate(trimRootSuffix(t.Name()))
	}
	if name == "" {
		return r.Prefix
	}
	return r.Prefix + "." + name
}

var rootSuffixes = []string{"BuildTimeConfig", "RuntimeConfig", "RunTimeConfig", "Configuration", "Config"}

func trimRootSuffix(name string) string {
	for _, suffix := range rootSuffixes {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok && trimmed != "" {
			return trimmed
		}
	}
	return name
}

// Hyphenate converts a Go identifier to its lower-case hyphenated form.
// Acronyms are kept together: HTTPBuildTime becomes "http-build-time".
func Hyphenate(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// rootEntry is one registered configuration root.
type rootEntry struct {
	target any
	root   Root
}

func (e rootEntry) key() string {
	return e.root.Key(reflect.TypeOf(e.target))
}
