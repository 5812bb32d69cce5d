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

package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// TypeEnv is the type of newline separated KEY=value documents.
const TypeEnv Type = "env"

func init() {
	Register(TypeEnv, Env{})
}

// Env decodes newline separated KEY=value pairs into nested maps.
//
// Keys are lowercased. A double underscore separates nesting levels and a
// single underscore becomes a hyphen, so HTTP__ROOT_PATH=/api decodes to
// {"http": {"root-path": "/api"}}.
type Env struct{}

// Decode implements [Decoder]. v must be a *map[string]any.
func (Env) Decode(data []byte, v any) error {
	out, ok := v.(*map[string]any)
	if !ok {
		return fmt.Errorf("env decoder: expected *map[string]any, got %T", v)
	}

	conf := make(map[string]any)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}

		var parts []string
		for _, part := range strings.Split(strings.ToLower(key), "__") {
			part = strings.Trim(strings.ReplaceAll(part, "_", "-"), "-")
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) == 0 {
			continue
		}

		current := conf
		for _, part := range parts[:len(parts)-1] {
			next, isMap := current[part].(map[string]any)
			if !isMap {
				next = make(map[string]any)
				current[part] = next
			}
			current = next
		}
		current[parts[len(parts)-1]] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("env decoder: %w", err)
	}

	*out = conf
	return nil
}
