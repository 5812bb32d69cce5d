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

package assembly

import (
	"rivaas.dev/funqy/config"
)

// RuntimeConfig holds the function runtime settings. It is bound from
// "quarkus.funqy".
type RuntimeConfig struct {
	Executor ExecutorConfig `config:"executor"`
}

// ExecutorConfig sizes the executor functions run on.
type ExecutorConfig struct {
	// Size is the maximum number of concurrent invocations. Zero selects
	// GOMAXPROCS.
	Size int `config:"size" default:"0"`
}

// ConfigRoot implements config.RootDeclarer.
func (*RuntimeConfig) ConfigRoot() config.Root {
	return config.Root{Phase: config.RunTime, Name: "funqy"}
}
