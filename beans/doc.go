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

// Package beans is the dependency-injection registry used during assembly.
//
// Beans are declared on a [Registry] at build time with their statically known
// dependencies. Before the runtime [Container] is built the registry is pruned:
// beans that no root bean reaches and that are not marked unremovable are
// dropped. Beans looked up indirectly at runtime, such as by name through
// [Container.Get], must therefore be marked unremovable.
package beans
