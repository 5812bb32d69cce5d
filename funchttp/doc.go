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

// Package funchttp binds discovered functions to HTTP routes.
//
// [BuildStep] runs while the application is assembled. When at least one
// function was discovered it activates the "funqy-http" feature, obtains a
// single request handler from the runtime [Recorder] and produces one route
// per function at "/" + the function name. The HTTP core mounts those routes
// below its configured root path.
//
// The step also keeps the JSON object mapper beans alive: the runtime handler
// looks them up by name, which the bean pruner cannot see.
package funchttp
