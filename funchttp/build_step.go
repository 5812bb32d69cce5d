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

package funchttp

import (
	"log/slog"
	"net/http"

	"rivaas.dev/router"

	"rivaas.dev/funqy/beans"
	"rivaas.dev/funqy/deployment"
	"rivaas.dev/funqy/executor"
	"rivaas.dev/funqy/function"
	"rivaas.dev/funqy/httpcore"
	"rivaas.dev/funqy/jsonmapper"
	"rivaas.dev/funqy/shutdown"
)

// Feature is the name of the feature activated by the binder.
const Feature = "funqy-http"

// Recorder is the runtime binding component driven by the build step.
type Recorder interface {
	// Init prepares shared state once, during static init.
	Init()
	// Start returns the request handler shared by all function routes.
	Start(rootPath string, core *httpcore.Core, shutdown shutdown.Registrar, container *beans.Container, exec executor.Executor) router.HandlerFunc
}

// BuildStep wires functions into the HTTP route table.
type BuildStep struct {
	Logger *slog.Logger
}

func (s *BuildStep) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// MarkObjectMapper keeps the object mapper and its producer from being pruned.
func (s *BuildStep) MarkObjectMapper(unremovable deployment.Producer[deployment.UnremovableBean]) {
	unremovable.Produce(deployment.UnremovableBean{
		Exclusion: deployment.BeanClassNameExclusion(beans.NameOf[jsonmapper.ObjectMapper]()),
	})
	unremovable.Produce(deployment.UnremovableBean{
		Exclusion: deployment.BeanClassNameExclusion(beans.NameOf[jsonmapper.Producer]()),
	})
}

// RequestBodyHandler requires the HTTP body handler when functions exist,
// since function inputs may be read from the request body.
func (s *BuildStep) RequestBodyHandler(functions []function.Descriptor) *deployment.RequireBodyHandler {
	if len(functions) == 0 {
		return nil
	}
	return &deployment.RequireBodyHandler{}
}

// StaticInit initializes the recorder when functions exist.
func (s *BuildStep) StaticInit(
	binding Recorder,
	_ *deployment.BeanContainer,
	hasFunctions *deployment.FunctionInitialized,
	_ *httpcore.BuildTimeConfig,
) {
	if hasFunctions == nil {
		return
	}
	binding.Init()
}

// Boot activates the feature and produces one route per function, all served
// by the same handler.
func (s *BuildStep) Boot(
	shutdown shutdown.Registrar,
	binding Recorder,
	features deployment.Producer[deployment.Feature],
	routes deployment.Producer[deployment.Route],
	core *httpcore.Core,
	hasFunctions *deployment.FunctionInitialized,
	functions []function.Descriptor,
	beanContainer *deployment.BeanContainer,
	httpConfig *httpcore.BuildTimeConfig,
	exec executor.Executor,
) {
	if hasFunctions == nil {
		return
	}
	features.Produce(deployment.Feature{Name: Feature})

	var rootPath string
	if httpConfig != nil {
		rootPath = httpConfig.RootPath
	}
	handler := binding.Start(rootPath, core, shutdown, beanContainer.Value(), exec)

	for _, fn := range functions {
		// Relative to the root path; the HTTP core applies the prefix.
		path := "/" + fn.Name()
		routes.Produce(deployment.NewRoute(path, handler, deployment.WithMethods(http.MethodGet, http.MethodPost)))
		s.logger().Debug("function route produced", "function", fn.Name(), "path", path)
	}
}
