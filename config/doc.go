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

// Package config loads application configuration and binds it onto
// configuration roots.
//
// A configuration root is a struct type marked with a [Root] descriptor. The
// descriptor records the [Phase] at which the root is bound and the legacy
// key prefix and name it is read from:
//
//	type HTTPBuildTimeConfig struct {
//	    RootPath string `config:"root-path" default:"/"`
//	}
//
//	func (*HTTPBuildTimeConfig) ConfigRoot() config.Root {
//	    return config.Root{Phase: config.BuildTime}
//	}
//
// With the default prefix the root above is read from "quarkus.http".
//
// Sources are merged in order, later sources overriding earlier ones:
//
//	cfg := config.MustNew(
//	    config.WithFile("application.yaml"),
//	    config.WithEnv("FUNQY_"),
//	    config.WithRoot(&httpCfg, config.Root{}),
//	)
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	if err := cfg.BindRoots(config.BuildTime); err != nil {
//	    return err
//	}
//
// Keys are case-insensitive.
package config
