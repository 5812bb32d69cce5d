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

package httpcore

import (
	"net"
	"strconv"
	"strings"
	"time"

	"rivaas.dev/funqy/config"
)

// BuildTimeConfig is the HTTP configuration fixed while the application is
// assembled. It is bound from "quarkus.http".
type BuildTimeConfig struct {
	// RootPath is the path every route is mounted under.
	RootPath string `config:"root-path" default:"/"`
}

// ConfigRoot implements config.RootDeclarer.
func (*BuildTimeConfig) ConfigRoot() config.Root {
	return config.Root{Phase: config.BuildTime, Name: "http"}
}

// RuntimeConfig is the HTTP configuration read on every start. It is bound
// from "quarkus.http" as well.
type RuntimeConfig struct {
	Host              string          `config:"host" default:"0.0.0.0"`
	Port              int             `config:"port" default:"8080"`
	ReadHeaderTimeout time.Duration   `config:"read-header-timeout" default:"2s"`
	IdleTimeout       time.Duration   `config:"idle-timeout" default:"60s"`
	ShutdownTimeout   time.Duration   `config:"shutdown-timeout" default:"30s"`
	Limits            LimitsConfig    `config:"limits"`
	AccessLog         AccessLogConfig `config:"access-log"`
}

// LimitsConfig bounds request sizes.
type LimitsConfig struct {
	MaxBodySize int64 `config:"max-body-size" default:"10485760"`
}

// AccessLogConfig controls request logging.
type AccessLogConfig struct {
	Enabled bool `config:"enabled" default:"false"`
	// SlowThreshold marks requests at least this slow; they are logged at Warn.
	SlowThreshold time.Duration `config:"slow-threshold" default:"500ms"`
}

// ConfigRoot implements config.RootDeclarer.
func (*RuntimeConfig) ConfigRoot() config.Root {
	return config.Root{Phase: config.RunTime, Name: "http"}
}

// Addr returns the listen address.
func (c RuntimeConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NormalizeRootPath returns root with a leading and a trailing slash.
// An empty root is "/".
func NormalizeRootPath(root string) string {
	if root == "" {
		return "/"
	}
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return root
}

// JoinPath mounts a route path under root.
func JoinPath(root, path string) string {
	return NormalizeRootPath(root) + strings.TrimPrefix(path, "/")
}
