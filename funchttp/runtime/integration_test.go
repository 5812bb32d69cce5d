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

package runtime_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rivaas.dev/funqy/beans"
	"rivaas.dev/funqy/deployment"
	"rivaas.dev/funqy/executor"
	"rivaas.dev/funqy/funchttp"
	"rivaas.dev/funqy/funchttp/runtime"
	"rivaas.dev/funqy/function"
	"rivaas.dev/funqy/httpcore"
	"rivaas.dev/funqy/jsonmapper"
	"rivaas.dev/funqy/shutdown"
)

type Greeting struct {
	Name string `json:"name" validate:"required"`
}

type greeter struct{}

func (greeter) Funcs() map[string]string {
	return map[string]string{
		"SayHello":     "",
		"SayHelloImpl": "greet",
	}
}

func (greeter) SayHello(in Greeting) string { return "hello " + in.Name }

func (greeter) SayHelloImpl(_ context.Context, in *Greeting) (*Greeting, error) {
	if in.Name == "nobody" {
		return nil, runtime.Errorf(http.StatusUnprocessableEntity, "cannot greet %s", in.Name)
	}
	return &Greeting{Name: "hi " + in.Name}, nil
}

var _ = Describe("Function HTTP binding", func() {
	var (
		baseURL  string
		cancel   context.CancelFunc
		served   chan error
		features *deployment.Items[deployment.Feature]
	)

	start := func(rootPath string) {
		reg := beans.NewRegistry()
		Expect(jsonmapper.Register(reg)).To(Succeed())
		Expect(function.Register(reg, func(*beans.Container) (greeter, error) {
			return greeter{}, nil
		})).To(Succeed())

		functions, err := function.Discover(reg)
		Expect(err).NotTo(HaveOccurred())

		step := &funchttp.BuildStep{}
		unremovable := &deployment.Items[deployment.UnremovableBean]{}
		step.MarkObjectMapper(unremovable)
		reg.Prune(func(name string) bool {
			for _, u := range unremovable.All() {
				if u.Exclusion.Matches(name) {
					return true
				}
			}
			return false
		})

		build := httpcore.BuildTimeConfig{RootPath: rootPath}
		core, err := httpcore.New(build, httpcore.WithRuntimeConfig(httpcore.RuntimeConfig{
			ShutdownTimeout: 2 * time.Second,
			Limits:          httpcore.LimitsConfig{MaxBodySize: 1 << 10},
		}))
		Expect(err).NotTo(HaveOccurred())
		core.RequireBodyHandler()

		sd := shutdown.New(nil)
		pool := executor.NewPool(executor.WithSize(4))
		recorder := runtime.NewRecorder(functions)
		flag := &deployment.FunctionInitialized{}
		container := deployment.NewBeanContainer(reg.Build())

		features = &deployment.Items[deployment.Feature]{}
		routes := &deployment.Items[deployment.Route]{}
		step.StaticInit(recorder, container, flag, &build)
		step.Boot(sd, recorder, features, routes, core, flag, functions, container, &build, pool)
		Expect(core.Install(routes.All()...)).To(Succeed())

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		baseURL = "http://" + ln.Addr().String()

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		served = make(chan error, 1)
		go func() { served <- core.Serve(ctx, ln, sd) }()
	}

	AfterEach(func() {
		cancel()
		Eventually(served, 3*time.Second).Should(Receive(BeNil()))
	})

	call := func(method, path, body string) (int, string) {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req, err := http.NewRequest(method, baseURL+path, r)
		Expect(err).NotTo(HaveOccurred())
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode, string(data)
	}

	Context("at the default root path", func() {
		BeforeEach(func() { start("") })

		It("activates the feature once", func() {
			Expect(features.All()).To(ConsistOf(deployment.Feature{Name: funchttp.Feature}))
		})

		DescribeTable("serves every function at its name",
			func(method, path, body string, wantStatus int, wantBody string) {
				status, got := call(method, path, body)
				Expect(status).To(Equal(wantStatus))
				if wantBody != "" {
					Expect(got).To(MatchJSON(wantBody))
				}
			},
			Entry("method name via GET", http.MethodGet, "/SayHello?name=ada", "", http.StatusOK, `"hello ada"`),
			Entry("method name via POST", http.MethodPost, "/SayHello", `{"name":"ada"}`, http.StatusOK, `"hello ada"`),
			Entry("explicit name", http.MethodPost, "/greet", `{"name":"bob"}`, http.StatusOK, `{"name":"hi bob"}`),
			Entry("function status", http.MethodPost, "/greet", `{"name":"nobody"}`, http.StatusUnprocessableEntity, ""),
			Entry("invalid input", http.MethodPost, "/greet", `{}`, http.StatusBadRequest, ""),
			Entry("missing query input", http.MethodGet, "/greet", "", http.StatusBadRequest, ""),
			Entry("missing body input", http.MethodPost, "/greet", "", http.StatusBadRequest, ""),
			Entry("method name hidden by explicit name", http.MethodGet, "/SayHelloImpl", "", http.StatusNotFound, ""),
		)

		It("rejects oversized bodies", func() {
			status, _ := call(http.MethodPost, "/greet", fmt.Sprintf(`{"name":%q}`, strings.Repeat("x", 2<<10)))
			Expect(status).To(Equal(http.StatusRequestEntityTooLarge))
		})
	})

	Context("below a configured root path", func() {
		BeforeEach(func() { start("/fn") })

		It("mounts functions under the root path", func() {
			status, body := call(http.MethodGet, "/fn/SayHello?name=eve", "")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`"hello eve"`))

			status, _ = call(http.MethodGet, "/SayHello?name=eve", "")
			Expect(status).To(Equal(http.StatusNotFound))
		})
	})
})
