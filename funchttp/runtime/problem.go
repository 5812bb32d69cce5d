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

package runtime

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const problemContentType = "application/problem+json; charset=utf-8"

// StatusError is implemented by function errors that choose their own HTTP status.
type StatusError interface {
	error
	HTTPStatus() int
}

type statusError struct {
	status int
	err    error
}

// NewError wraps err so it is reported to the caller with status.
func NewError(status int, err error) error {
	return &statusError{status: status, err: err}
}

// Errorf is like [NewError] with a formatted message.
func Errorf(status int, format string, args ...any) error {
	return &statusError{status: status, err: fmt.Errorf(format, args...)}
}

func (e *statusError) Error() string   { return e.err.Error() }
func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) HTTPStatus() int { return e.status }

// FieldError describes one failed validation rule of an input.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Problem is an RFC 9457 problem detail. Extensions are written inline.
type Problem struct {
	Type       string
	Title      string
	Status     int
	Detail     string
	Instance   string
	Extensions map[string]any
}

// MarshalJSON writes the problem members and its extensions as one object.
// Extensions never overwrite the standard members.
func (p Problem) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extensions)+5)
	for k, v := range p.Extensions {
		m[k] = v
	}
	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	} else {
		delete(m, "detail")
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	} else {
		delete(m, "instance")
	}
	return json.Marshal(m)
}

type problems struct {
	baseURL string
}

func (p problems) typeOf(slug string) string {
	if p.baseURL == "" || slug == "" {
		return "about:blank"
	}
	return p.baseURL + "/" + slug
}

// build converts err into a problem. The status comes from a [StatusError]
// in the chain, otherwise fallback.
func (p problems) build(r *http.Request, fallback int, slug string, err error) Problem {
	status := fallback
	var se StatusError
	if errors.As(err, &se) {
		status = se.HTTPStatus()
	}

	prob := Problem{
		Type:     p.typeOf(slug),
		Title:    http.StatusText(status),
		Status:   status,
		Instance: r.URL.Path,
		Extensions: map[string]any{
			"error_id": uuid.NewString(),
		},
	}
	if err != nil {
		prob.Detail = err.Error()
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Namespace(), Rule: fe.Tag(), Param: fe.Param()})
		}
		prob.Detail = "input validation failed"
		prob.Extensions["errors"] = fields
	}
	return prob
}

func writeProblem(w http.ResponseWriter, prob Problem) error {
	body, err := json.Marshal(prob)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", problemContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(prob.Status)
	_, err = w.Write(body)
	return err
}
