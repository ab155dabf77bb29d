// Copyright 2025 Magnus Pierre
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

// Package renderexpr compiles user-supplied Go snippets into datagrid
// cell renderers using the yaegi interpreter. It lets admin surfaces
// configure column rendering at runtime instead of linking a renderer
// per column into the binary.
package renderexpr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/magpierre/fyne-datagrid/datagrid"
)

// Errors returned by Compile.
var (
	ErrEmptyBody    = errors.New("renderer body is empty")
	ErrBadSignature = errors.New("renderer has wrong signature")
)

// Compile wraps body into a cell renderer function and evaluates it.
// The body is the function body of
//
//	func(value interface{}, row map[string]interface{}) string
//
// with fmt and strings pre-imported, e.g.
//
//	return strings.ToUpper(fmt.Sprintf("%v", value))
//
// A renderer that panics at render time falls back to the plain
// string form of the value.
func Compile(body string) (datagrid.CellRenderer, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("loading stdlib symbols: %w", err)
	}

	src := fmt.Sprintf(`package cell

import (
	"fmt"
	"strings"
)

var _ = fmt.Sprintf
var _ = strings.ToUpper

func Render(value interface{}, row map[string]interface{}) string {
	%s
}
`, body)

	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("compiling renderer: %w", err)
	}
	v, err := i.Eval("cell.Render")
	if err != nil {
		return nil, fmt.Errorf("resolving renderer: %w", err)
	}
	fn, ok := v.Interface().(func(interface{}, map[string]interface{}) string)
	if !ok {
		return nil, ErrBadSignature
	}

	return func(value any, row datagrid.Row) (out string) {
		defer func() {
			if r := recover(); r != nil {
				out = datagrid.FormatValue(value)
			}
		}()
		return fn(value, map[string]interface{}(row))
	}, nil
}
