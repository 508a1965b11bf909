// Copyright 2025 Google LLC
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

package fmterr

import (
	"fmt"
	"runtime/debug"

	"github.com/pkg/errors"
)

type (
	// ErrorAt is an error attached to a location in a program,
	// for example a function or an expression.
	ErrorAt interface {
		error
		Loc() fmt.Stringer
		Err() error
	}

	errorAt struct {
		loc fmt.Stringer
		err error
	}
)

var _ ErrorAt = errorAt{}

// At attaches a location to an error.
func At(loc fmt.Stringer, err error) ErrorAt {
	return errorAt{loc: loc, err: err}
}

// Errorf returns a formatted error attached to a location.
func Errorf(loc fmt.Stringer, format string, a ...any) error {
	return At(loc, errors.Errorf(format, a...))
}

// Error returns a string description of the error.
func (err errorAt) Error() (s string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s = fmt.Sprintf("recovered from panic when building error message: %T:\n%v", err.err, string(debug.Stack()))
	}()
	if err.loc == nil {
		return err.err.Error()
	}
	return err.loc.String() + ": " + err.err.Error()
}

// Unwrap the error.
func (err errorAt) Unwrap() error {
	return err.err
}

// Format writes the error into the state of the formatter.
func (err errorAt) Format(s fmt.State, verb rune) {
	Format(err, s, verb)
}

// Loc returns the location of the error.
func (err errorAt) Loc() fmt.Stringer {
	return err.loc
}

// Err returns the error without its location.
func (err errorAt) Err() error {
	return err.err
}
