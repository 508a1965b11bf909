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

package pass

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gx-org/tpc/build/fmterr"
	"github.com/gx-org/tpc/build/ir"
)

type (
	// PassFailure is returned when a pass fails.
	PassFailure struct {
		// Pass is the name of the failing pass.
		Pass string
		// Module is the identity of the module given to the failing pass.
		Module uuid.UUID
		// Last is the last module successfully produced before the failure.
		Last *ir.Module
		// Err is the error returned by the pass.
		Err error
	}

	// TypeCheckFailure is returned by type inference when an expression
	// cannot be typed.
	TypeCheckFailure struct {
		Expr ir.Expr
		Err  error
	}
)

var (
	_ error = (*PassFailure)(nil)
	_ error = (*TypeCheckFailure)(nil)
)

func (f *PassFailure) Error() string {
	return fmt.Sprintf("pass %s failed on module %s: %v", f.Pass, f.Module, f.Err)
}

// Unwrap returns the error returned by the pass.
func (f *PassFailure) Unwrap() error {
	return f.Err
}

// Format the error. The verbose flag prints the stack trace.
func (f *PassFailure) Format(s fmt.State, verb rune) {
	fmterr.Format(f, s, verb)
}

func (f *TypeCheckFailure) Error() string {
	return fmterr.At(f.Expr, f.Err).Error()
}

// Unwrap returns the underlying type error.
func (f *TypeCheckFailure) Unwrap() error {
	return f.Err
}
