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

package transforms

import (
	"context"

	"github.com/gx-org/tpc/build/ir"
	"github.com/gx-org/tpc/pass"
)

// EliminateDeadCode returns a pass removing let bindings of unused variables.
// Operators have no side effects: the value of an unused binding is never needed.
func EliminateDeadCode() pass.Pass {
	return pass.NewFunctionPass(EliminateDeadCodeName, 1, eliminateDeadCode)
}

func eliminateDeadCode(ctx context.Context, pc *pass.Context, mod *ir.Module, fn *ir.Function) (*ir.Function, error) {
	r := &ir.Rewriter{
		Let: func(let *ir.Let) (ir.Expr, error) {
			if ir.Uses(let.Body, let.Var) {
				return let, nil
			}
			return let.Body, nil
		},
	}
	return r.RewriteFunction(fn)
}
