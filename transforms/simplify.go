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

	"github.com/gx-org/tpc/api/values"
	"github.com/gx-org/tpc/build/ir"
	"github.com/gx-org/tpc/op"
	"github.com/gx-org/tpc/pass"
)

// SimplifyExpr returns a pass applying algebraic identities:
// x*1, 1*x, x+0, 0+x and x-0 are replaced by x.
//
// An identity is applied only if the type of the call is the type of x,
// that is if the constant does not change the shape or the data type.
// The pass expects types to have been inferred.
func SimplifyExpr() pass.Pass {
	return pass.NewFunctionPass(SimplifyExprName, 3, simplifyFunction)
}

func simplifyFunction(ctx context.Context, pc *pass.Context, mod *ir.Module, fn *ir.Function) (*ir.Function, error) {
	r := &ir.Rewriter{Call: simplifyCall}
	return r.RewriteFunction(fn)
}

// isScalar returns true if an expression is a scalar constant equal to a value.
func isScalar(expr ir.Expr, want float64) bool {
	c, ok := expr.(*ir.Constant)
	if !ok {
		return false
	}
	switch valT := c.Val.(type) {
	case *values.Int:
		return float64(valT.Value()) == want
	case *values.Float:
		return valT.Value() == want
	}
	return false
}

func simplifyCall(call *ir.Call) (ir.Expr, error) {
	opRef, ok := call.Fn.(*ir.Op)
	if !ok || len(call.Args) != 2 {
		return call, nil
	}
	x, y := call.Args[0], call.Args[1]
	var keep ir.Expr
	switch opRef.Name {
	case op.Multiply:
		if isScalar(y, 1) {
			keep = x
		} else if isScalar(x, 1) {
			keep = y
		}
	case op.Add:
		if isScalar(y, 0) {
			keep = x
		} else if isScalar(x, 0) {
			keep = y
		}
	case op.Subtract:
		if isScalar(y, 0) {
			keep = x
		}
	}
	if keep == nil {
		return call, nil
	}
	callType, keepType := call.CheckedType(), keep.CheckedType()
	if callType == nil || keepType == nil || !callType.Equal(keepType) {
		return call, nil
	}
	return keep, nil
}
