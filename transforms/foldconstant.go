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
	"github.com/gx-org/tpc/interp"
	"github.com/gx-org/tpc/pass"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// FoldMaxElementsKey is the configuration key of the maximum number of
// elements of a folded constant. Calls producing larger values are kept.
// Zero, the default, does not limit folding.
const FoldMaxElementsKey = "fold_constant.max_elements"

// FoldConstant returns a pass evaluating the operator calls whose arguments are
// all constants. Let bindings of constants are inlined and items of literal
// tuples are extracted.
func FoldConstant() pass.Pass {
	return pass.NewFunctionPass(FoldConstantName, 2, foldFunction)
}

type folder struct {
	log         klog.Logger
	itp         *interp.Interpreter
	r           *ir.Rewriter
	maxElements int
}

func foldFunction(ctx context.Context, pc *pass.Context, mod *ir.Module, fn *ir.Function) (*ir.Function, error) {
	maxElements, err := pass.ConfigValue(pc, FoldMaxElementsKey, 0)
	if err != nil {
		return nil, err
	}
	if maxElements < 0 {
		return nil, errors.Errorf("configuration %q: %d is negative", FoldMaxElementsKey, maxElements)
	}
	f := &folder{
		log:         klog.FromContext(ctx),
		itp:         interp.New(mod),
		maxElements: maxElements,
	}
	f.r = &ir.Rewriter{
		Call:         f.call,
		TupleGetItem: f.tupleGetItem,
		Let:          f.let,
	}
	return f.r.RewriteFunction(fn)
}

func constant(expr ir.Expr) (*ir.Constant, bool) {
	c, ok := expr.(*ir.Constant)
	return c, ok
}

// newConstant returns a constant replacing an expression.
// The constant is typed if the expression was.
func newConstant(expr ir.Expr, val values.Value) ir.Expr {
	c := ir.NewConstant(val)
	if expr.CheckedType() == nil {
		return c
	}
	return ir.WithType(c, val.Type())
}

func (f *folder) call(call *ir.Call) (ir.Expr, error) {
	if _, isOp := call.Fn.(*ir.Op); !isOp {
		return call, nil
	}
	for _, arg := range call.Args {
		if _, ok := constant(arg); !ok {
			return call, nil
		}
	}
	val, err := f.itp.Eval(call)
	if err != nil {
		// The error is reported when the program runs.
		f.log.V(2).Info("cannot fold call", "call", call.String(), "err", err)
		return call, nil
	}
	if n := numElements(val); f.maxElements > 0 && n > f.maxElements {
		f.log.V(2).Info("folded value too large", "call", call.String(), "elements", n, "max", f.maxElements)
		return call, nil
	}
	return newConstant(call, val), nil
}

func numElements(val values.Value) int {
	switch valT := val.(type) {
	case *values.Tensor:
		n := 1
		for _, dim := range valT.Type().(*ir.TensorType).Shape {
			n *= dim
		}
		return n
	case *values.Tuple:
		n := 0
		for _, elt := range valT.Values() {
			n += numElements(elt)
		}
		return n
	}
	return 1
}

func (f *folder) tupleGetItem(item *ir.TupleGetItem) (ir.Expr, error) {
	switch tplT := item.Tuple.(type) {
	case *ir.Tuple:
		if item.Index < 0 || item.Index >= len(tplT.Fields) {
			return item, nil
		}
		return tplT.Fields[item.Index], nil
	case *ir.Constant:
		tpl, ok := tplT.Val.(*values.Tuple)
		if !ok {
			return item, nil
		}
		val, err := tpl.At(item.Index)
		if err != nil {
			return item, nil
		}
		return newConstant(item, val), nil
	}
	return item, nil
}

func (f *folder) let(let *ir.Let) (ir.Expr, error) {
	if _, ok := constant(let.Value); !ok {
		return let, nil
	}
	body, err := ir.Substitute(let.Body, map[*ir.Var]ir.Expr{let.Var: let.Value})
	if err != nil {
		return nil, err
	}
	return f.r.Rewrite(body)
}
