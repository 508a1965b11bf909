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
	"github.com/gx-org/tpc/internal/base/scope"
	"github.com/gx-org/tpc/op"
	"github.com/gx-org/tpc/pass"
	"github.com/pkg/errors"
)

// InferType returns a pass annotating every expression with its type.
//
// Function parameters must be annotated. Let variables are replaced by
// variables annotated with the type of their value and the result type
// of every function is set.
func InferType() pass.Pass {
	return pass.NewModulePass(InferTypeName, 0, inferModule)
}

type (
	// vars maps the variables of the input to the typed variables of the output.
	vars = scope.Scope[*ir.Var, *ir.Var]

	typer struct {
		mod    *ir.Module
		done   map[string]*ir.Function
		active map[string]bool
	}
)

func inferModule(ctx context.Context, pc *pass.Context, mod *ir.Module) (*ir.Module, error) {
	t := &typer{
		mod:    mod,
		done:   make(map[string]*ir.Function),
		active: make(map[string]bool),
	}
	defs := mod.Defs()
	for i, def := range defs {
		fn, err := t.global(def.Name)
		if err != nil {
			return nil, err
		}
		defs[i].Func = fn
	}
	return ir.NewModule(defs...)
}

func typeErrorf(expr ir.Expr, format string, a ...any) error {
	return &pass.TypeCheckFailure{Expr: expr, Err: errors.Errorf(format, a...)}
}

// global returns the typed version of a function of the module.
func (t *typer) global(name string) (*ir.Function, error) {
	if fn, ok := t.done[name]; ok {
		return fn, nil
	}
	fn, ok := t.mod.Lookup(name)
	if !ok {
		return nil, errors.Errorf("function @%s not found in module", name)
	}
	if t.active[name] {
		// Recursive call: the signature has to be given explicitly.
		return fn, nil
	}
	t.active[name] = true
	defer delete(t.active, name)
	typed, err := t.function(scope.New[*ir.Var, *ir.Var](nil), fn)
	if err != nil {
		return nil, err
	}
	t.done[name] = typed
	return typed, nil
}

func (t *typer) function(scp *vars, fn *ir.Function) (*ir.Function, error) {
	child := scp.NewChild()
	for _, param := range fn.Params {
		if param.Annot == nil {
			return nil, typeErrorf(param, "parameter has no type annotation")
		}
		child.Define(param, param)
	}
	body, err := t.infer(child, fn.Body)
	if err != nil {
		return nil, err
	}
	ret := body.CheckedType()
	if fn.Ret != nil && !fn.Ret.Equal(ret) {
		return nil, typeErrorf(fn.Body, "function returns %s but body has type %s", fn.Ret.String(), ret.String())
	}
	c := *fn
	c.Body = body
	c.Ret = ret
	return ir.WithType(&c, c.Type()), nil
}

func (t *typer) signature(expr ir.Expr, fn *ir.Function) (*ir.FuncType, error) {
	typ := fn.Type()
	for _, param := range fn.Params {
		if param.Annot == nil {
			return nil, typeErrorf(param, "parameter has no type annotation")
		}
	}
	if typ.Result == nil {
		return nil, typeErrorf(expr, "result type of a recursive function needs to be annotated")
	}
	return typ, nil
}

func (t *typer) infer(scp *vars, expr ir.Expr) (ir.Expr, error) {
	switch exprT := expr.(type) {
	case *ir.Constant:
		return ir.WithType(exprT, exprT.Val.Type()), nil
	case *ir.Var:
		typed, ok := scp.Find(exprT)
		if !ok {
			return nil, typeErrorf(exprT, "variable is not bound")
		}
		return typed, nil
	case *ir.GlobalVar:
		fn, err := t.global(exprT.Name)
		if err != nil {
			return nil, err
		}
		typ, err := t.signature(exprT, fn)
		if err != nil {
			return nil, err
		}
		return ir.WithType(exprT, typ), nil
	case *ir.Op:
		return nil, typeErrorf(exprT, "operator can only be called")
	case *ir.Call:
		return t.call(scp, exprT)
	case *ir.Tuple:
		fields, types, err := t.inferAll(scp, exprT.Fields)
		if err != nil {
			return nil, err
		}
		c := *exprT
		c.Fields = fields
		return ir.WithType(&c, &ir.TupleType{Types: types}), nil
	case *ir.TupleGetItem:
		tpl, err := t.infer(scp, exprT.Tuple)
		if err != nil {
			return nil, err
		}
		tplType, ok := tpl.CheckedType().(*ir.TupleType)
		if !ok {
			return nil, typeErrorf(exprT, "cannot get an item from a value of type %s", tpl.CheckedType().String())
		}
		if exprT.Index < 0 || exprT.Index >= len(tplType.Types) {
			return nil, typeErrorf(exprT, "index %d out of range for a tuple of type %s", exprT.Index, tplType.String())
		}
		c := *exprT
		c.Tuple = tpl
		return ir.WithType(&c, tplType.Types[exprT.Index]), nil
	case *ir.Let:
		return t.let(scp, exprT)
	case *ir.Function:
		fn, err := t.function(scp, exprT)
		if err != nil {
			return nil, err
		}
		return fn, nil
	}
	return nil, errors.Errorf("cannot infer the type of %T: not supported", expr)
}

func (t *typer) inferAll(scp *vars, exprs []ir.Expr) ([]ir.Expr, []ir.Type, error) {
	out := make([]ir.Expr, len(exprs))
	types := make([]ir.Type, len(exprs))
	for i, expr := range exprs {
		var err error
		if out[i], err = t.infer(scp, expr); err != nil {
			return nil, nil, err
		}
		types[i] = out[i].CheckedType()
	}
	return out, types, nil
}

func (t *typer) call(scp *vars, call *ir.Call) (ir.Expr, error) {
	args, argTypes, err := t.inferAll(scp, call.Args)
	if err != nil {
		return nil, err
	}
	c := *call
	c.Args = args
	if opRef, isOp := call.Fn.(*ir.Op); isOp {
		typ, err := op.InferType(opRef.Name, argTypes)
		if err != nil {
			return nil, &pass.TypeCheckFailure{Expr: call, Err: err}
		}
		return ir.WithType(&c, typ), nil
	}
	fn, err := t.infer(scp, call.Fn)
	if err != nil {
		return nil, err
	}
	fnType, ok := fn.CheckedType().(*ir.FuncType)
	if !ok {
		return nil, typeErrorf(call, "cannot call a value of type %s", fn.CheckedType().String())
	}
	if len(args) != len(fnType.Params) {
		return nil, typeErrorf(call, "function of type %s expects %d arguments but got %d", fnType.String(), len(fnType.Params), len(args))
	}
	for i, param := range fnType.Params {
		if !param.Equal(argTypes[i]) {
			return nil, typeErrorf(call.Args[i], "argument %d has type %s but function expects %s", i, argTypes[i].String(), param.String())
		}
	}
	if fnType.Result == nil {
		return nil, typeErrorf(call, "result type of %s is unknown", call.Fn.String())
	}
	c.Fn = fn
	return ir.WithType(&c, fnType.Result), nil
}

func (t *typer) let(scp *vars, let *ir.Let) (ir.Expr, error) {
	valueScope := scp
	rec := let.Var
	if fn, isFunc := let.Value.(*ir.Function); isFunc {
		// A function bound by a let can call itself if its signature is complete.
		if rec.Annot == nil && fn.Ret != nil {
			sig, err := t.signature(let.Value, fn)
			if err != nil {
				return nil, err
			}
			rec = ir.NewVar(let.Var.Name, sig)
		}
		if rec.Annot != nil {
			valueScope = scp.NewChild()
			valueScope.Define(let.Var, rec)
		}
	}
	value, err := t.infer(valueScope, let.Value)
	if err != nil {
		return nil, err
	}
	typ := value.CheckedType()
	typed := let.Var
	if let.Var.Annot == nil {
		typed = ir.NewVar(let.Var.Name, typ)
	} else if !let.Var.Annot.Equal(typ) {
		return nil, typeErrorf(let, "variable %s has type %s but value has type %s", let.Var.String(), let.Var.Annot.String(), typ.String())
	}
	if rec != let.Var {
		if value, err = ir.Substitute(value, map[*ir.Var]ir.Expr{rec: typed}); err != nil {
			return nil, err
		}
	}
	child := scp.NewChild()
	child.Define(let.Var, typed)
	body, err := t.infer(child, let.Body)
	if err != nil {
		return nil, err
	}
	c := *let
	c.Var, c.Value, c.Body = typed, value, body
	return ir.WithType(&c, body.CheckedType()), nil
}
