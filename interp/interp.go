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

// Package interp evaluates expressions of the intermediate representation.
//
// The interpreter is the reference executor: operators are computed on the
// host with the operator catalog. Compiler passes use it to fold constants.
package interp

import (
	"github.com/gx-org/tpc/api/executor"
	"github.com/gx-org/tpc/api/values"
	"github.com/gx-org/tpc/base/ordered"
	"github.com/gx-org/tpc/build/ir"
	"github.com/gx-org/tpc/internal/base/scope"
	"github.com/gx-org/tpc/op"
	"github.com/pkg/errors"
)

// MaxDepth is the maximum number of nested function calls.
const MaxDepth = 1 << 12

type (
	// Interpreter evaluates expressions given an optional module
	// resolving global functions.
	Interpreter struct {
		mod *ir.Module
	}

	env = scope.Scope[*ir.Var, values.Value]

	// state of a single evaluation.
	state struct {
		mod   *ir.Module
		depth int
	}
)

var _ executor.Executor = (*Interpreter)(nil)

// New returns a new interpreter.
// The module can be nil if expressions do not reference global functions.
func New(mod *ir.Module) *Interpreter {
	return &Interpreter{mod: mod}
}

// Module returns the module used to resolve global functions.
func (itp *Interpreter) Module() *ir.Module {
	return itp.mod
}

// Eval evaluates a closed expression.
func (itp *Interpreter) Eval(expr ir.Expr) (values.Value, error) {
	st := &state{mod: itp.mod}
	return st.eval(scope.New[*ir.Var, values.Value](nil), expr)
}

// Call calls a global function of the module.
func (itp *Interpreter) Call(name string, args ...values.Value) (values.Value, error) {
	st := &state{mod: itp.mod}
	fn, err := st.global(name)
	if err != nil {
		return nil, err
	}
	return st.apply(fn, args)
}

func (st *state) global(name string) (*values.Closure, error) {
	if st.mod == nil {
		return nil, errors.Errorf("cannot resolve @%s: no module", name)
	}
	fn, ok := st.mod.Lookup(name)
	if !ok {
		return nil, errors.Errorf("function @%s not found in module", name)
	}
	return values.NewClosure(nil, fn, nil)
}

func (st *state) eval(scp *env, expr ir.Expr) (values.Value, error) {
	switch exprT := expr.(type) {
	case *ir.Constant:
		val, ok := exprT.Val.(values.Value)
		if !ok {
			return nil, errors.Errorf("constant %s of type %T is not a runtime value", exprT.String(), exprT.Val)
		}
		return val, nil
	case *ir.Var:
		val, ok := scp.Find(exprT)
		if !ok {
			return nil, errors.Errorf("variable %s is not bound", exprT.String())
		}
		return val, nil
	case *ir.GlobalVar:
		return st.global(exprT.Name)
	case *ir.Op:
		return nil, errors.Errorf("operator %s can only be called", exprT.Name)
	case *ir.Call:
		return st.evalCall(scp, exprT)
	case *ir.Tuple:
		fields, err := st.evalAll(scp, exprT.Fields)
		if err != nil {
			return nil, err
		}
		return values.NewTuple(fields)
	case *ir.TupleGetItem:
		val, err := st.eval(scp, exprT.Tuple)
		if err != nil {
			return nil, err
		}
		tpl, ok := val.(*values.Tuple)
		if !ok {
			return nil, errors.Errorf("cannot get item %d of %s value: not a tuple", exprT.Index, values.Kind(val))
		}
		return tpl.At(exprT.Index)
	case *ir.Let:
		return st.evalLet(scp, exprT)
	case *ir.Function:
		return st.closure(scp, exprT, nil)
	case nil:
		return nil, errors.Errorf("cannot evaluate a nil expression")
	}
	return nil, errors.Errorf("cannot evaluate expression %T: not supported", expr)
}

func (st *state) evalAll(scp *env, exprs []ir.Expr) ([]values.Value, error) {
	vals := make([]values.Value, len(exprs))
	for i, expr := range exprs {
		var err error
		if vals[i], err = st.eval(scp, expr); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

func (st *state) evalLet(scp *env, let *ir.Let) (values.Value, error) {
	var val values.Value
	var err error
	if fn, isFunc := let.Value.(*ir.Function); isFunc {
		// A function bound by a let can call itself.
		val, err = st.closure(scp, fn, let.Var)
	} else {
		val, err = st.eval(scp, let.Value)
	}
	if err != nil {
		return nil, err
	}
	child := scp.NewChild()
	child.Define(let.Var, val)
	return st.eval(child, let.Body)
}

// closure captures the free variables of a function.
func (st *state) closure(scp *env, fn *ir.Function, bind *ir.Var) (*values.Closure, error) {
	captured := ordered.NewMap[*ir.Var, values.Value]()
	for _, v := range ir.FreeVars(fn) {
		if v == bind {
			continue
		}
		val, ok := scp.Find(v)
		if !ok {
			return nil, errors.Errorf("variable %s captured by a function is not bound", v.String())
		}
		captured.Store(v, val)
	}
	return values.NewClosure(captured, fn, bind)
}

func (st *state) evalCall(scp *env, call *ir.Call) (values.Value, error) {
	if opRef, isOp := call.Fn.(*ir.Op); isOp {
		args, err := st.evalAll(scp, call.Args)
		if err != nil {
			return nil, err
		}
		return op.Call(opRef.Name, args)
	}
	fn, err := st.eval(scp, call.Fn)
	if err != nil {
		return nil, err
	}
	closure, ok := fn.(*values.Closure)
	if !ok {
		return nil, errors.Errorf("cannot call %s value: not a function", values.Kind(fn))
	}
	args, err := st.evalAll(scp, call.Args)
	if err != nil {
		return nil, err
	}
	return st.apply(closure, args)
}

func (st *state) apply(closure *values.Closure, args []values.Value) (values.Value, error) {
	fn := closure.Func()
	if len(args) != len(fn.Params) {
		return nil, errors.Errorf("function %s expects %d arguments but got %d", fn.Type().String(), len(fn.Params), len(args))
	}
	if st.depth >= MaxDepth {
		return nil, errors.Errorf("maximum call depth of %d exceeded", MaxDepth)
	}
	st.depth++
	defer func() { st.depth-- }()

	scp := scope.New[*ir.Var, values.Value](nil)
	for v, val := range closure.Env() {
		scp.Define(v, val)
	}
	if bind := closure.Bind(); bind != nil {
		scp.Define(bind, closure)
	}
	for i, param := range fn.Params {
		scp.Define(param, args[i])
	}
	return st.eval(scp, fn.Body)
}
