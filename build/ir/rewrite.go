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

package ir

import (
	"slices"

	"github.com/pkg/errors"
)

// Rewriter rewrites an expression tree in post-order.
// The children of a node are rewritten first. If a child changed,
// the node is copied with its new children (keeping its checked type).
// The callback matching the type of the node is then called and
// its result replaces the node. A nil callback keeps the node.
//
// Variables binding values (let variables and function parameters)
// are not rewritten: only variable uses are passed to the Var callback.
//
// A rewriter memoizes its results: a sub-expression shared in a DAG
// is rewritten only once. A rewriter must not be reused after its
// callbacks changed.
type Rewriter struct {
	// Skip returns true if an expression and its children must be kept unchanged.
	Skip func(Expr) bool

	Var          func(*Var) (Expr, error)
	GlobalVar    func(*GlobalVar) (Expr, error)
	Constant     func(*Constant) (Expr, error)
	Op           func(*Op) (Expr, error)
	Call         func(*Call) (Expr, error)
	Tuple        func(*Tuple) (Expr, error)
	TupleGetItem func(*TupleGetItem) (Expr, error)
	Let          func(*Let) (Expr, error)
	Function     func(*Function) (Expr, error)

	memo map[Expr]Expr
}

func apply[T Expr](f func(T) (Expr, error), expr T) (Expr, error) {
	if f == nil {
		return expr, nil
	}
	return f(expr)
}

// Rewrite an expression.
func (r *Rewriter) Rewrite(expr Expr) (Expr, error) {
	if r.memo == nil {
		r.memo = make(map[Expr]Expr)
	}
	if done, ok := r.memo[expr]; ok {
		return done, nil
	}
	if r.Skip != nil && r.Skip(expr) {
		r.memo[expr] = expr
		return expr, nil
	}
	out, err := r.rewrite(expr)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.Errorf("rewriting %T %s returned a nil expression", expr, expr.String())
	}
	r.memo[expr] = out
	return out, nil
}

func (r *Rewriter) rewriteAll(exprs []Expr) ([]Expr, bool, error) {
	var out []Expr
	for i, expr := range exprs {
		nw, err := r.Rewrite(expr)
		if err != nil {
			return nil, false, err
		}
		if nw != expr && out == nil {
			out = slices.Clone(exprs)
		}
		if out != nil {
			out[i] = nw
		}
	}
	if out == nil {
		return exprs, false, nil
	}
	return out, true, nil
}

func (r *Rewriter) rewrite(expr Expr) (Expr, error) {
	switch exprT := expr.(type) {
	case *Var:
		return apply(r.Var, exprT)
	case *GlobalVar:
		return apply(r.GlobalVar, exprT)
	case *Constant:
		return apply(r.Constant, exprT)
	case *Op:
		return apply(r.Op, exprT)
	case *Call:
		fn, err := r.Rewrite(exprT.Fn)
		if err != nil {
			return nil, err
		}
		args, argsChanged, err := r.rewriteAll(exprT.Args)
		if err != nil {
			return nil, err
		}
		if fn != exprT.Fn || argsChanged {
			c := *exprT
			c.Fn, c.Args = fn, args
			exprT = &c
		}
		return apply(r.Call, exprT)
	case *Tuple:
		fields, changed, err := r.rewriteAll(exprT.Fields)
		if err != nil {
			return nil, err
		}
		if changed {
			c := *exprT
			c.Fields = fields
			exprT = &c
		}
		return apply(r.Tuple, exprT)
	case *TupleGetItem:
		tpl, err := r.Rewrite(exprT.Tuple)
		if err != nil {
			return nil, err
		}
		if tpl != exprT.Tuple {
			c := *exprT
			c.Tuple = tpl
			exprT = &c
		}
		return apply(r.TupleGetItem, exprT)
	case *Let:
		value, err := r.Rewrite(exprT.Value)
		if err != nil {
			return nil, err
		}
		body, err := r.Rewrite(exprT.Body)
		if err != nil {
			return nil, err
		}
		if value != exprT.Value || body != exprT.Body {
			c := *exprT
			c.Value, c.Body = value, body
			exprT = &c
		}
		return apply(r.Let, exprT)
	case *Function:
		body, err := r.Rewrite(exprT.Body)
		if err != nil {
			return nil, err
		}
		if body != exprT.Body {
			c := *exprT
			c.Body = body
			exprT = &c
		}
		return apply(r.Function, exprT)
	default:
		return nil, errors.Errorf("cannot rewrite expression %T: not supported", expr)
	}
}

// RewriteFunction rewrites the body of a function.
// The function is returned unchanged if its body did not change.
func (r *Rewriter) RewriteFunction(fn *Function) (*Function, error) {
	body, err := r.Rewrite(fn.Body)
	if err != nil {
		return nil, err
	}
	if body == fn.Body {
		return fn, nil
	}
	c := *fn
	c.Body = body
	return &c, nil
}

// Substitute replaces the uses of variables in an expression.
func Substitute(expr Expr, subst map[*Var]Expr) (Expr, error) {
	if len(subst) == 0 {
		return expr, nil
	}
	r := &Rewriter{
		Var: func(v *Var) (Expr, error) {
			if to, ok := subst[v]; ok {
				return to, nil
			}
			return v, nil
		},
	}
	return r.Rewrite(expr)
}
