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

import "slices"

// Visit calls a function for every expression of a tree in pre-order.
// The children of an expression are skipped if the function returns false.
func Visit(expr Expr, f func(Expr) bool) {
	if expr == nil || !f(expr) {
		return
	}
	switch exprT := expr.(type) {
	case *Call:
		Visit(exprT.Fn, f)
		for _, arg := range exprT.Args {
			Visit(arg, f)
		}
	case *Tuple:
		for _, field := range exprT.Fields {
			Visit(field, f)
		}
	case *TupleGetItem:
		Visit(exprT.Tuple, f)
	case *Let:
		Visit(exprT.Value, f)
		Visit(exprT.Body, f)
	case *Function:
		Visit(exprT.Body, f)
	}
}

// FreeVars returns the variables used in an expression but not bound
// in that expression. Variables are returned in order of first use.
func FreeVars(expr Expr) []*Var {
	fv := freeVars{bound: make(map[*Var]int), seen: make(map[*Var]bool)}
	fv.collect(expr)
	return fv.free
}

type freeVars struct {
	bound map[*Var]int
	seen  map[*Var]bool
	free  []*Var
}

func (fv *freeVars) collect(expr Expr) {
	switch exprT := expr.(type) {
	case *Var:
		if fv.bound[exprT] > 0 || fv.seen[exprT] {
			return
		}
		fv.seen[exprT] = true
		fv.free = append(fv.free, exprT)
	case *Call:
		fv.collect(exprT.Fn)
		for _, arg := range exprT.Args {
			fv.collect(arg)
		}
	case *Tuple:
		for _, field := range exprT.Fields {
			fv.collect(field)
		}
	case *TupleGetItem:
		fv.collect(exprT.Tuple)
	case *Let:
		fv.collect(exprT.Value)
		fv.bound[exprT.Var]++
		fv.collect(exprT.Body)
		fv.bound[exprT.Var]--
	case *Function:
		for _, param := range exprT.Params {
			fv.bound[param]++
		}
		fv.collect(exprT.Body)
		for _, param := range exprT.Params {
			fv.bound[param]--
		}
	}
}

// Uses returns true if a variable is used, free, in an expression.
func Uses(expr Expr, v *Var) bool {
	return slices.Contains(FreeVars(expr), v)
}
