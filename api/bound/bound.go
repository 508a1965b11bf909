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

// Package bound binds expressions to the values they evaluate to.
package bound

import (
	"github.com/gx-org/tpc/api/executor"
	"github.com/gx-org/tpc/api/values"
	"github.com/gx-org/tpc/build/ir"
	"github.com/pkg/errors"
)

// Expr binds an expression to its value and, optionally, to the executor
// able to evaluate the expression.
//
// The executor is referenced by ID: an Expr never owns its executor.
type Expr struct {
	expr  ir.Expr
	value values.Value
	exec  executor.ID
}

// New returns a new bound expression.
// The value can be nil if it has not been materialized yet,
// and the executor can be 0 if the expression is not attached to an executor.
// The value is not checked against the type of the expression.
func New(expr ir.Expr, value values.Value, exec executor.ID) (*Expr, error) {
	if expr == nil {
		return nil, errors.Errorf("cannot bind a nil expression")
	}
	return &Expr{expr: expr, value: value, exec: exec}, nil
}

// Expr returns the bound expression.
func (b *Expr) Expr() ir.Expr { return b.expr }

// Value returns the materialized value of the expression. May be nil.
func (b *Expr) Value() values.Value { return b.value }

// Executor returns the ID of the executor attached to the expression.
// Returns 0 if no executor is attached.
func (b *Expr) Executor() executor.ID { return b.exec }

// IsConstant returns true if the value is materialized and no executor
// can re-evaluate the expression.
func (b *Expr) IsConstant() bool {
	return b.value != nil && b.exec == 0
}

// NeedsEval returns true if the value must be computed before use.
func (b *Expr) NeedsEval() bool {
	return b.value == nil
}

// Resolve returns the value of the expression.
// If the value is not materialized, the expression is evaluated
// by the attached executor looked up in a registry.
// The bound expression is not modified.
func (b *Expr) Resolve(reg *executor.Registry) (values.Value, error) {
	if b.value != nil {
		return b.value, nil
	}
	if b.exec == 0 {
		return nil, errors.Errorf("cannot evaluate %s: no value and no executor", b.expr.String())
	}
	if reg == nil {
		return nil, errors.Errorf("cannot evaluate %s: no registry to look up executor %d", b.expr.String(), b.exec)
	}
	exec, ok := reg.Lookup(b.exec)
	if !ok {
		return nil, errors.Errorf("cannot evaluate %s: executor %d has been released", b.expr.String(), b.exec)
	}
	val, err := exec.Eval(b.expr)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot evaluate %s", b.expr.String())
	}
	return val, nil
}

// AsConstExpr returns the materialized value as a constant expression.
func (b *Expr) AsConstExpr() (*ir.Constant, error) {
	if b.value == nil {
		return nil, errors.Errorf("expression %s has no value", b.expr.String())
	}
	return values.AsConstExpr(b.value)
}

// String representation of the bound expression.
func (b *Expr) String() string {
	if b.value == nil {
		return b.expr.String()
	}
	return b.expr.String() + " = " + b.value.String()
}
