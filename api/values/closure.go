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

package values

import (
	"iter"

	"github.com/gx-org/tpc/base/ordered"
	"github.com/gx-org/tpc/build/ir"
	"github.com/pkg/errors"
)

// Closure is a function with the values of its captured variables.
type Closure struct {
	env  *ordered.Map[*ir.Var, Value]
	fn   *ir.Function
	bind *ir.Var
}

// NewClosure returns a closure given its environment, its function,
// and an optional variable to which the closure is bound (for recursion).
// The environment is copied.
func NewClosure(env *ordered.Map[*ir.Var, Value], fn *ir.Function, bind *ir.Var) (*Closure, error) {
	if fn == nil {
		return nil, errors.Errorf("cannot create a closure without a function")
	}
	env = env.Clone()
	for v, val := range env.Iter() {
		if v == nil {
			return nil, errors.Errorf("closure environment captures a nil variable")
		}
		if val == nil {
			return nil, errors.Errorf("captured variable %s has no value", v.String())
		}
	}
	return &Closure{env: env, fn: fn, bind: bind}, nil
}

func (*Closure) value() {}

// Func returns the function of the closure.
func (c *Closure) Func() *ir.Function { return c.fn }

// Bind returns the variable bound to the closure. May be nil.
func (c *Closure) Bind() *ir.Var { return c.bind }

// Lookup returns the value captured for a variable.
func (c *Closure) Lookup(v *ir.Var) (Value, bool) {
	return c.env.Load(v)
}

// Env returns an iterator over the captured variables and their values.
func (c *Closure) Env() iter.Seq2[*ir.Var, Value] {
	return c.env.Iter()
}

// Type of the value.
func (c *Closure) Type() ir.Type {
	if typ := c.fn.CheckedType(); typ != nil {
		return typ
	}
	return c.fn.Type()
}

// String representation of the value.
func (c *Closure) String() string {
	return "closure " + c.Type().String()
}
