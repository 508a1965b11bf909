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

package op

import (
	"fmt"

	"github.com/gx-org/tpc/runtime/device"
)

// Names of the base operators.
const (
	Add          = "add"
	Subtract     = "subtract"
	Multiply     = "multiply"
	Divide       = "divide"
	Mod          = "mod"
	Less         = "less"
	Greater      = "greater"
	LessEqual    = "less_equal"
	GreaterEqual = "greater_equal"
	Equal        = "equal"
	NotEqual     = "not_equal"
	Negative     = "negative"
)

func baseOps() []*Op {
	arith := func(name string, k arithmetic) *Op {
		return &Op{Name: name, Arity: 2, Compute: k.compute, Rel: arithmeticRel}
	}
	cmp := func(name string, k comparison) *Op {
		return &Op{Name: name, Arity: 2, Compute: k.compute, Rel: comparisonRel}
	}
	return []*Op{
		arith(Add, add),
		arith(Subtract, subtract),
		arith(Multiply, multiply),
		arith(Divide, divide),
		arith(Mod, mod),
		cmp(Less, less),
		cmp(Greater, greater),
		cmp(LessEqual, lessEqual),
		cmp(GreaterEqual, greaterEqual),
		cmp(Equal, equal),
		cmp(NotEqual, notEqual),
		{Name: Negative, Arity: 1, Compute: negative, Rel: negativeRel},
	}
}

// DialectName returns the name of the dialect operator of a base operator
// for a device type, for example cpu.add.
func DialectName(base string, dev device.Type) string {
	return fmt.Sprintf("%s.%s", dev, base)
}

func init() {
	for _, op := range baseOps() {
		if err := Register(op); err != nil {
			panic(err)
		}
		for _, dev := range device.Types() {
			if err := RegisterDialect(op.Name, dev, DialectName(op.Name, dev)); err != nil {
				panic(err)
			}
		}
	}
}
