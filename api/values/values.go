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

// Package values implements all the runtime values a tensor program can
// produce or consume.
package values

import (
	"fmt"

	"github.com/gx-org/tpc/build/ir"
)

// Value is a runtime value.
// The set of values is closed: all implementations are in this package.
type Value interface {
	ir.Value

	value() // Make sure all values are implemented in this package.
}

var (
	_ Value = (*Tensor)(nil)
	_ Value = (*TensorType)(nil)
	_ Value = (*Int)(nil)
	_ Value = (*Float)(nil)
	_ Value = (*Bool)(nil)
	_ Value = (*String)(nil)
	_ Value = (*Tuple)(nil)
	_ Value = (*Closure)(nil)
	_ Value = (*NoGrad)(nil)
)

// Kind returns the name of the variant of a value.
func Kind(v Value) string {
	switch v.(type) {
	case *Tensor:
		return "tensor"
	case *TensorType:
		return "tensor type"
	case *Int:
		return "int"
	case *Float:
		return "float"
	case *Bool:
		return "bool"
	case *String:
		return "string"
	case *Tuple:
		return "tuple"
	case *Closure:
		return "closure"
	case *NoGrad:
		return "nograd"
	case nil:
		return "nil"
	}
	panic(fmt.Sprintf("value type %T not supported", v))
}
