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
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tpc/build/ir"
	"github.com/gx-org/tpc/build/ir/irkind"
	"github.com/pkg/errors"
)

func tensorArg(typ ir.Type) (*ir.TensorType, error) {
	tt, ok := typ.(*ir.TensorType)
	if !ok {
		return nil, errors.Errorf("expect a tensor but got %s", typ.String())
	}
	k := tt.ElementKind()
	if k != irkind.Bool && !k.IsInteger() && !k.IsFloat() {
		return nil, errors.Errorf("tensor of %s not supported", k.String())
	}
	return tt, nil
}

func binaryRel(result func(x, y *ir.TensorType) dtype.DataType) TypeRel {
	return func(args []ir.Type) (ir.Type, error) {
		x, err := tensorArg(args[0])
		if err != nil {
			return nil, err
		}
		y, err := tensorArg(args[1])
		if err != nil {
			return nil, err
		}
		dims, err := Broadcast(x.Shape, y.Shape)
		if err != nil {
			return nil, err
		}
		return ir.NewTensorType(result(x, y), dims), nil
	}
}

var (
	arithmeticRel = binaryRel(func(x, y *ir.TensorType) dtype.DataType {
		return Promote(x.DType, y.DType)
	})
	comparisonRel = binaryRel(func(x, y *ir.TensorType) dtype.DataType {
		return dtype.Bool
	})
)

func negativeRel(args []ir.Type) (ir.Type, error) {
	x, err := tensorArg(args[0])
	if err != nil {
		return nil, err
	}
	if x.DType == dtype.Bool {
		return nil, errors.Errorf("cannot negate a boolean")
	}
	return x, nil
}
