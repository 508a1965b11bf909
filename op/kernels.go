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
	"math"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tpc/api/values"
	"github.com/gx-org/tpc/build/ir/irkind"
	"github.com/pkg/errors"
)

var errDivByZero = errors.New("division by zero")

type (
	// arithmetic is an element-wise binary operator returning numbers.
	arithmetic struct {
		ints func(x, y int64) (int64, error)
		flts func(x, y float64) (float64, error)
	}

	// comparison is an element-wise binary operator returning booleans.
	comparison struct {
		ints func(x, y int64) bool
		flts func(x, y float64) bool
	}
)

// Promote returns the data type of the result of an arithmetic operation.
// Integers combined with integers of the same type keep their type,
// mixed integers (and booleans) are promoted to the default integer type.
// A float operand promotes the result to a float:
// float64 if any operand is a float64, the float operand type otherwise.
func Promote(x, y dtype.DataType) dtype.DataType {
	kx, ky := irkind.FromDType(x), irkind.FromDType(y)
	switch {
	case kx.IsFloat() || ky.IsFloat():
		if x == dtype.Float64 || y == dtype.Float64 {
			return dtype.Float64
		}
		if x == y {
			return x
		}
		if kx.IsFloat() && ky.IsFloat() {
			return dtype.Float32
		}
		if kx.IsFloat() {
			return x
		}
		return y
	case x == y && kx.IsInteger():
		return x
	}
	return irkind.DefaultInt.DType()
}

func (k arithmetic) compute(args []values.Value) (values.Value, error) {
	x, y, dims, err := binaryOperands(args)
	if err != nil {
		return nil, err
	}
	out := &array{dt: Promote(x.dt, y.dt), dims: dims, scalar: x.scalar && y.scalar}
	xi, yi := sourceIndices(dims, x.dims), sourceIndices(dims, y.dims)
	if out.isFloat() {
		out.flts = make([]float64, len(xi))
		for i := range xi {
			if out.flts[i], err = k.flts(x.float(xi[i]), y.float(yi[i])); err != nil {
				return nil, err
			}
		}
	} else {
		out.ints = make([]int64, len(xi))
		for i := range xi {
			if out.ints[i], err = k.ints(x.int(xi[i]), y.int(yi[i])); err != nil {
				return nil, err
			}
		}
	}
	return out.toValue(resultDevice(x, y))
}

func (k comparison) compute(args []values.Value) (values.Value, error) {
	x, y, dims, err := binaryOperands(args)
	if err != nil {
		return nil, err
	}
	out := &array{dt: dtype.Bool, dims: dims, scalar: x.scalar && y.scalar}
	xi, yi := sourceIndices(dims, x.dims), sourceIndices(dims, y.dims)
	out.ints = make([]int64, len(xi))
	useFloat := x.isFloat() || y.isFloat()
	for i := range xi {
		var r bool
		if useFloat {
			r = k.flts(x.float(xi[i]), y.float(yi[i]))
		} else {
			r = k.ints(x.int(xi[i]), y.int(yi[i]))
		}
		out.ints[i] = boolToInt(r)
	}
	return out.toValue(resultDevice(x, y))
}

func binaryOperands(args []values.Value) (x, y *array, dims []int, err error) {
	if x, err = toArray(args[0]); err != nil {
		return
	}
	if y, err = toArray(args[1]); err != nil {
		return
	}
	dims, err = Broadcast(x.dims, y.dims)
	return
}

func negative(args []values.Value) (values.Value, error) {
	x, err := toArray(args[0])
	if err != nil {
		return nil, err
	}
	if x.dt == dtype.Bool {
		return nil, errors.Errorf("cannot negate a boolean")
	}
	out := &array{dt: x.dt, dims: x.dims, scalar: x.scalar}
	if x.isFloat() {
		out.flts = make([]float64, len(x.flts))
		for i, v := range x.flts {
			out.flts[i] = -v
		}
	} else {
		out.ints = make([]int64, len(x.ints))
		for i, v := range x.ints {
			out.ints[i] = -v
		}
	}
	return out.toValue(resultDevice(x))
}

var (
	add = arithmetic{
		ints: func(x, y int64) (int64, error) { return x + y, nil },
		flts: func(x, y float64) (float64, error) { return x + y, nil },
	}
	subtract = arithmetic{
		ints: func(x, y int64) (int64, error) { return x - y, nil },
		flts: func(x, y float64) (float64, error) { return x - y, nil },
	}
	multiply = arithmetic{
		ints: func(x, y int64) (int64, error) { return x * y, nil },
		flts: func(x, y float64) (float64, error) { return x * y, nil },
	}
	divide = arithmetic{
		ints: func(x, y int64) (int64, error) {
			if y == 0 {
				return 0, errors.WithStack(errDivByZero)
			}
			return x / y, nil
		},
		flts: func(x, y float64) (float64, error) {
			if y == 0 {
				return 0, errors.WithStack(errDivByZero)
			}
			return x / y, nil
		},
	}
	mod = arithmetic{
		ints: func(x, y int64) (int64, error) {
			if y == 0 {
				return 0, errors.WithStack(errDivByZero)
			}
			return x % y, nil
		},
		flts: func(x, y float64) (float64, error) {
			if y == 0 {
				return 0, errors.WithStack(errDivByZero)
			}
			return math.Mod(x, y), nil
		},
	}

	less = comparison{
		ints: func(x, y int64) bool { return x < y },
		flts: func(x, y float64) bool { return x < y },
	}
	greater = comparison{
		ints: func(x, y int64) bool { return x > y },
		flts: func(x, y float64) bool { return x > y },
	}
	lessEqual = comparison{
		ints: func(x, y int64) bool { return x <= y },
		flts: func(x, y float64) bool { return x <= y },
	}
	greaterEqual = comparison{
		ints: func(x, y int64) bool { return x >= y },
		flts: func(x, y float64) bool { return x >= y },
	}
	equal = comparison{
		ints: func(x, y int64) bool { return x == y },
		flts: func(x, y float64) bool { return x == y },
	}
	notEqual = comparison{
		ints: func(x, y int64) bool { return x != y },
		flts: func(x, y float64) bool { return x != y },
	}
)
