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
	"github.com/gx-org/tpc/api/values"
	"github.com/gx-org/tpc/build/ir/irkind"
	"github.com/gx-org/tpc/runtime/device"
	"github.com/pkg/errors"
)

// array is a host copy of the data of an operand.
// Integers and booleans are stored in ints, floats in flts.
type array struct {
	dt     dtype.DataType
	dims   []int
	ints   []int64
	flts   []float64
	scalar bool

	// dev is the device of a tensor operand.
	dev *device.Device
}

func (a *array) isFloat() bool {
	return irkind.FromDType(a.dt).IsFloat()
}

func (a *array) float(i int) float64 {
	if a.flts != nil {
		return a.flts[i]
	}
	return float64(a.ints[i])
}

func (a *array) int(i int) int64 {
	if a.ints != nil {
		return a.ints[i]
	}
	return int64(a.flts[i])
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func convert[T, U int64 | float64 | int32 | float32](src []T) []U {
	dst := make([]U, len(src))
	for i, v := range src {
		dst[i] = U(v)
	}
	return dst
}

func toArray(v values.Value) (*array, error) {
	switch vT := v.(type) {
	case *values.Int:
		return &array{dt: vT.DType(), ints: []int64{vT.Value()}, scalar: true}, nil
	case *values.Float:
		return &array{dt: vT.DType(), flts: []float64{vT.Value()}, scalar: true}, nil
	case *values.Bool:
		return &array{dt: dtype.Bool, ints: []int64{boolToInt(vT.Value())}, scalar: true}, nil
	case *values.Tensor:
		return tensorToArray(vT)
	}
	return nil, errors.Errorf("%s values not supported", values.Kind(v))
}

func tensorToArray(t *values.Tensor) (*array, error) {
	dt, err := t.DType()
	if err != nil {
		return nil, err
	}
	dims, err := t.Shape()
	if err != nil {
		return nil, err
	}
	dev, err := t.Device()
	if err != nil {
		return nil, err
	}
	a := &array{dt: dt, dims: dims, dev: &dev}
	switch dt {
	case dtype.Bool:
		vals, err := values.ToHostSlice[bool](t)
		if err != nil {
			return nil, err
		}
		a.ints = make([]int64, len(vals))
		for i, v := range vals {
			a.ints[i] = boolToInt(v)
		}
	case dtype.Int32:
		vals, err := values.ToHostSlice[int32](t)
		if err != nil {
			return nil, err
		}
		a.ints = convert[int32, int64](vals)
	case dtype.Int64:
		a.ints, err = values.ToHostSlice[int64](t)
	case dtype.Float32:
		vals, err := values.ToHostSlice[float32](t)
		if err != nil {
			return nil, err
		}
		a.flts = convert[float32, float64](vals)
	case dtype.Float64:
		a.flts, err = values.ToHostSlice[float64](t)
	default:
		return nil, errors.Errorf("tensors of %s not supported", dt.String())
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *array) toValue(dev device.Device) (values.Value, error) {
	if a.scalar {
		switch {
		case a.dt == dtype.Bool:
			return values.NewBool(a.ints[0] != 0), nil
		case a.isFloat():
			return values.NewFloat(a.flts[0], a.dt)
		default:
			return values.NewInt(a.ints[0], a.dt)
		}
	}
	switch a.dt {
	case dtype.Bool:
		vals := make([]bool, len(a.ints))
		for i, v := range a.ints {
			vals[i] = v != 0
		}
		return values.TensorFromSlice(dev, vals, a.dims)
	case dtype.Int32:
		return values.TensorFromSlice(dev, convert[int64, int32](a.ints), a.dims)
	case dtype.Int64:
		return values.TensorFromSlice(dev, a.ints, a.dims)
	case dtype.Float32:
		return values.TensorFromSlice(dev, convert[float64, float32](a.flts), a.dims)
	case dtype.Float64:
		return values.TensorFromSlice(dev, a.flts, a.dims)
	}
	return nil, errors.Errorf("tensors of %s not supported", a.dt.String())
}

// Broadcast returns the shape of the result of an element-wise operation.
// Axes are aligned on the right. An axis of length 1 is broadcast
// to the length of the other axis.
func Broadcast(x, y []int) ([]int, error) {
	ndim := max(len(x), len(y))
	out := make([]int, ndim)
	for i := range ndim {
		dx, dy := 1, 1
		if i < len(x) {
			dx = x[len(x)-1-i]
		}
		if i < len(y) {
			dy = y[len(y)-1-i]
		}
		switch {
		case dx == 1:
			out[ndim-1-i] = dy
		case dy == 1:
			out[ndim-1-i] = dx
		case dx == dy:
			out[ndim-1-i] = dx
		default:
			return nil, errors.Errorf("cannot broadcast shape %v with shape %v", x, y)
		}
	}
	return out, nil
}

func size(dims []int) int {
	n := 1
	for _, dim := range dims {
		n *= dim
	}
	return n
}

// sourceIndices returns, for every element of an output, the flat index of
// the element of a broadcast input.
func sourceIndices(out, in []int) []int {
	n := size(out)
	idx := make([]int, n)
	offset := len(out) - len(in)
	strides := make([]int, len(in))
	stride := 1
	for d := len(in) - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= in[d]
	}
	coords := make([]int, len(out))
	for flat := range n {
		rem := flat
		for d := len(out) - 1; d >= 0; d-- {
			coords[d] = rem % out[d]
			rem /= out[d]
		}
		src := 0
		for d := range in {
			if in[d] != 1 {
				src += coords[d+offset] * strides[d]
			}
		}
		idx[flat] = src
	}
	return idx
}

// resultDevice returns the device of the first tensor operand.
func resultDevice(operands ...*array) device.Device {
	for _, operand := range operands {
		if operand.dev != nil {
			return *operand.dev
		}
	}
	return device.Device{Type: device.CPU}
}
