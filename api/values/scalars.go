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
	"math"
	"strconv"
	"strings"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tpc/build/ir"
	"github.com/gx-org/tpc/build/ir/irkind"
	"github.com/pkg/errors"
)

type (
	// Int is an integer scalar.
	Int struct {
		val int64
		dt  dtype.DataType
	}

	// Float is a floating point scalar.
	Float struct {
		val float64
		dt  dtype.DataType
	}

	// Bool is a boolean scalar.
	Bool struct {
		val bool
	}

	// String is a string.
	String struct {
		str string
	}

	// NoGrad is a sentinel marking a value without gradient contribution.
	NoGrad struct{}
)

// NewInt returns an integer given its data type.
func NewInt(val int64, dt dtype.DataType) (*Int, error) {
	if !irkind.FromDType(dt).IsInteger() {
		return nil, errors.Errorf("%s is an invalid data type for an integer value", dt.String())
	}
	return &Int{val: val, dt: dt}, nil
}

// IntValue returns an integer with the default integer data type.
func IntValue(val int64) *Int {
	return &Int{val: val, dt: irkind.DefaultInt.DType()}
}

func (*Int) value() {}

// Value returns the Go value of the integer.
func (v *Int) Value() int64 { return v.val }

// DType returns the data type of the integer.
func (v *Int) DType() dtype.DataType { return v.dt }

// Type of the value.
func (v *Int) Type() ir.Type { return ir.ScalarType(v.dt) }

// String representation of the value.
func (v *Int) String() string {
	return strconv.FormatInt(v.val, 10)
}

// NewFloat returns a floating point value given its data type.
func NewFloat(val float64, dt dtype.DataType) (*Float, error) {
	if !irkind.FromDType(dt).IsFloat() {
		return nil, errors.Errorf("%s is an invalid data type for a float value", dt.String())
	}
	return &Float{val: val, dt: dt}, nil
}

// FloatValue returns a floating point value with the default float data type.
func FloatValue(val float64) *Float {
	return &Float{val: val, dt: irkind.DefaultFloat.DType()}
}

func (*Float) value() {}

// Value returns the Go value of the float.
func (v *Float) Value() float64 { return v.val }

// DType returns the data type of the float.
func (v *Float) DType() dtype.DataType { return v.dt }

// Type of the value.
func (v *Float) Type() ir.Type { return ir.ScalarType(v.dt) }

// String representation of the value.
// The representation always includes a decimal point
// to distinguish floats from integers.
func (v *Float) String() string {
	bitSize := 64
	if v.dt != dtype.Float64 {
		bitSize = 32
	}
	s := strconv.FormatFloat(v.val, 'g', -1, bitSize)
	if math.IsInf(v.val, 0) || math.IsNaN(v.val) {
		return s
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// NewBool returns a boolean value.
func NewBool(val bool) *Bool {
	return &Bool{val: val}
}

func (*Bool) value() {}

// Value returns the Go value of the boolean.
func (v *Bool) Value() bool { return v.val }

// Type of the value.
func (v *Bool) Type() ir.Type { return ir.ScalarType(dtype.Bool) }

// String representation of the value.
func (v *Bool) String() string {
	return strconv.FormatBool(v.val)
}

// NewString returns a string value.
func NewString(str string) *String {
	return &String{str: str}
}

func (*String) value() {}

// Value returns the Go value of the string.
func (v *String) Value() string { return v.str }

// Type of the value.
func (v *String) Type() ir.Type { return ir.StringType() }

// String representation of the value.
func (v *String) String() string {
	return strconv.Quote(v.str)
}

var noGrad = &NoGrad{}

// NoGradValue returns the no-gradient sentinel.
func NoGradValue() *NoGrad {
	return noGrad
}

func (*NoGrad) value() {}

// Type of the value.
func (*NoGrad) Type() ir.Type { return ir.NoGradType() }

// String representation of the value.
func (*NoGrad) String() string { return "nograd" }
