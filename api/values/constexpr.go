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
	"reflect"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tpc/build/ir"
)

// FromHost converts a Go value into a value.
//
// Supported Go values are, in order of precedence: values (returned as is),
// booleans, integers (converted to int64), floats (float32 and float64),
// strings, and slices or arrays of supported Go values (converted recursively
// into tuples). Named types are converted given their underlying kind.
// Unsigned integers larger than math.MaxInt64 are not supported.
func FromHost(host any) (Value, error) {
	if val, ok := host.(Value); ok {
		return val, nil
	}
	if host == nil {
		return nil, &UnsupportedTypeError{}
	}
	return fromReflect(reflect.ValueOf(host))
}

func fromReflect(rv reflect.Value) (Value, error) {
	if rv.CanInterface() {
		if val, ok := rv.Interface().(Value); ok {
			return val, nil
		}
	}
	// Booleans are checked before integers.
	switch rv.Kind() {
	case reflect.Bool:
		return NewBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntValue(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, &UnsupportedTypeError{Type: rv.Type()}
		}
		return IntValue(int64(u)), nil
	case reflect.Float32:
		return NewFloat(rv.Float(), dtype.Float32)
	case reflect.Float64:
		return NewFloat(rv.Float(), dtype.Float64)
	case reflect.String:
		return NewString(rv.String()), nil
	case reflect.Slice, reflect.Array:
		elts := make([]Value, rv.Len())
		for i := range rv.Len() {
			var err error
			elts[i], err = fromReflect(rv.Index(i))
			if err != nil {
				return nil, err
			}
		}
		return NewTuple(elts)
	case reflect.Interface:
		if rv.IsNil() {
			return nil, &UnsupportedTypeError{}
		}
		return fromReflect(rv.Elem())
	}
	return nil, &UnsupportedTypeError{Type: rv.Type()}
}

// AsConstExpr converts a Go value into a constant expression.
// See FromHost for the list of supported Go values.
func AsConstExpr(host any) (*ir.Constant, error) {
	val, err := FromHost(host)
	if err != nil {
		return nil, err
	}
	return ir.NewConstant(val), nil
}
