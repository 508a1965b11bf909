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

// Package irkind defines kinds for the tensor program intermediate representation (IR).
package irkind

import "github.com/gx-org/backend/dtype"

// Kind of a type.
type Kind uint

const (
	// DefaultInt is the kind of integer literals.
	DefaultInt = Int64
	// DefaultFloat is the kind of float literals.
	DefaultFloat = Float32
)

// Kinds of types supported by the IR.
const (
	Invalid = Kind(dtype.Invalid)

	Bool     = Kind(dtype.Bool)
	Int32    = Kind(dtype.Int32)
	Int64    = Kind(dtype.Int64)
	Uint32   = Kind(dtype.Uint32)
	Uint64   = Kind(dtype.Uint64)
	Bfloat16 = Kind(dtype.Bfloat16)
	Float32  = Kind(dtype.Float32)
	Float64  = Kind(dtype.Float64)

	// Unknown is a proxy type used while a type is being inferred by the compiler.
	Unknown = Kind(iota + dtype.MaxDataType)

	Tensor
	Tuple
	Func
	String
	// NoGrad marks a value excluded from differentiation.
	NoGrad

	// Max value for a Kind constant.
	Max
)

// String returns a string representation of a kind.
func (k Kind) String() string {
	switch k {
	case Unknown:
		return "unknown"
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Bfloat16:
		return "bfloat16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Tensor:
		return "tensor"
	case Tuple:
		return "tuple"
	case Func:
		return "func"
	case String:
		return "string"
	case NoGrad:
		return "nograd"
	}
	return "invalid"
}

// IsDataType returns true if the kind is an element type of a tensor.
func (k Kind) IsDataType() bool {
	return k > Invalid && k < Kind(dtype.MaxDataType)
}

// IsFloat returns true if the kind is a floating point type.
func (k Kind) IsFloat() bool {
	return k == Bfloat16 || k == Float32 || k == Float64
}

// IsInteger returns true if the kind is an integer type.
func (k Kind) IsInteger() bool {
	switch k {
	case Int32, Int64, Uint32, Uint64:
		return true
	}
	return false
}

// DType converts a kind into a tensor data type.
func (k Kind) DType() dtype.DataType {
	if !k.IsDataType() {
		return dtype.Invalid
	}
	return dtype.DataType(k)
}

// FromDType returns the kind of a tensor data type.
func FromDType(dt dtype.DataType) Kind {
	k := Kind(dt)
	if !k.IsDataType() {
		return Invalid
	}
	return k
}
