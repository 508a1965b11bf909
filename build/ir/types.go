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

// Package ir is the intermediate representation (IR) of tensor programs
// transformed by compiler passes.
//
// A program unit is a Module: an ordered table of global functions.
// Expressions form a tree (or a DAG when sub-expressions are shared).
// Nodes are never modified once built: transformations build new nodes.
package ir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tpc/build/ir/irkind"
)

// ----------------------------------------------------------------------------
// Types of node in the tree.
type (
	// Node in the tree.
	Node interface {
		// node marks a structure as a node structure.
		// It prevents external implementations of the interface.
		node()
	}

	// Type of a value or an expression.
	Type interface {
		Node

		// Kind of the type.
		Kind() irkind.Kind

		// Equal returns true if other is the same type.
		Equal(Type) bool

		// String representation of the type.
		String() string
	}

	// Value is a runtime value that can be embedded in an expression as a constant.
	Value interface {
		// Type of the value.
		Type() Type

		// String representation of the value.
		String() string
	}
)

// ----------------------------------------------------------------------------
// Types definition.
type (
	// TensorType is the type of a tensor given its element type and its shape.
	// A tensor type with an empty shape is a scalar type.
	TensorType struct {
		DType dtype.DataType
		Shape []int
	}

	// TupleType is the type of a tuple.
	TupleType struct {
		Types []Type
	}

	// FuncType is the type of a function.
	FuncType struct {
		Params []Type
		Result Type
	}

	atomicType struct {
		knd irkind.Kind
	}
)

var (
	_ Type = (*TensorType)(nil)
	_ Type = (*TupleType)(nil)
	_ Type = (*FuncType)(nil)
	_ Type = (*atomicType)(nil)
)

// ScalarType returns the type of a scalar given its data type.
func ScalarType(dt dtype.DataType) *TensorType {
	return &TensorType{DType: dt}
}

// NewTensorType returns a new tensor type.
// The shape is copied.
func NewTensorType(dt dtype.DataType, shape []int) *TensorType {
	return &TensorType{DType: dt, Shape: slices.Clone(shape)}
}

func (*TensorType) node() {}

// Kind of the type.
func (*TensorType) Kind() irkind.Kind { return irkind.Tensor }

// ElementKind returns the kind of the elements of the tensor.
func (t *TensorType) ElementKind() irkind.Kind {
	return irkind.FromDType(t.DType)
}

// IsScalar returns true if the tensor has no axis.
func (t *TensorType) IsScalar() bool {
	return len(t.Shape) == 0
}

// Size returns the number of elements of a tensor of that type.
func (t *TensorType) Size() int {
	size := 1
	for _, dim := range t.Shape {
		size *= dim
	}
	return size
}

// Equal returns true if other is the same type.
func (t *TensorType) Equal(other Type) bool {
	o, ok := other.(*TensorType)
	if !ok {
		return false
	}
	return t.DType == o.DType && slices.Equal(t.Shape, o.Shape)
}

// String representation of the type.
// For example: [5][10]float32.
func (t *TensorType) String() string {
	var b strings.Builder
	for _, dim := range t.Shape {
		fmt.Fprintf(&b, "[%d]", dim)
	}
	b.WriteString(t.ElementKind().String())
	return b.String()
}

func (*TupleType) node() {}

// Kind of the type.
func (*TupleType) Kind() irkind.Kind { return irkind.Tuple }

// Equal returns true if other is the same type.
func (t *TupleType) Equal(other Type) bool {
	o, ok := other.(*TupleType)
	if !ok {
		return false
	}
	return slices.EqualFunc(t.Types, o.Types, func(a, b Type) bool { return a.Equal(b) })
}

// String representation of the type.
func (t *TupleType) String() string {
	return tupleString(t.Types)
}

func (*FuncType) node() {}

// Kind of the type.
func (*FuncType) Kind() irkind.Kind { return irkind.Func }

// Equal returns true if other is the same type.
func (t *FuncType) Equal(other Type) bool {
	o, ok := other.(*FuncType)
	if !ok {
		return false
	}
	if !slices.EqualFunc(t.Params, o.Params, func(a, b Type) bool { return a.Equal(b) }) {
		return false
	}
	if t.Result == nil || o.Result == nil {
		return t.Result == o.Result
	}
	return t.Result.Equal(o.Result)
}

// String representation of the type.
func (t *FuncType) String() string {
	s := "func" + listString(t.Params)
	if t.Result != nil {
		s += " " + t.Result.String()
	}
	return s
}

var (
	stringType  = &atomicType{knd: irkind.String}
	noGradType  = &atomicType{knd: irkind.NoGrad}
	unknownType = &atomicType{knd: irkind.Unknown}
)

// StringType returns the type of strings.
func StringType() Type { return stringType }

// NoGradType returns the type of the no-gradient sentinel.
func NoGradType() Type { return noGradType }

// UnknownType returns a type used when a type cannot be inferred.
func UnknownType() Type { return unknownType }

func (*atomicType) node() {}

func (t *atomicType) Kind() irkind.Kind { return t.knd }

func (t *atomicType) Equal(other Type) bool {
	o, ok := other.(*atomicType)
	return ok && t.knd == o.knd
}

func (t *atomicType) String() string { return t.knd.String() }

// IsScalarOf returns true if a type is a scalar with a kind satisfying a predicate.
func IsScalarOf(typ Type, pred func(irkind.Kind) bool) bool {
	tt, ok := typ.(*TensorType)
	return ok && tt.IsScalar() && pred(tt.ElementKind())
}

func listString[T fmt.Stringer](elts []T) string {
	ss := make([]string, len(elts))
	for i, elt := range elts {
		ss[i] = elt.String()
	}
	return "(" + strings.Join(ss, ", ") + ")"
}

func tupleString[T fmt.Stringer](elts []T) string {
	if len(elts) == 1 {
		return "(" + elts[0].String() + ",)"
	}
	return listString(elts)
}
