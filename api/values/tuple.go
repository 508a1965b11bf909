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
	"slices"
	"strings"
	"sync"

	"github.com/gx-org/tpc/build/ir"
	"github.com/pkg/errors"
)

// Tuple is an ordered sequence of values.
type Tuple struct {
	fields []Value

	once sync.Once
	elts []Value
	typ  *ir.TupleType
}

// NewTuple returns a tuple given its elements.
// The slice is copied.
func NewTuple(vals []Value) (*Tuple, error) {
	for i, val := range vals {
		if val == nil {
			return nil, errors.Errorf("tuple element %d is nil", i)
		}
	}
	return &Tuple{fields: slices.Clone(vals)}, nil
}

func (*Tuple) value() {}

// detuple decomposes the tuple once.
// Subsequent calls return the same elements.
func (t *Tuple) detuple() []Value {
	t.once.Do(func() {
		t.elts = slices.Clip(t.fields)
		types := make([]ir.Type, len(t.elts))
		for i, elt := range t.elts {
			types[i] = elt.Type()
		}
		t.typ = &ir.TupleType{Types: types}
	})
	return t.elts
}

// Len returns the number of elements in the tuple.
func (t *Tuple) Len() int {
	return len(t.detuple())
}

// At returns the i-th element of the tuple.
func (t *Tuple) At(i int) (Value, error) {
	elts := t.detuple()
	if i < 0 || i >= len(elts) {
		return nil, errors.Errorf("index %d out of range for a tuple of length %d", i, len(elts))
	}
	return elts[i], nil
}

// Values returns a copy of the elements of the tuple.
func (t *Tuple) Values() []Value {
	return slices.Clone(t.detuple())
}

// Type of the value.
func (t *Tuple) Type() ir.Type {
	t.detuple()
	return t.typ
}

// String representation of the value.
func (t *Tuple) String() string {
	elts := t.detuple()
	ss := make([]string, len(elts))
	for i, elt := range elts {
		ss[i] = elt.String()
	}
	if len(ss) == 1 {
		return "(" + ss[0] + ",)"
	}
	return "(" + strings.Join(ss, ", ") + ")"
}
