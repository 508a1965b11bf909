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

package irkind_test

import (
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tpc/build/ir/irkind"
)

func TestDTypeRoundTrip(t *testing.T) {
	for _, dt := range []dtype.DataType{
		dtype.Bool,
		dtype.Int32,
		dtype.Int64,
		dtype.Uint32,
		dtype.Uint64,
		dtype.Bfloat16,
		dtype.Float32,
		dtype.Float64,
	} {
		k := irkind.FromDType(dt)
		if got := k.DType(); got != dt {
			t.Errorf("%s: got %s but want %s", k, got, dt)
		}
	}
}

func TestNonDataKinds(t *testing.T) {
	for _, k := range []irkind.Kind{
		irkind.Unknown,
		irkind.Tensor,
		irkind.Tuple,
		irkind.Func,
		irkind.String,
		irkind.NoGrad,
	} {
		if k.IsDataType() {
			t.Errorf("%s: IsDataType() = true but want false", k)
		}
		if got := k.DType(); got != dtype.Invalid {
			t.Errorf("%s: DType() = %s but want %s", k, got, dtype.Invalid)
		}
	}
}

func TestNumericClasses(t *testing.T) {
	if !irkind.DefaultFloat.IsFloat() || irkind.DefaultFloat.IsInteger() {
		t.Errorf("%s must be a float", irkind.DefaultFloat)
	}
	if !irkind.DefaultInt.IsInteger() || irkind.DefaultInt.IsFloat() {
		t.Errorf("%s must be an integer", irkind.DefaultInt)
	}
	if irkind.Bool.IsInteger() || irkind.Bool.IsFloat() {
		t.Errorf("bool is neither an integer nor a float")
	}
}
