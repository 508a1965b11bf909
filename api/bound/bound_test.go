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

package bound_test

import (
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tpc/api/bound"
	"github.com/gx-org/tpc/api/executor"
	"github.com/gx-org/tpc/api/values"
	"github.com/gx-org/tpc/build/ir"
	"github.com/pkg/errors"
)

type countingExecutor struct {
	calls int
	val   values.Value
	err   error
}

func (e *countingExecutor) Eval(ir.Expr) (values.Value, error) {
	e.calls++
	return e.val, e.err
}

var x = ir.NewVar("x", ir.ScalarType(dtype.Int64))

func TestNewNilExpr(t *testing.T) {
	if _, err := bound.New(nil, values.IntValue(1), 0); err == nil {
		t.Errorf("expected an error when binding a nil expression")
	}
}

func TestStates(t *testing.T) {
	reg := executor.NewRegistry()
	id := reg.Register(&countingExecutor{val: values.IntValue(2)})
	tests := []struct {
		value        values.Value
		exec         executor.ID
		isConstant   bool
		needsEval    bool
		wantResolved string
	}{
		{value: values.IntValue(1), isConstant: true, wantResolved: "1"},
		{value: values.IntValue(1), exec: id, wantResolved: "1"},
		{exec: id, needsEval: true, wantResolved: "2"},
	}
	for i, test := range tests {
		b, err := bound.New(x, test.value, test.exec)
		if err != nil {
			t.Fatal(err)
		}
		if got := b.IsConstant(); got != test.isConstant {
			t.Errorf("test %d: IsConstant() = %v but want %v", i, got, test.isConstant)
		}
		if got := b.NeedsEval(); got != test.needsEval {
			t.Errorf("test %d: NeedsEval() = %v but want %v", i, got, test.needsEval)
		}
		val, err := b.Resolve(reg)
		if err != nil {
			t.Errorf("test %d: %+v", i, err)
			continue
		}
		if got := val.String(); got != test.wantResolved {
			t.Errorf("test %d: resolved to %s but want %s", i, got, test.wantResolved)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	reg := executor.NewRegistry()
	errEval := errors.New("eval failed")
	failing := reg.Register(&countingExecutor{err: errEval})
	released := reg.Register(&countingExecutor{})
	if err := reg.Release(released); err != nil {
		t.Fatal(err)
	}

	noExec, _ := bound.New(x, nil, 0)
	if _, err := noExec.Resolve(reg); err == nil {
		t.Errorf("expected an error when resolving without a value and an executor")
	}
	dangling, _ := bound.New(x, nil, released)
	if _, err := dangling.Resolve(reg); err == nil {
		t.Errorf("expected an error when resolving with a released executor")
	}
	noRegistry, _ := bound.New(x, nil, failing)
	if _, err := noRegistry.Resolve(nil); err == nil {
		t.Errorf("expected an error when resolving without a registry")
	}
	fails, _ := bound.New(x, nil, failing)
	if _, err := fails.Resolve(reg); !errors.Is(err, errEval) {
		t.Errorf("got error %v but want %v", err, errEval)
	}
}

func TestDoesNotOwnExecutor(t *testing.T) {
	reg := executor.NewRegistry()
	exec := &countingExecutor{val: values.NewBool(true)}
	id := reg.Register(exec)
	b, err := bound.New(x, nil, id)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Resolve(reg); err != nil {
		t.Fatal(err)
	}
	if exec.calls != 1 {
		t.Errorf("executor called %d times but want 1", exec.calls)
	}
	if reg.Count() != 1 {
		t.Errorf("resolving a bound expression changed the registry")
	}
	if b.NeedsEval() != true {
		t.Errorf("resolving modified the bound expression")
	}
}

func TestAsConstExpr(t *testing.T) {
	b, err := bound.New(x, values.FloatValue(1.5), 0)
	if err != nil {
		t.Fatal(err)
	}
	c, err := b.AsConstExpr()
	if err != nil {
		t.Fatal(err)
	}
	if got := c.String(); got != "1.5" {
		t.Errorf("got %s but want 1.5", got)
	}
	if got, want := b.String(), "%x = 1.5"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	unresolved, _ := bound.New(x, nil, 0)
	if _, err := unresolved.AsConstExpr(); err == nil {
		t.Errorf("expected an error for an expression without value")
	}
}
