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

package executor_test

import (
	gosync "sync"
	"testing"

	"github.com/gx-org/tpc/api/executor"
	"github.com/gx-org/tpc/api/values"
	"github.com/gx-org/tpc/build/ir"
)

type constExecutor struct{ val values.Value }

func (e constExecutor) Eval(ir.Expr) (values.Value, error) { return e.val, nil }

func TestRegistry(t *testing.T) {
	reg := executor.NewRegistry()
	exec := constExecutor{val: values.IntValue(1)}
	id := reg.Register(exec)
	if id == 0 {
		t.Fatalf("registry issued the zero ID")
	}
	got, ok := reg.Lookup(id)
	if !ok || got != exec {
		t.Errorf("Lookup(%d) = %v, %v but want %v, true", id, got, ok, exec)
	}
	if _, ok := reg.Lookup(0); ok {
		t.Errorf("the zero ID resolved to an executor")
	}
	if reg.Count() != 1 {
		t.Errorf("got %d executors but want 1", reg.Count())
	}
	if err := reg.Release(id); err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Lookup(id); ok {
		t.Errorf("released executor still resolves")
	}
	if err := reg.Release(id); err == nil {
		t.Errorf("expected an error when releasing an executor twice")
	}
}

func TestRegistryConcurrent(t *testing.T) {
	reg := executor.NewRegistry()
	const n = 64
	ids := make([]executor.ID, n)
	var wg gosync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = reg.Register(constExecutor{val: values.IntValue(int64(i))})
		}()
	}
	wg.Wait()
	seen := make(map[executor.ID]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("ID %d issued twice", id)
		}
		seen[id] = true
	}
	if reg.Count() != n {
		t.Errorf("got %d executors but want %d", reg.Count(), n)
	}
}
