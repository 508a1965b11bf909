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

// Package executor references the executors evaluating expressions.
//
// An executor is referenced by an ID issued by a registry.
// Holders of an ID do not own the executor: the executor can be released
// from the registry at any time, after which its ID no longer resolves.
package executor

import (
	"sync/atomic"

	"github.com/gx-org/tpc/api/values"
	"github.com/gx-org/tpc/base/sync"
	"github.com/gx-org/tpc/build/ir"
	"github.com/pkg/errors"
)

type (
	// Executor evaluates expressions into values.
	Executor interface {
		Eval(ir.Expr) (values.Value, error)
	}

	// ID references an executor in a registry.
	// The zero ID references no executor.
	ID uintptr

	// Registry maps IDs to executors.
	// A registry is safe for concurrent use.
	Registry struct {
		executors sync.Map[ID, Executor]
		next      atomic.Uintptr
	}
)

// NewRegistry returns a new empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register an executor and returns its ID.
// The zero ID is never returned.
func (r *Registry) Register(exec Executor) ID {
	id := ID(r.next.Add(1))
	if id == 0 {
		panic("executor: ran out of IDs")
	}
	r.executors.Store(id, exec)
	return id
}

// Lookup returns the executor referenced by an ID.
func (r *Registry) Lookup(id ID) (Executor, bool) {
	if id == 0 {
		return nil, false
	}
	return r.executors.Load(id)
}

// Release removes an executor from the registry.
func (r *Registry) Release(id ID) error {
	if _, ok := r.executors.LoadAndDelete(id); !ok {
		return errors.Errorf("executor %d is not registered", id)
	}
	return nil
}

// Count returns the number of registered executors.
func (r *Registry) Count() int {
	return r.executors.Size()
}
