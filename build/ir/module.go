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

package ir

import (
	"iter"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/gx-org/tpc/base/ordered"
	"github.com/pkg/errors"
)

type (
	// FuncDef binds a function to a global name.
	FuncDef struct {
		Name string
		Func *Function
	}

	// Module is a program unit: an ordered table of global functions.
	// A module is never modified: all operations building a new
	// module return a new instance with a new identity.
	Module struct {
		id    uuid.UUID
		funcs *ordered.Map[string, *Function]
	}
)

// NewModule returns a module given a list of function definitions.
// Definitions are kept in the order given.
func NewModule(defs ...FuncDef) (*Module, error) {
	funcs := ordered.NewMap[string, *Function]()
	for _, def := range defs {
		if def.Name == "" {
			return nil, errors.Errorf("function definition has no name")
		}
		if def.Func == nil {
			return nil, errors.Errorf("function @%s has no definition", def.Name)
		}
		if funcs.Has(def.Name) {
			return nil, errors.Errorf("function @%s defined more than once", def.Name)
		}
		funcs.Store(def.Name, def.Func)
	}
	return newModule(funcs), nil
}

func newModule(funcs *ordered.Map[string, *Function]) *Module {
	return &Module{id: uuid.Must(uuid.NewV7()), funcs: funcs}
}

// ID returns the identity of the module.
func (m *Module) ID() uuid.UUID {
	return m.id
}

// Lookup returns a function given its global name.
func (m *Module) Lookup(name string) (*Function, bool) {
	return m.funcs.Load(name)
}

// Functions returns an iterator over the functions in declaration order.
func (m *Module) Functions() iter.Seq2[string, *Function] {
	return m.funcs.Iter()
}

// Defs returns the function definitions of the module in declaration order.
func (m *Module) Defs() []FuncDef {
	defs := make([]FuncDef, 0, m.funcs.Size())
	for name, fn := range m.funcs.Iter() {
		defs = append(defs, FuncDef{Name: name, Func: fn})
	}
	return defs
}

// Names returns the names of the functions in declaration order.
func (m *Module) Names() []string {
	return slices.Collect(m.funcs.Keys())
}

// Len returns the number of functions in the module.
func (m *Module) Len() int {
	return m.funcs.Size()
}

// WithFunction returns a new module in which a function has been added or,
// if the name already exists, replaced. A replaced function keeps its position.
func (m *Module) WithFunction(name string, fn *Function) *Module {
	funcs := m.funcs.Clone()
	funcs.Store(name, fn)
	return newModule(funcs)
}

// Update returns a new module merging the functions of another module
// into the receiver. Functions of other replace functions with the same name.
func (m *Module) Update(other *Module) *Module {
	funcs := m.funcs.Clone()
	for name, fn := range other.funcs.Iter() {
		funcs.Store(name, fn)
	}
	return newModule(funcs)
}

// String representation of the module.
func (m *Module) String() string {
	var ss []string
	for name, fn := range m.funcs.Iter() {
		ss = append(ss, fn.signature("def @"+name)+fn.bodyString())
	}
	if len(ss) == 0 {
		return ""
	}
	return strings.Join(ss, "\n\n") + "\n"
}
