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

// Package pass composes and runs transformations of IR modules.
//
// A pass transforms a module into a new module. Passes are gated by an
// optimization level and by the disabled and required sets of a Context.
// Passes can be composed into a Sequential, which is itself a pass.
package pass

import (
	"context"
	"fmt"

	"github.com/gx-org/tpc/build/fmterr"
	"github.com/gx-org/tpc/build/ir"
)

type (
	// Info describes a pass.
	Info struct {
		// Name of the pass. Names are used by the disabled and required sets.
		Name string
		// OptLevel is the minimum optimization level for the pass to run.
		OptLevel int
	}

	// Granularity is the IR unit a pass operates on.
	Granularity int

	// Pass transforms a module into a new module.
	// A pass never modifies its input.
	Pass interface {
		Info() Info
		Granularity() Granularity
		Apply(ctx context.Context, pc *Context, mod *ir.Module) (*ir.Module, error)
	}
)

const (
	// ModuleLevel passes transform a whole module.
	ModuleLevel Granularity = iota
	// FunctionLevel passes transform every function of a module independently.
	FunctionLevel
	// SequentialLevel passes run other passes in order.
	SequentialLevel
)

func (g Granularity) String() string {
	switch g {
	case ModuleLevel:
		return "module"
	case FunctionLevel:
		return "function"
	case SequentialLevel:
		return "sequential"
	}
	return fmt.Sprintf("Granularity(%d)", int(g))
}

func (i Info) String() string {
	return fmt.Sprintf("%s(O%d)", i.Name, i.OptLevel)
}

type (
	// ModuleFunc transforms a module.
	ModuleFunc func(ctx context.Context, pc *Context, mod *ir.Module) (*ir.Module, error)

	// FunctionFunc transforms a function of a module.
	FunctionFunc func(ctx context.Context, pc *Context, mod *ir.Module, fn *ir.Function) (*ir.Function, error)

	modulePass struct {
		info Info
		fn   ModuleFunc
	}

	functionPass struct {
		info Info
		fn   FunctionFunc
	}
)

var (
	_ Pass = (*modulePass)(nil)
	_ Pass = (*functionPass)(nil)
)

// NewModulePass returns a pass transforming a whole module.
func NewModulePass(name string, level int, fn ModuleFunc) Pass {
	return &modulePass{info: Info{Name: name, OptLevel: level}, fn: fn}
}

func (p *modulePass) Info() Info { return p.info }

func (p *modulePass) Granularity() Granularity { return ModuleLevel }

func (p *modulePass) Apply(ctx context.Context, pc *Context, mod *ir.Module) (*ir.Module, error) {
	out, err := p.fn(ctx, pc, mod)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmterr.Internalf("pass %s returned a nil module", p.info.Name)
	}
	return out, nil
}

// NewFunctionPass returns a pass applied to every function of a module.
// Functions are transformed in declaration order. Primitive functions are
// left untouched.
func NewFunctionPass(name string, level int, fn FunctionFunc) Pass {
	return &functionPass{info: Info{Name: name, OptLevel: level}, fn: fn}
}

func (p *functionPass) Info() Info { return p.info }

func (p *functionPass) Granularity() Granularity { return FunctionLevel }

func (p *functionPass) Apply(ctx context.Context, pc *Context, mod *ir.Module) (*ir.Module, error) {
	defs := mod.Defs()
	changed := false
	for i, def := range defs {
		if def.Func.Attrs.Primitive {
			continue
		}
		out, err := p.fn(ctx, pc, mod, def.Func)
		if err != nil {
			return nil, fmterr.PrefixWith("function @%s: ", def.Name)(err)
		}
		if out == nil {
			return nil, fmterr.Internalf("pass %s returned a nil function for @%s", p.info.Name, def.Name)
		}
		if out != def.Func {
			changed = true
		}
		defs[i].Func = out
	}
	if !changed {
		return mod, nil
	}
	return ir.NewModule(defs...)
}
