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

package pass

import (
	"context"
	"slices"
	"time"

	"github.com/gx-org/tpc/build/ir"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Sequential runs a list of passes in order.
// Each admitted pass receives the module produced by the previous admitted pass.
type Sequential struct {
	info   Info
	passes []Pass
}

var _ Pass = (*Sequential)(nil)

// NewSequential returns a pass running other passes in order.
func NewSequential(name string, level int, passes ...Pass) *Sequential {
	return &Sequential{
		info:   Info{Name: name, OptLevel: level},
		passes: slices.Clone(passes),
	}
}

// Info returns the name and level of the sequence.
func (s *Sequential) Info() Info { return s.info }

// Granularity returns SequentialLevel.
func (s *Sequential) Granularity() Granularity { return SequentialLevel }

// Passes returns the passes of the sequence.
func (s *Sequential) Passes() []Pass {
	return slices.Clone(s.passes)
}

// Apply the passes admitted by the context in order.
func (s *Sequential) Apply(ctx context.Context, pc *Context, mod *ir.Module) (*ir.Module, error) {
	cur := mod
	for _, p := range s.passes {
		next, err := apply(ctx, pc, p, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// apply runs a pass if it is admitted by the context.
// Errors are wrapped into a PassFailure unless they are already one.
func apply(ctx context.Context, pc *Context, p Pass, mod *ir.Module) (*ir.Module, error) {
	info := p.Info()
	log := klog.FromContext(ctx)
	if !pc.Admits(info) {
		log.V(2).Info("skip pass", "pass", info.Name, "level", info.OptLevel, "ctxLevel", pc.OptLevel())
		return mod, nil
	}
	log.V(2).Info("admit pass", "pass", info.Name, "granularity", p.Granularity())
	for _, instr := range pc.instruments {
		instr.BeforePass(info, mod)
	}
	start := time.Now()
	out, err := p.Apply(ctx, pc, mod)
	if err != nil {
		var failure *PassFailure
		if errors.As(err, &failure) {
			return nil, err
		}
		return nil, &PassFailure{
			Pass:   info.Name,
			Module: mod.ID(),
			Last:   mod,
			Err:    err,
		}
	}
	if p.Granularity() != SequentialLevel {
		log.V(1).Info("run pass", "pass", info.Name, "duration", time.Since(start))
	}
	for _, instr := range pc.instruments {
		instr.AfterPass(info, out)
	}
	return out, nil
}
