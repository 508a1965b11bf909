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

	"github.com/gx-org/tpc/build/ir"
	"github.com/pkg/errors"
)

// Run a pass on a module given a context.
// The context is active for the duration of the run.
// Run either returns the transformed module or a *PassFailure
// for the first failing pass. The input module is never modified.
func Run(ctx context.Context, pc *Context, p Pass, mod *ir.Module) (*ir.Module, error) {
	if pc == nil {
		return nil, errors.Errorf("cannot run pass %s: no pass context", p.Info().Name)
	}
	if mod == nil {
		return nil, errors.Errorf("cannot run pass %s: no module", p.Info().Name)
	}
	if err := pc.Enter(); err != nil {
		return nil, err
	}
	defer pc.Exit()
	return apply(ctx, pc, p, mod)
}

// Plan returns the names of the passes, excluding sequences, that
// a run would apply given a context. Nothing is run.
func Plan(pc *Context, p Pass) []string {
	var names []string
	plan(pc, p, &names)
	return names
}

func plan(pc *Context, p Pass, names *[]string) {
	if !pc.Admits(p.Info()) {
		return
	}
	seq, ok := p.(*Sequential)
	if !ok {
		*names = append(*names, p.Info().Name)
		return
	}
	for _, sub := range seq.passes {
		plan(pc, sub, names)
	}
}
