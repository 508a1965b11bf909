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

package transforms

import (
	"context"

	"github.com/gx-org/tpc/build/ir"
	"github.com/gx-org/tpc/op"
	"github.com/gx-org/tpc/pass"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DispatchDialect returns a pass replacing base operators by the dialect
// operators implementing them on the target device of the context.
// Without a target device, the module is returned unchanged.
func DispatchDialect() pass.Pass {
	return dispatchDialect{Pass: pass.NewFunctionPass(DispatchDialectName, 1, dispatchFunction)}
}

type dispatchDialect struct {
	pass.Pass
}

func (p dispatchDialect) Apply(ctx context.Context, pc *pass.Context, mod *ir.Module) (*ir.Module, error) {
	if _, ok := pc.Device(); !ok {
		klog.FromContext(ctx).Info("no target device: operators are not dispatched", "pass", DispatchDialectName, "module", mod.ID())
		return mod, nil
	}
	return p.Pass.Apply(ctx, pc, mod)
}

func dispatchFunction(ctx context.Context, pc *pass.Context, mod *ir.Module, fn *ir.Function) (*ir.Function, error) {
	dev, ok := pc.Device()
	if !ok {
		return nil, errors.Errorf("no target device")
	}
	r := &ir.Rewriter{
		Op: func(o *ir.Op) (ir.Expr, error) {
			if op.IsDialect(o.Name) {
				return o, nil
			}
			dialect, ok := op.Dispatch(o.Name, dev.Type)
			if !ok {
				return o, nil
			}
			return ir.WithType(&ir.Op{Name: dialect}, o.CheckedType()), nil
		},
	}
	return r.RewriteFunction(fn)
}
