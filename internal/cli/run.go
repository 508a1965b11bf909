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

package cli

import (
	"fmt"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tpc/api/values"
	"github.com/gx-org/tpc/build/ir"
	"github.com/gx-org/tpc/op"
	"github.com/gx-org/tpc/pass"
	"github.com/spf13/cobra"
)

// sample returns the module compiled by the run command:
//
//	def @axpy(%a: float32, %x: float32, %y: float32) {
//	  add(multiply(%a, %x), %y)
//	}
//
//	def @main(%x: float32) {
//	  let %a = add(1.0, 1.0);
//	  let %unused = multiply(%x, %x);
//	  @axpy(%a, multiply(%x, 1.0), 0.0)
//	}
func sample() (*ir.Module, error) {
	f32 := ir.ScalarType(dtype.Float32)
	call := func(fn ir.Expr, args ...ir.Expr) *ir.Call {
		return &ir.Call{Fn: fn, Args: args}
	}
	float := func(v float64) ir.Expr {
		return ir.NewConstant(values.FloatValue(v))
	}
	add, multiply := &ir.Op{Name: op.Add}, &ir.Op{Name: op.Multiply}

	a, x, y := ir.NewVar("a", f32), ir.NewVar("x", f32), ir.NewVar("y", f32)
	axpy := &ir.Function{
		Params: []*ir.Var{a, x, y},
		Body:   call(add, call(multiply, a, x), y),
	}

	mainX, mainA, unused := ir.NewVar("x", f32), ir.NewVar("a", nil), ir.NewVar("unused", nil)
	main := &ir.Function{
		Params: []*ir.Var{mainX},
		Body: &ir.Let{
			Var:   mainA,
			Value: call(add, float(1), float(1)),
			Body: &ir.Let{
				Var:   unused,
				Value: call(multiply, mainX, mainX),
				Body:  call(&ir.GlobalVar{Name: "axpy"}, mainA, call(multiply, mainX, float(1)), float(0)),
			},
		},
	}
	return ir.NewModule(ir.FuncDef{Name: "axpy", Func: axpy}, ir.FuncDef{Name: "main", Func: main})
}

func newRunCommand() *cobra.Command {
	o := &overrides{}
	trace := false
	cmd := &cobra.Command{
		Use:   "run CONFIG",
		Short: "Run a pipeline on a sample module and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, seq, err := o.load(args[0])
			if err != nil {
				return err
			}
			var instr *pass.Trace
			if trace {
				instr = &pass.Trace{}
				pc = pc.With(pass.WithInstruments(instr))
			}
			mod, err := sample()
			if err != nil {
				return err
			}
			out, err := pass.Run(cmd.Context(), pc, seq, mod)
			if err != nil {
				return err
			}
			if instr != nil {
				for _, event := range instr.Events() {
					fmt.Fprintln(cmd.ErrOrStderr(), event)
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), out.String())
			return nil
		},
	}
	o.register(cmd)
	cmd.Flags().BoolVar(&trace, "trace", false, "print the passes as they run")
	return cmd
}
