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

package ir_test

import (
	"slices"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tpc/build/ir"
)

type intValue int64

func (intValue) Type() ir.Type { return ir.ScalarType(dtype.Int64) }

func (v intValue) String() string { return strconv.FormatInt(int64(v), 10) }

var (
	f32  = ir.ScalarType(dtype.Float32)
	add  = &ir.Op{Name: "add"}
	mult = &ir.Op{Name: "multiply"}
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  ir.Type
		want string
	}{
		{typ: f32, want: "float32"},
		{typ: ir.NewTensorType(dtype.Int64, []int{5, 10}), want: "[5][10]int64"},
		{typ: &ir.TupleType{Types: []ir.Type{f32, ir.StringType()}}, want: "(float32, string)"},
		{typ: &ir.TupleType{Types: []ir.Type{f32}}, want: "(float32,)"},
		{typ: &ir.TupleType{}, want: "()"},
		{typ: &ir.FuncType{Params: []ir.Type{f32, f32}, Result: ir.ScalarType(dtype.Bool)}, want: "func(float32, float32) bool"},
		{typ: ir.NoGradType(), want: "nograd"},
		{typ: ir.UnknownType(), want: "unknown"},
	}
	for _, test := range tests {
		if got := test.typ.String(); got != test.want {
			t.Errorf("got %q but want %q", got, test.want)
		}
	}
}

func TestTypeEqual(t *testing.T) {
	tests := []struct {
		a, b ir.Type
		want bool
	}{
		{a: f32, b: ir.ScalarType(dtype.Float32), want: true},
		{a: f32, b: ir.ScalarType(dtype.Float64), want: false},
		{a: ir.NewTensorType(dtype.Float32, []int{2}), b: f32, want: false},
		{a: ir.NewTensorType(dtype.Float32, []int{2}), b: ir.NewTensorType(dtype.Float32, []int{2}), want: true},
		{
			a:    &ir.TupleType{Types: []ir.Type{f32, ir.StringType()}},
			b:    &ir.TupleType{Types: []ir.Type{f32, ir.StringType()}},
			want: true,
		},
		{
			a:    &ir.TupleType{Types: []ir.Type{f32}},
			b:    &ir.TupleType{Types: []ir.Type{f32, f32}},
			want: false,
		},
		{a: &ir.FuncType{Params: []ir.Type{f32}}, b: &ir.FuncType{Params: []ir.Type{f32}}, want: true},
		{a: &ir.FuncType{Params: []ir.Type{f32}}, b: &ir.FuncType{Params: []ir.Type{f32}, Result: f32}, want: false},
		{a: ir.StringType(), b: ir.NoGradType(), want: false},
	}
	for i, test := range tests {
		if got := test.a.Equal(test.b); got != test.want {
			t.Errorf("test %d: %s.Equal(%s) = %v but want %v", i, test.a, test.b, got, test.want)
		}
	}
}

func TestExprString(t *testing.T) {
	x := ir.NewVar("x", f32)
	y := ir.NewVar("y", nil)
	tests := []struct {
		expr ir.Expr
		want string
	}{
		{expr: x, want: "%x"},
		{expr: &ir.GlobalVar{Name: "main"}, want: "@main"},
		{expr: ir.NewConstant(intValue(42)), want: "42"},
		{expr: &ir.Call{Fn: add, Args: []ir.Expr{x, x}}, want: "add(%x, %x)"},
		{expr: &ir.Tuple{Fields: []ir.Expr{x}}, want: "(%x,)"},
		{expr: &ir.TupleGetItem{Tuple: &ir.Tuple{Fields: []ir.Expr{x, y}}, Index: 1}, want: "(%x, %y).1"},
		{
			expr: &ir.Let{Var: y, Value: &ir.Call{Fn: add, Args: []ir.Expr{x, x}}, Body: y},
			want: "let %y = add(%x, %x);\n%y",
		},
		{
			expr: &ir.Function{Params: []*ir.Var{x}, Body: x, Ret: f32},
			want: "fn(%x: float32) -> float32 {\n  %x\n}",
		},
	}
	for _, test := range tests {
		if got := test.expr.String(); got != test.want {
			t.Errorf("got:\n%s\nwant:\n%s", got, test.want)
		}
	}
}

func TestWithType(t *testing.T) {
	x := ir.NewVar("x", f32)
	call := &ir.Call{Fn: add, Args: []ir.Expr{x, x}}
	typed := ir.WithType(call, f32)
	if call.CheckedType() != nil {
		t.Errorf("WithType modified its argument")
	}
	if typed == call {
		t.Errorf("WithType returned its argument")
	}
	if got := typed.CheckedType(); got != f32 {
		t.Errorf("got checked type %v but want %v", got, f32)
	}
	if got := x.CheckedType(); got != f32 {
		t.Errorf("variable checked type %v but want its annotation %v", got, f32)
	}
}

func newAddModule(t *testing.T) *ir.Module {
	x := ir.NewVar("x", f32)
	mod, err := ir.NewModule(ir.FuncDef{
		Name: "f",
		Func: &ir.Function{
			Params: []*ir.Var{x},
			Body:   &ir.Call{Fn: add, Args: []ir.Expr{x, x}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return mod
}

func TestModule(t *testing.T) {
	mod := newAddModule(t)
	want := "def @f(%x: float32) {\n  add(%x, %x)\n}\n"
	if got := mod.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if _, ok := mod.Lookup("f"); !ok {
		t.Errorf("cannot find function @f")
	}
	if _, ok := mod.Lookup("g"); ok {
		t.Errorf("found undefined function @g")
	}

	g := &ir.Function{Body: ir.NewConstant(intValue(1)), Attrs: ir.Attrs{Primitive: true}}
	withG := mod.WithFunction("g", g)
	if withG.ID() == mod.ID() {
		t.Errorf("WithFunction returned a module with the same identity")
	}
	if mod.Len() != 1 {
		t.Errorf("WithFunction modified the original module")
	}
	if diff := cmp.Diff([]string{"f", "g"}, withG.Names()); diff != "" {
		t.Errorf("unexpected names: %s", diff)
	}
	want = "def @f(%x: float32) {\n  add(%x, %x)\n}\n\nprimitive def @g() {\n  1\n}\n"
	if got := withG.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestModuleUpdate(t *testing.T) {
	mod := newAddModule(t)
	one := &ir.Function{Body: ir.NewConstant(intValue(1))}
	two := &ir.Function{Body: ir.NewConstant(intValue(2))}
	other, err := ir.NewModule(ir.FuncDef{Name: "h", Func: one}, ir.FuncDef{Name: "f", Func: two})
	if err != nil {
		t.Fatal(err)
	}
	merged := mod.Update(other)
	if diff := cmp.Diff([]string{"f", "h"}, merged.Names()); diff != "" {
		t.Errorf("unexpected names: %s", diff)
	}
	if fn, _ := merged.Lookup("f"); fn != two {
		t.Errorf("function @f has not been replaced by the update")
	}
	if merged.ID() == mod.ID() || merged.ID() == other.ID() {
		t.Errorf("Update returned a module reusing an existing identity")
	}
}

func TestNewModuleErrors(t *testing.T) {
	fn := &ir.Function{Body: ir.NewConstant(intValue(1))}
	tests := [][]ir.FuncDef{
		{{Name: "f", Func: fn}, {Name: "f", Func: fn}},
		{{Name: "", Func: fn}},
		{{Name: "f"}},
	}
	for i, defs := range tests {
		if _, err := ir.NewModule(defs...); err == nil {
			t.Errorf("test %d: expected an error but got nil", i)
		}
	}
}

func TestRewriter(t *testing.T) {
	x := ir.NewVar("x", f32)
	y := ir.NewVar("y", f32)
	call := ir.WithType(&ir.Call{Fn: add, Args: []ir.Expr{x, y}}, f32)
	body := &ir.Tuple{Fields: []ir.Expr{call, y}}

	unchanged, err := (&ir.Rewriter{}).Rewrite(body)
	if err != nil {
		t.Fatal(err)
	}
	if unchanged != body {
		t.Errorf("rewriter with no callback returned a new node")
	}

	var calls int
	r := &ir.Rewriter{
		Var: func(v *ir.Var) (ir.Expr, error) {
			if v == x {
				return y, nil
			}
			return v, nil
		},
		Op: func(op *ir.Op) (ir.Expr, error) {
			calls++
			if op.Name == "add" {
				return mult, nil
			}
			return op, nil
		},
	}
	got, err := r.Rewrite(body)
	if err != nil {
		t.Fatal(err)
	}
	if want := "(multiply(%y, %y), %y)"; got.String() != want {
		t.Errorf("got %s but want %s", got.String(), want)
	}
	if body.String() != "(add(%x, %y), %y)" {
		t.Errorf("rewriter modified its input: %s", body.String())
	}
	newCall := got.(*ir.Tuple).Fields[0]
	if newCall.CheckedType() != f32 {
		t.Errorf("rewritten call lost its checked type")
	}
	if calls != 1 {
		t.Errorf("op callback called %d times but want 1", calls)
	}
}

func TestRewriterSkip(t *testing.T) {
	x := ir.NewVar("x", f32)
	inner := &ir.Call{Fn: add, Args: []ir.Expr{x, x}}
	outer := &ir.Call{Fn: add, Args: []ir.Expr{inner, x}}
	r := &ir.Rewriter{
		Skip: func(e ir.Expr) bool { return e == inner },
		Op: func(op *ir.Op) (ir.Expr, error) {
			return mult, nil
		},
	}
	got, err := r.Rewrite(outer)
	if err != nil {
		t.Fatal(err)
	}
	if want := "multiply(add(%x, %x), %x)"; got.String() != want {
		t.Errorf("got %s but want %s", got.String(), want)
	}
}

func TestFreeVars(t *testing.T) {
	x := ir.NewVar("x", f32)
	y := ir.NewVar("y", f32)
	z := ir.NewVar("z", f32)
	p := ir.NewVar("p", f32)
	// let %z = add(%x, %y); fn(%p) { add(%p, %z) }(%x)
	expr := &ir.Let{
		Var:   z,
		Value: &ir.Call{Fn: add, Args: []ir.Expr{x, y}},
		Body: &ir.Call{
			Fn: &ir.Function{
				Params: []*ir.Var{p},
				Body:   &ir.Call{Fn: add, Args: []ir.Expr{p, z}},
			},
			Args: []ir.Expr{x},
		},
	}
	got := ir.FreeVars(expr)
	if want := []*ir.Var{x, y}; !slices.Equal(got, want) {
		t.Errorf("got free variables %v but want %v", got, want)
	}
	if !ir.Uses(expr.Body, z) {
		t.Errorf("%%z is used in the let body")
	}
	if ir.Uses(expr, z) {
		t.Errorf("%%z is bound in the let expression")
	}
}

func TestSubstitute(t *testing.T) {
	x := ir.NewVar("x", f32)
	expr := &ir.Call{Fn: add, Args: []ir.Expr{x, x}}
	got, err := ir.Substitute(expr, map[*ir.Var]ir.Expr{x: ir.NewConstant(intValue(3))})
	if err != nil {
		t.Fatal(err)
	}
	if want := "add(3, 3)"; got.String() != want {
		t.Errorf("got %s but want %s", got.String(), want)
	}
}

func TestVisit(t *testing.T) {
	x := ir.NewVar("x", f32)
	expr := &ir.Let{Var: x, Value: ir.NewConstant(intValue(1)), Body: &ir.Tuple{Fields: []ir.Expr{x, x}}}
	var got []string
	ir.Visit(expr, func(e ir.Expr) bool {
		if _, isTuple := e.(*ir.Tuple); isTuple {
			got = append(got, "tuple")
			return false
		}
		got = append(got, e.String())
		return true
	})
	want := []string{expr.String(), "1", "tuple"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected visit order: %s", diff)
	}
}
