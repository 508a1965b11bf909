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
	"fmt"
	"strings"
)

// ----------------------------------------------------------------------------
// Expressions.
type (
	// Expr is an expression of the IR.
	Expr interface {
		Node

		// CheckedType returns the type inferred for the expression.
		// Returns nil if no type has been inferred.
		CheckedType() Type

		// String representation of the expression.
		String() string

		withType(Type) Expr
	}

	// checked stores the type inferred for an expression.
	checked struct {
		typ Type
	}

	// Var is a local variable: a function parameter or a let binding.
	// Two variables are the same only if they are the same pointer.
	Var struct {
		checked
		Name string
		// Annot is the type annotation of the variable. May be nil.
		Annot Type
	}

	// GlobalVar references a function of the module by name.
	GlobalVar struct {
		checked
		Name string
	}

	// Constant is a literal value.
	Constant struct {
		checked
		Val Value
	}

	// Op references a primitive operator by name.
	Op struct {
		checked
		Name string
	}

	// Call applies a callee to arguments.
	Call struct {
		checked
		Fn   Expr
		Args []Expr
	}

	// Tuple groups expressions.
	Tuple struct {
		checked
		Fields []Expr
	}

	// TupleGetItem extracts a field from a tuple.
	TupleGetItem struct {
		checked
		Tuple Expr
		Index int
	}

	// Let binds a value to a variable in the scope of a body.
	Let struct {
		checked
		Var   *Var
		Value Expr
		Body  Expr
	}

	// Attrs are attributes of a function.
	Attrs struct {
		// Primitive functions are treated as opaque by function passes.
		Primitive bool
	}

	// Function is a function literal.
	Function struct {
		checked
		Params []*Var
		Body   Expr
		// Ret is the result type of the function. May be nil.
		Ret   Type
		Attrs Attrs
	}
)

var (
	_ Expr = (*Var)(nil)
	_ Expr = (*GlobalVar)(nil)
	_ Expr = (*Constant)(nil)
	_ Expr = (*Op)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*Tuple)(nil)
	_ Expr = (*TupleGetItem)(nil)
	_ Expr = (*Let)(nil)
	_ Expr = (*Function)(nil)
)

// CheckedType returns the type inferred for the expression.
func (c checked) CheckedType() Type { return c.typ }

// WithType returns a copy of an expression with its checked type set.
func WithType[T Expr](expr T, typ Type) T {
	return expr.withType(typ).(T)
}

// NewVar returns a new variable.
func NewVar(name string, annot Type) *Var {
	return &Var{Name: name, Annot: annot}
}

func (*Var) node() {}

func (v *Var) withType(typ Type) Expr {
	c := *v
	c.typ = typ
	return &c
}

// CheckedType returns the type inferred for the variable
// or, if none, its annotation.
func (v *Var) CheckedType() Type {
	if v.typ != nil {
		return v.typ
	}
	return v.Annot
}

// String representation of the expression.
func (v *Var) String() string { return "%" + v.Name }

func (v *Var) declString() string {
	if v.Annot == nil {
		return v.String()
	}
	return v.String() + ": " + v.Annot.String()
}

func (*GlobalVar) node() {}

func (g *GlobalVar) withType(typ Type) Expr {
	c := *g
	c.typ = typ
	return &c
}

// String representation of the expression.
func (g *GlobalVar) String() string { return "@" + g.Name }

// NewConstant returns a constant expression wrapping a value.
func NewConstant(val Value) *Constant {
	return &Constant{Val: val}
}

func (*Constant) node() {}

func (c *Constant) withType(typ Type) Expr {
	cc := *c
	cc.typ = typ
	return &cc
}

// String representation of the expression.
func (c *Constant) String() string { return c.Val.String() }

func (*Op) node() {}

func (o *Op) withType(typ Type) Expr {
	c := *o
	c.typ = typ
	return &c
}

// String representation of the expression.
func (o *Op) String() string { return o.Name }

func (*Call) node() {}

func (c *Call) withType(typ Type) Expr {
	cc := *c
	cc.typ = typ
	return &cc
}

// String representation of the expression.
func (c *Call) String() string {
	return c.Fn.String() + listString(c.Args)
}

func (*Tuple) node() {}

func (t *Tuple) withType(typ Type) Expr {
	c := *t
	c.typ = typ
	return &c
}

// String representation of the expression.
func (t *Tuple) String() string {
	return tupleString(t.Fields)
}

func (*TupleGetItem) node() {}

func (t *TupleGetItem) withType(typ Type) Expr {
	c := *t
	c.typ = typ
	return &c
}

// String representation of the expression.
func (t *TupleGetItem) String() string {
	return fmt.Sprintf("%s.%d", t.Tuple.String(), t.Index)
}

func (*Let) node() {}

func (l *Let) withType(typ Type) Expr {
	c := *l
	c.typ = typ
	return &c
}

// String representation of the expression.
func (l *Let) String() string {
	return fmt.Sprintf("let %s = %s;\n%s", l.Var.declString(), l.Value.String(), l.Body.String())
}

func (*Function) node() {}

func (f *Function) withType(typ Type) Expr {
	c := *f
	c.typ = typ
	return &c
}

// Type returns the type of the function as declared by its annotations.
// Parameters without annotation have an unknown type.
func (f *Function) Type() *FuncType {
	ft := &FuncType{Params: make([]Type, len(f.Params)), Result: f.Ret}
	for i, param := range f.Params {
		ft.Params[i] = param.Annot
		if ft.Params[i] == nil {
			ft.Params[i] = UnknownType()
		}
	}
	return ft
}

// String representation of the expression.
func (f *Function) String() string {
	return f.signature("fn") + f.bodyString()
}

func (f *Function) signature(name string) string {
	var b strings.Builder
	if f.Attrs.Primitive {
		b.WriteString("primitive ")
	}
	b.WriteString(name)
	b.WriteString("(")
	for i, param := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(param.declString())
	}
	b.WriteString(")")
	if f.Ret != nil {
		b.WriteString(" -> ")
		b.WriteString(f.Ret.String())
	}
	return b.String()
}

func (f *Function) bodyString() string {
	lines := strings.Split(f.Body.String(), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return " {\n" + strings.Join(lines, "\n") + "\n}"
}
