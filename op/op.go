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

// Package op is the catalog of primitive operators.
//
// A base operator (for example add) is device independent.
// A dialect operator (for example cpu.add) implements a base operator
// for a device type. Passes rewrite base operators to dialect operators
// once the target device is known.
package op

import (
	"slices"

	"github.com/gx-org/tpc/api/values"
	"github.com/gx-org/tpc/base/sync"
	"github.com/gx-org/tpc/build/ir"
	"github.com/gx-org/tpc/runtime/device"
	"github.com/pkg/errors"
)

type (
	// Compute evaluates an operator given the values of its arguments.
	Compute func(args []values.Value) (values.Value, error)

	// TypeRel returns the type of the result of an operator
	// given the types of its arguments.
	TypeRel func(args []ir.Type) (ir.Type, error)

	// Op is a primitive operator.
	Op struct {
		Name    string
		Arity   int
		Compute Compute
		Rel     TypeRel

		// Base is the name of the base operator implemented by a dialect operator.
		// Empty for base operators.
		Base string
		// Device is the device type of a dialect operator.
		Device device.Type
	}

	dialectKey struct {
		base string
		dev  device.Type
	}
)

var (
	catalog  sync.Map[string, *Op]
	dialects sync.Map[dialectKey, string]
)

// Register an operator in the catalog.
func Register(op *Op) error {
	if op.Name == "" {
		return errors.Errorf("cannot register an operator without a name")
	}
	if op.Compute == nil || op.Rel == nil {
		return errors.Errorf("operator %s has no compute or no type relation", op.Name)
	}
	if _, exist := catalog.Load(op.Name); exist {
		return errors.Errorf("operator %s already registered", op.Name)
	}
	catalog.Store(op.Name, op)
	return nil
}

// Lookup returns an operator given its name.
func Lookup(name string) (*Op, bool) {
	return catalog.Load(name)
}

// Names returns the sorted names of all the registered operators.
func Names() []string {
	var names []string
	for name := range catalog.Iter() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Call evaluates an operator.
func Call(name string, args []values.Value) (values.Value, error) {
	op, ok := Lookup(name)
	if !ok {
		return nil, errors.Errorf("operator %s not found", name)
	}
	if len(args) != op.Arity {
		return nil, errors.Errorf("operator %s expects %d arguments but got %d", name, op.Arity, len(args))
	}
	out, err := op.Compute(args)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot evaluate %s", name)
	}
	return out, nil
}

// InferType returns the type of the result of an operator call.
func InferType(name string, args []ir.Type) (ir.Type, error) {
	op, ok := Lookup(name)
	if !ok {
		return nil, errors.Errorf("operator %s not found", name)
	}
	if len(args) != op.Arity {
		return nil, errors.Errorf("operator %s expects %d arguments but got %d", name, op.Arity, len(args))
	}
	return op.Rel(args)
}

// RegisterDialect registers a dialect operator implementing a base operator
// for a device type. The dialect operator shares the compute and the type
// relation of its base operator.
func RegisterDialect(base string, dev device.Type, dialect string) error {
	baseOp, ok := Lookup(base)
	if !ok {
		return errors.Errorf("cannot register dialect %s: base operator %s not found", dialect, base)
	}
	if baseOp.Base != "" {
		return errors.Errorf("cannot register dialect %s: %s is itself a dialect operator", dialect, base)
	}
	if err := Register(&Op{
		Name:    dialect,
		Arity:   baseOp.Arity,
		Compute: baseOp.Compute,
		Rel:     baseOp.Rel,
		Base:    base,
		Device:  dev,
	}); err != nil {
		return err
	}
	dialects.Store(dialectKey{base: base, dev: dev}, dialect)
	return nil
}

// Dispatch returns the dialect operator implementing a base operator on a device type.
func Dispatch(base string, dev device.Type) (string, bool) {
	return dialects.Load(dialectKey{base: base, dev: dev})
}

// IsDialect returns true if an operator is a dialect operator.
func IsDialect(name string) bool {
	op, ok := Lookup(name)
	return ok && op.Base != ""
}
