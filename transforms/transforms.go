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

// Package transforms implements the passes of the compiler.
package transforms

import (
	"github.com/gx-org/tpc/pass"
	"go.uber.org/multierr"
)

// Names of the passes.
const (
	InferTypeName         = "InferType"
	FoldConstantName      = "FoldConstant"
	DispatchDialectName   = "DispatchDialect"
	EliminateDeadCodeName = "EliminateDeadCode"
	SimplifyExprName      = "SimplifyExpr"
)

// DefaultPipeline lists the passes of the default pipeline in order.
var DefaultPipeline = []string{
	InferTypeName,
	SimplifyExprName,
	FoldConstantName,
	EliminateDeadCodeName,
	DispatchDialectName,
}

// Register all the passes of the package in a registry.
func Register(reg *pass.Registry) error {
	var errs error
	for _, ctor := range []pass.Constructor{
		InferType,
		FoldConstant,
		DispatchDialect,
		EliminateDeadCode,
		SimplifyExpr,
	} {
		errs = multierr.Append(errs, reg.Register(ctor))
	}
	return errs
}

// Default returns the default pipeline given a registry.
func Default(reg *pass.Registry) (*pass.Sequential, error) {
	return reg.Sequential("default", 0, DefaultPipeline...)
}
