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
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type (
	// Constructor returns a new instance of a pass.
	Constructor func() Pass

	// Registry maps pass names to their constructors.
	// A registry is populated at startup and is not safe for concurrent writes.
	Registry struct {
		ctors map[string]Constructor
		infos map[string]Info
	}
)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ctors: make(map[string]Constructor),
		infos: make(map[string]Info),
	}
}

// Register a pass constructor. The pass is registered under the name
// returned by its Info method.
func (r *Registry) Register(ctor Constructor) error {
	if ctor == nil {
		return errors.Errorf("cannot register a nil pass constructor")
	}
	p := ctor()
	if p == nil {
		return errors.Errorf("pass constructor returned a nil pass")
	}
	info := p.Info()
	if info.Name == "" {
		return errors.Errorf("cannot register a pass without a name")
	}
	if _, exist := r.ctors[info.Name]; exist {
		return errors.Errorf("pass %s already registered", info.Name)
	}
	r.ctors[info.Name] = ctor
	r.infos[info.Name] = info
	return nil
}

// Lookup returns a new instance of a pass given its name.
func (r *Registry) Lookup(name string) (Pass, bool) {
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Info returns the description of a registered pass.
func (r *Registry) Info(name string) (Info, bool) {
	info, ok := r.infos[name]
	return info, ok
}

// Names returns the sorted names of all the registered passes.
func (r *Registry) Names() []string {
	return sortedKeys(r.ctors)
}

// AtMost returns the sorted names of the passes with an optimization level
// lower or equal to a given level.
func (r *Registry) AtMost(level int) []string {
	var names []string
	for _, name := range r.Names() {
		if r.infos[name].OptLevel <= level {
			names = append(names, name)
		}
	}
	return names
}

// Sequential returns a sequence of registered passes given their names.
// All unknown names are reported.
func (r *Registry) Sequential(name string, level int, names ...string) (*Sequential, error) {
	var errs error
	passes := make([]Pass, 0, len(names))
	for _, passName := range names {
		p, ok := r.Lookup(passName)
		if !ok {
			errs = multierr.Append(errs, errors.Errorf("pass %q not registered", passName))
			continue
		}
		passes = append(passes, p)
	}
	if errs != nil {
		return nil, errs
	}
	return NewSequential(name, level, passes...), nil
}
