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

// Package scope provides lexical scopes mapping keys to values.
package scope

import (
	"fmt"
	"strings"

	"github.com/gx-org/tpc/base/ordered"
)

// Scope stores key,value pairs.
// A value is retrieved from its key by querying the scope and,
// if not found, its parents recursively.
// A scope never modifies its parents.
type Scope[K comparable, V any] struct {
	parent *Scope[K, V]
	local  *ordered.Map[K, V]
}

// New returns a new scope given a parent, which can be nil.
func New[K comparable, V any](parent *Scope[K, V]) *Scope[K, V] {
	return &Scope[K, V]{
		parent: parent,
		local:  ordered.NewMap[K, V](),
	}
}

// NewChild returns a new scope with the receiver as a parent.
func (s *Scope[K, V]) NewChild() *Scope[K, V] {
	return New(s)
}

// Define maps a key to a value in the local scope, shadowing any
// definition in the parents.
func (s *Scope[K, V]) Define(k K, v V) {
	s.local.Store(k, v)
}

// Find a key in the scope and its parents.
func (s *Scope[K, V]) Find(k K) (v V, ok bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok = cur.local.Load(k); ok {
			return
		}
	}
	return
}

// String returns a representation of the local scope for debugging.
func (s *Scope[K, V]) String() string {
	if s.local.Size() == 0 {
		return "empty"
	}
	var kvs []string
	for k, v := range s.local.Iter() {
		kvs = append(kvs, fmt.Sprintf("%v: %T:%v", k, v, v))
	}
	return strings.Join(kvs, "\n")
}
