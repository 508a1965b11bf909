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

// Package sync provides typed wrappers around the standard sync package.
package sync

import (
	"iter"
	"sync"
)

// Map is a typed sync.Map. It is safe for concurrent use.
type Map[K comparable, V any] struct {
	m sync.Map
}

// Store a key,value pair.
func (sm *Map[K, V]) Store(k K, v V) {
	sm.m.Store(k, v)
}

// Load returns the value stored for a key.
func (sm *Map[K, V]) Load(k K) (V, bool) {
	vAny, ok := sm.m.Load(k)
	if !ok {
		var zero V
		return zero, false
	}
	return vAny.(V), true
}

// LoadAndDelete deletes the value for a key, returning the previous value if any.
func (sm *Map[K, V]) LoadAndDelete(k K) (V, bool) {
	vAny, ok := sm.m.LoadAndDelete(k)
	if !ok {
		var zero V
		return zero, false
	}
	return vAny.(V), true
}

// Iter returns an iterator over the key,value pairs.
// The order is unspecified.
func (sm *Map[K, V]) Iter() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		sm.m.Range(func(k, v any) bool {
			return yield(k.(K), v.(V))
		})
	}
}

// Size returns the number of elements in the map. This takes O(n) time.
func (sm *Map[K, V]) Size() (n int) {
	for range sm.Iter() {
		n++
	}
	return
}
