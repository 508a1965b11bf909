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

package ordered_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/tpc/base/ordered"
)

type entry struct {
	k string
	v int
}

func collect(m *ordered.Map[string, int]) []entry {
	var all []entry
	for k, v := range m.Iter() {
		all = append(all, entry{k: k, v: v})
	}
	return all
}

func TestMap(t *testing.T) {
	tests := []struct {
		entries []entry
		deletes []string
		want    []entry
	}{
		{
			entries: []entry{{k: "a", v: 1}, {k: "b", v: 2}, {k: "c", v: 3}},
			want:    []entry{{k: "a", v: 1}, {k: "b", v: 2}, {k: "c", v: 3}},
		},
		{
			entries: []entry{{k: "a", v: 1}, {k: "b", v: 2}, {k: "a", v: 3}},
			want:    []entry{{k: "a", v: 3}, {k: "b", v: 2}},
		},
		{
			entries: []entry{{k: "a", v: 1}, {k: "b", v: 2}, {k: "c", v: 3}},
			deletes: []string{"b", "z"},
			want:    []entry{{k: "a", v: 1}, {k: "c", v: 3}},
		},
		{
			entries: []entry{{k: "a", v: 1}},
			deletes: []string{"a"},
		},
	}
	for ti, test := range tests {
		m := ordered.NewMap[string, int]()
		for _, entry := range test.entries {
			m.Store(entry.k, entry.v)
		}
		for _, k := range test.deletes {
			m.Delete(k)
		}
		if m.Size() != len(test.want) {
			t.Errorf("test %d: map has %d entries but want %d", ti, m.Size(), len(test.want))
			continue
		}
		got := collect(m.Clone())
		if !cmp.Equal(got, test.want, cmp.AllowUnexported(entry{})) {
			t.Errorf("test %d: got %v but want %v", ti, got, test.want)
		}
		var wantKeys []string
		var wantVals []int
		for _, e := range test.want {
			wantKeys = append(wantKeys, e.k)
			wantVals = append(wantVals, e.v)
		}
		if gotKeys := slices.Collect(m.Keys()); !cmp.Equal(gotKeys, wantKeys) {
			t.Errorf("test %d: got keys %v but want %v", ti, gotKeys, wantKeys)
		}
		if gotVals := slices.Collect(m.Values()); !cmp.Equal(gotVals, wantVals) {
			t.Errorf("test %d: got values %v but want %v", ti, gotVals, wantVals)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := ordered.NewMap[string, int]()
	m.Store("a", 1)
	c := m.Clone()
	c.Store("b", 2)
	c.Delete("a")
	if m.Size() != 1 || !m.Has("a") {
		t.Errorf("original map modified by its clone: %v", collect(m))
	}
	var nilMap *ordered.Map[string, int]
	if got := nilMap.Clone().Size(); got != 0 {
		t.Errorf("clone of a nil map has %d elements but want 0", got)
	}
}
