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
	"fmt"
	"sync"

	"github.com/gx-org/tpc/build/ir"
)

// Instrument is called before and after every admitted pass.
type Instrument interface {
	BeforePass(info Info, mod *ir.Module)
	AfterPass(info Info, mod *ir.Module)
}

// Trace is an instrument recording the passes that ran.
type Trace struct {
	mut    sync.Mutex
	events []string
}

var _ Instrument = (*Trace)(nil)

// BeforePass records the start of a pass.
func (t *Trace) BeforePass(info Info, mod *ir.Module) {
	t.record("before", info, mod)
}

// AfterPass records the end of a pass.
func (t *Trace) AfterPass(info Info, mod *ir.Module) {
	t.record("after", info, mod)
}

func (t *Trace) record(event string, info Info, mod *ir.Module) {
	t.mut.Lock()
	defer t.mut.Unlock()
	t.events = append(t.events, fmt.Sprintf("%s %s (%d functions)", event, info.Name, mod.Len()))
}

// Events returns the recorded events in order.
func (t *Trace) Events() []string {
	t.mut.Lock()
	defer t.mut.Unlock()
	return append([]string(nil), t.events...)
}
