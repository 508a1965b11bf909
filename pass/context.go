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
	"slices"
	"sync/atomic"

	"github.com/gx-org/tpc/runtime/device"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// DefaultOptLevel is the optimization level of a context created without WithOptLevel.
const DefaultOptLevel = 2

type (
	// Context configures a pipeline run.
	// A context is read by passes but never modified by them.
	// A context can only be active in one run at a time.
	Context struct {
		optLevel    int
		disabled    map[string]bool
		required    map[string]bool
		config      map[string]any
		dev         *device.Device
		instruments []Instrument

		active atomic.Bool
	}

	// Option configures a context.
	Option func(*Context)
)

// NewContext returns a new pass context.
func NewContext(opts ...Option) *Context {
	pc := &Context{
		optLevel: DefaultOptLevel,
		disabled: make(map[string]bool),
		required: make(map[string]bool),
		config:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(pc)
	}
	return pc
}

// WithOptLevel sets the optimization level.
func WithOptLevel(level int) Option {
	return func(pc *Context) {
		pc.optLevel = level
	}
}

// WithDisabled adds passes to the disabled set.
func WithDisabled(names ...string) Option {
	return func(pc *Context) {
		for _, name := range names {
			pc.disabled[name] = true
		}
	}
}

// WithRequired adds passes to the required set.
// A required pass runs even if it is disabled.
func WithRequired(names ...string) Option {
	return func(pc *Context) {
		for _, name := range names {
			pc.required[name] = true
		}
	}
}

// WithConfig sets a configuration value read by passes.
func WithConfig(key string, val any) Option {
	return func(pc *Context) {
		pc.config[key] = val
	}
}

// WithDevice sets the target device.
func WithDevice(dev device.Device) Option {
	return func(pc *Context) {
		pc.dev = &dev
	}
}

// WithInstruments adds instruments called before and after every pass.
func WithInstruments(instrs ...Instrument) Option {
	return func(pc *Context) {
		pc.instruments = append(pc.instruments, instrs...)
	}
}

// OptLevel returns the optimization level.
func (pc *Context) OptLevel() int {
	return pc.optLevel
}

// Disabled returns the sorted names of the disabled passes.
func (pc *Context) Disabled() []string {
	return sortedKeys(pc.disabled)
}

// Required returns the sorted names of the required passes.
func (pc *Context) Required() []string {
	return sortedKeys(pc.required)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// Device returns the target device, if any.
func (pc *Context) Device() (device.Device, bool) {
	if pc.dev == nil {
		return device.Device{}, false
	}
	return *pc.dev, true
}

// Instruments returns the instruments of the context.
func (pc *Context) Instruments() []Instrument {
	return slices.Clone(pc.instruments)
}

// Config returns a configuration value.
func (pc *Context) Config(key string) (any, bool) {
	val, ok := pc.config[key]
	return val, ok
}

// ConfigValue returns a configuration value of a given type.
// The default value is returned if the key is not set.
func ConfigValue[T any](pc *Context, key string, def T) (T, error) {
	val, ok := pc.config[key]
	if !ok {
		return def, nil
	}
	valT, ok := val.(T)
	if !ok {
		return def, errors.Errorf("configuration %q has type %T but want %T", key, val, def)
	}
	return valT, nil
}

// Admits returns true if a pass runs given the context.
// A disabled pass is skipped unless it is also required.
// Otherwise, a pass is skipped if its level exceeds the level of the context.
func (pc *Context) Admits(info Info) bool {
	if pc.disabled[info.Name] && !pc.required[info.Name] {
		return false
	}
	return info.OptLevel <= pc.optLevel
}

// Clone returns an inactive copy of the context.
func (pc *Context) Clone() *Context {
	c := &Context{
		optLevel:    pc.optLevel,
		disabled:    maps.Clone(pc.disabled),
		required:    maps.Clone(pc.required),
		config:      maps.Clone(pc.config),
		instruments: slices.Clone(pc.instruments),
	}
	if pc.dev != nil {
		dev := *pc.dev
		c.dev = &dev
	}
	return c
}

// With returns an inactive copy of the context with additional options.
func (pc *Context) With(opts ...Option) *Context {
	c := pc.Clone()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enter activates the context for a run.
// It returns an error if the context is already active.
func (pc *Context) Enter() error {
	if !pc.active.CompareAndSwap(false, true) {
		return errors.Errorf("pass context already active in another run")
	}
	return nil
}

// Exit deactivates the context.
func (pc *Context) Exit() {
	pc.active.Store(false)
}

// Active returns true if the context is used by a run.
func (pc *Context) Active() bool {
	return pc.active.Load()
}
