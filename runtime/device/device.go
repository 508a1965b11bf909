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

// Package device identifies the devices on which tensors are stored.
package device

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// Type of a device.
type Type string

// Device types known by the compiler.
const (
	CPU  Type = "cpu"
	CUDA Type = "cuda"
)

// Device is a device given its type and its ordinal.
type Device struct {
	Type Type
	ID   int
}

// Types returns all the known device types.
func Types() []Type {
	return []Type{CPU, CUDA}
}

// Known returns true if the device type is known.
func (t Type) Known() bool {
	switch t {
	case CPU, CUDA:
		return true
	}
	return false
}

var deviceRe = regexp.MustCompile(`^([a-z]+)(?:\((\d+)\))?$`)

// Parse a device from a string.
// The format is either `type` or `type(ordinal)`, for example `cpu` or `cuda(1)`.
// A missing ordinal defaults to 0.
func Parse(s string) (Device, error) {
	m := deviceRe.FindStringSubmatch(s)
	if m == nil {
		return Device{}, errors.Errorf("invalid device %q: expect type or type(ordinal)", s)
	}
	dev := Device{Type: Type(m[1])}
	if !dev.Type.Known() {
		return Device{}, errors.Errorf("unknown device type %q in %q", m[1], s)
	}
	if m[2] != "" {
		id, err := strconv.Atoi(m[2])
		if err != nil {
			return Device{}, errors.Wrapf(err, "invalid ordinal in device %q", s)
		}
		dev.ID = id
	}
	return dev, nil
}

// String representation of the device.
func (d Device) String() string {
	return fmt.Sprintf("%s(%d)", d.Type, d.ID)
}
