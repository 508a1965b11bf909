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

package storage

import (
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/tpc/base/sync"
	"github.com/gx-org/tpc/runtime/device"
	"github.com/pkg/errors"
)

type (
	// Allocator allocates buffers on devices.
	Allocator interface {
		// Allocate a zeroed buffer large enough to store an array of a given shape.
		Allocate(dev device.Device, sh *shape.Shape) (*Buffer, error)
	}

	// hostAllocator allocates memory managed by the Go runtime.
	hostAllocator struct{}
)

var (
	_ Allocator = hostAllocator{}

	allocators sync.Map[device.Type, Allocator]
)

func init() {
	Register(device.CPU, Host())
}

// Host returns an allocator allocating memory on the host using Go.
func Host() Allocator {
	return hostAllocator{}
}

// ByteSize returns the number of bytes required to store an array of a given shape.
func ByteSize(sh *shape.Shape) (int, error) {
	if sh.DType <= dtype.Invalid || sh.DType >= dtype.MaxDataType {
		return 0, errors.Errorf("cannot compute the size of data type %s", sh.DType.String())
	}
	size := dtype.Sizeof(sh.DType)
	for _, dim := range sh.AxisLengths {
		if dim < 0 {
			return 0, errors.Errorf("invalid negative axis length in %v", sh.AxisLengths)
		}
	}
	return sh.Size() * size, nil
}

// Allocate a zeroed buffer on the host.
func (hostAllocator) Allocate(dev device.Device, sh *shape.Shape) (*Buffer, error) {
	if dev.Type != device.CPU {
		return nil, errors.Errorf("host allocator cannot allocate memory on device %s", dev)
	}
	size, err := ByteSize(sh)
	if err != nil {
		return nil, err
	}
	return NewBuffer(dev, make([]byte, size), nil), nil
}

// Register an allocator for a device type, replacing any previous allocator.
func Register(t device.Type, alloc Allocator) {
	allocators.Store(t, alloc)
}

// ForDevice returns the allocator registered for the type of a device.
func ForDevice(dev device.Device) (Allocator, error) {
	alloc, ok := allocators.Load(dev.Type)
	if !ok {
		return nil, errors.Errorf("no allocator registered for device %s", dev)
	}
	return alloc, nil
}
