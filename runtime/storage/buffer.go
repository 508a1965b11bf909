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

// Package storage provides reference-counted buffers storing tensor data on devices.
package storage

import (
	"sync"
	"sync/atomic"

	"github.com/gx-org/tpc/runtime/device"
	"github.com/pkg/errors"
)

// ErrReleased is returned when a buffer is used after its storage has been freed.
var ErrReleased = errors.New("storage has been released")

// Buffer is a contiguous block of memory on a device.
//
// A buffer is shared between its holders through a reference count.
// A new buffer has a count of 1 owned by its creator.
// The memory is freed when the last reference is released.
// The reference count is safe for concurrent use.
type Buffer struct {
	refs atomic.Int64
	dev  device.Device

	mut  sync.Mutex
	data []byte
	free func()
}

// NewBuffer returns a buffer adopting existing memory.
// The free function, which can be nil, is called once when the last
// reference to the buffer is released.
func NewBuffer(dev device.Device, data []byte, free func()) *Buffer {
	buf := &Buffer{dev: dev, data: data, free: free}
	buf.refs.Store(1)
	return buf
}

// Device on which the buffer is stored.
func (buf *Buffer) Device() device.Device {
	return buf.dev
}

// Retain adds a reference to the buffer.
// Returns ErrReleased if the memory has already been freed.
func (buf *Buffer) Retain() error {
	for {
		n := buf.refs.Load()
		if n <= 0 {
			return errors.WithStack(ErrReleased)
		}
		if buf.refs.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// Release drops a reference to the buffer, freeing its memory if
// that reference was the last one.
func (buf *Buffer) Release() error {
	for {
		n := buf.refs.Load()
		if n <= 0 {
			return errors.WithStack(ErrReleased)
		}
		if !buf.refs.CompareAndSwap(n, n-1) {
			continue
		}
		if n == 1 {
			buf.release()
		}
		return nil
	}
}

func (buf *Buffer) release() {
	buf.mut.Lock()
	defer buf.mut.Unlock()
	buf.data = nil
	if buf.free != nil {
		buf.free()
		buf.free = nil
	}
}

// Refs returns the current number of references to the buffer.
func (buf *Buffer) Refs() int64 {
	return buf.refs.Load()
}

// Released returns true if the memory of the buffer has been freed.
func (buf *Buffer) Released() bool {
	return buf.refs.Load() <= 0
}

// Bytes returns the memory of the buffer.
// The slice must not be used after the caller released its reference.
func (buf *Buffer) Bytes() ([]byte, error) {
	buf.mut.Lock()
	defer buf.mut.Unlock()
	if buf.refs.Load() <= 0 {
		return nil, errors.WithStack(ErrReleased)
	}
	return buf.data, nil
}

// Size returns the size of the buffer in bytes.
// Returns 0 if the buffer has been released.
func (buf *Buffer) Size() int {
	buf.mut.Lock()
	defer buf.mut.Unlock()
	return len(buf.data)
}
