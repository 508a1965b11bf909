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

package storage_test

import (
	gosync "sync"
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/tpc/runtime/device"
	"github.com/gx-org/tpc/runtime/storage"
	"github.com/pkg/errors"
)

var cpu = device.Device{Type: device.CPU}

func TestHostAllocate(t *testing.T) {
	alloc, err := storage.ForDevice(cpu)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := alloc.Allocate(cpu, &shape.Shape{DType: dtype.Float32, AxisLengths: []int{2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := buf.Size(), 24; got != want {
		t.Errorf("got buffer of size %d but want %d", got, want)
	}
	if buf.Device() != cpu {
		t.Errorf("got device %v but want %v", buf.Device(), cpu)
	}
	if _, err := alloc.Allocate(device.Device{Type: device.CUDA}, &shape.Shape{DType: dtype.Float32}); err == nil {
		t.Errorf("expected an error when allocating on cuda with the host allocator")
	}
}

func TestNoAllocator(t *testing.T) {
	if _, err := storage.ForDevice(device.Device{Type: device.CUDA, ID: 1}); err == nil {
		t.Errorf("expected an error: no allocator is registered for cuda")
	}
}

func TestByteSize(t *testing.T) {
	size, err := storage.ByteSize(&shape.Shape{DType: dtype.Int64, AxisLengths: []int{4}})
	if err != nil {
		t.Fatal(err)
	}
	if size != 32 {
		t.Errorf("got %d but want 32", size)
	}
	if _, err := storage.ByteSize(&shape.Shape{DType: dtype.Int64, AxisLengths: []int{-1}}); err == nil {
		t.Errorf("expected an error for a negative axis length")
	}
	if _, err := storage.ByteSize(&shape.Shape{DType: dtype.Invalid}); err == nil {
		t.Errorf("expected an error for an invalid data type")
	}
}

func TestRefCount(t *testing.T) {
	freed := 0
	buf := storage.NewBuffer(cpu, make([]byte, 8), func() { freed++ })
	if err := buf.Retain(); err != nil {
		t.Fatal(err)
	}
	if got := buf.Refs(); got != 2 {
		t.Errorf("got %d references but want 2", got)
	}
	if err := buf.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := buf.Bytes(); err != nil {
		t.Errorf("buffer freed while a reference remains: %v", err)
	}
	if err := buf.Release(); err != nil {
		t.Fatal(err)
	}
	if freed != 1 {
		t.Errorf("free called %d times but want 1", freed)
	}
	if !buf.Released() {
		t.Errorf("buffer not released after its last reference has been dropped")
	}
	if _, err := buf.Bytes(); !errors.Is(err, storage.ErrReleased) {
		t.Errorf("got error %v but want %v", err, storage.ErrReleased)
	}
	if err := buf.Retain(); !errors.Is(err, storage.ErrReleased) {
		t.Errorf("retaining a released buffer: got %v but want %v", err, storage.ErrReleased)
	}
	if err := buf.Release(); !errors.Is(err, storage.ErrReleased) {
		t.Errorf("releasing a released buffer: got %v but want %v", err, storage.ErrReleased)
	}
}

func TestConcurrentRefCount(t *testing.T) {
	buf := storage.NewBuffer(cpu, make([]byte, 8), nil)
	const n = 32
	var wg gosync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := buf.Retain(); err != nil {
				t.Error(err)
				return
			}
			if err := buf.Release(); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if got := buf.Refs(); got != 1 {
		t.Errorf("got %d references but want 1", got)
	}
}
