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

package values_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tpc/api/values"
	"github.com/gx-org/tpc/runtime/device"
	"github.com/gx-org/tpc/runtime/storage"
	"github.com/pkg/errors"
)

var cpu = device.Device{Type: device.CPU}

func TestAssembleRoundTrip(t *testing.T) {
	buf := storage.NewBuffer(cpu, make([]byte, 64), nil)
	defer buf.Release()
	tests := []struct {
		dims    []int
		dt      dtype.DataType
		dev     string
		options []values.AssembleOption
		strides []int
		offset  int
	}{
		{dims: []int{2, 3}, dt: dtype.Float32, dev: "cpu"},
		{dims: []int{}, dt: dtype.Int64, dev: "cpu(0)"},
		{
			dims:    []int{2, 3},
			dt:      dtype.Float32,
			dev:     "cpu",
			options: []values.AssembleOption{values.WithStrides([]int{1, 2}), values.WithData(buf), values.WithByteOffset(8)},
			strides: []int{1, 2},
			offset:  8,
		},
	}
	for i, test := range tests {
		tensor, err := values.AssembleTensor(test.dims, test.dt, test.dev, test.options...)
		if err != nil {
			t.Errorf("test %d: %+v", i, err)
			continue
		}
		shape, err := tensor.Shape()
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(test.dims, shape); diff != "" {
			t.Errorf("test %d: unexpected shape: %s", i, diff)
		}
		dt, err := tensor.DType()
		if err != nil {
			t.Fatal(err)
		}
		if dt != test.dt {
			t.Errorf("test %d: got data type %s but want %s", i, dt, test.dt)
		}
		dev, err := tensor.Device()
		if err != nil {
			t.Fatal(err)
		}
		if dev != cpu {
			t.Errorf("test %d: got device %s but want %s", i, dev, cpu)
		}
		strides, err := tensor.Strides()
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(test.strides, strides); diff != "" {
			t.Errorf("test %d: unexpected strides: %s", i, diff)
		}
		offset, err := tensor.ByteOffset()
		if err != nil {
			t.Fatal(err)
		}
		if offset != test.offset {
			t.Errorf("test %d: got byte offset %d but want %d", i, offset, test.offset)
		}
		if tensor.NDim() != len(test.dims) {
			t.Errorf("test %d: got %d axes but want %d", i, tensor.NDim(), len(test.dims))
		}
		if err := tensor.Release(); err != nil {
			t.Errorf("test %d: %v", i, err)
		}
	}
	if got := buf.Refs(); got != 1 {
		t.Errorf("tensors did not release their reference on the buffer: got %d references but want 1", got)
	}
}

func TestAssembleErrors(t *testing.T) {
	small := storage.NewBuffer(cpu, make([]byte, 8), nil)
	defer small.Release()
	cudaBuf := storage.NewBuffer(device.Device{Type: device.CUDA}, make([]byte, 8), nil)
	defer cudaBuf.Release()
	tests := []struct {
		dims    []int
		dev     string
		options []values.AssembleOption
		want    any
	}{
		{dims: []int{2}, dev: "tpu", want: &values.DeviceError{}},
		{dims: []int{2}, dev: "cuda(0)", want: &values.DeviceError{}},
		{dims: []int{2}, dev: "cpu", options: []values.AssembleOption{values.WithData(cudaBuf)}, want: &values.DeviceError{}},
		{dims: []int{2, 3}, dev: "cpu", options: []values.AssembleOption{values.WithStrides([]int{1})}, want: &values.ShapeError{}},
		{dims: []int{-1}, dev: "cpu", want: &values.ShapeError{}},
		{dims: []int{4}, dev: "cpu", options: []values.AssembleOption{values.WithData(small)}, want: &values.ShapeError{}},
		{dims: []int{1}, dev: "cpu", options: []values.AssembleOption{values.WithData(small), values.WithByteOffset(6)}, want: &values.ShapeError{}},
	}
	for i, test := range tests {
		_, err := values.AssembleTensor(test.dims, dtype.Float32, test.dev, test.options...)
		if err == nil {
			t.Errorf("test %d: expected an error but got nil", i)
			continue
		}
		switch test.want.(type) {
		case *values.DeviceError:
			var target *values.DeviceError
			if !errors.As(err, &target) {
				t.Errorf("test %d: got %v but want a DeviceError", i, err)
			}
		case *values.ShapeError:
			var target *values.ShapeError
			if !errors.As(err, &target) {
				t.Errorf("test %d: got %v but want a ShapeError", i, err)
			}
		}
	}
	if got := small.Refs(); got != 1 {
		t.Errorf("failed assembly leaked a reference: got %d references but want 1", got)
	}
}

func TestAliasing(t *testing.T) {
	buf := storage.NewBuffer(cpu, make([]byte, 16), nil)
	tensor, err := values.AssembleTensor([]int{4}, dtype.Float32, "cpu", values.WithData(buf))
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := buf.Bytes()
	raw[0] = 0xff
	data, err := tensor.Data()
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != 0xff {
		t.Errorf("tensor does not alias its data")
	}
	// The tensor keeps the storage alive after the original holder released it.
	if err := buf.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := tensor.Data(); err != nil {
		t.Errorf("storage freed while the tensor holds a reference: %v", err)
	}
	if err := tensor.Release(); err != nil {
		t.Fatal(err)
	}
	if !buf.Released() {
		t.Errorf("storage not freed after the last reference has been released")
	}
}

func TestReleasedTensor(t *testing.T) {
	tensor, err := values.AssembleTensor([]int{2}, dtype.Int32, "cpu")
	if err != nil {
		t.Fatal(err)
	}
	if err := tensor.Release(); err != nil {
		t.Fatal(err)
	}
	if err := tensor.Release(); err != nil {
		t.Errorf("second release: %v", err)
	}
	checks := map[string]func() error{
		"DType":      func() error { _, err := tensor.DType(); return err },
		"Shape":      func() error { _, err := tensor.Shape(); return err },
		"Strides":    func() error { _, err := tensor.Strides(); return err },
		"Device":     func() error { _, err := tensor.Device(); return err },
		"ByteOffset": func() error { _, err := tensor.ByteOffset(); return err },
		"Data":       func() error { _, err := tensor.Data(); return err },
	}
	for name, check := range checks {
		err := check()
		var invalid *values.InvalidHandleError
		if !errors.As(err, &invalid) {
			t.Errorf("%s: got %v but want an InvalidHandleError", name, err)
			continue
		}
		if !errors.Is(err, storage.ErrReleased) {
			t.Errorf("%s: error %v does not wrap %v", name, err, storage.ErrReleased)
		}
	}
	if got, want := tensor.String(), "tensor<released>"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	if got, want := tensor.Type().String(), "[2]int32"; got != want {
		t.Errorf("got type %q but want %q", got, want)
	}
}

type externalTensor struct {
	buf     *storage.Buffer
	shape   []int
	strides []int
}

func (e externalTensor) Buffer() *storage.Buffer { return e.buf }
func (e externalTensor) DType() dtype.DataType   { return dtype.Int32 }
func (e externalTensor) Shape() []int            { return e.shape }
func (e externalTensor) Strides() []int          { return e.strides }
func (e externalTensor) ByteOffset() int         { return 0 }
func (e externalTensor) Device() device.Device   { return cpu }

func TestTensorFromExternal(t *testing.T) {
	freed := false
	ext := externalTensor{
		buf:   storage.NewBuffer(cpu, []byte{1, 0, 0, 0, 2, 0, 0, 0}, func() { freed = true }),
		shape: []int{2},
	}
	tensor, err := values.TensorFromExternal(ext)
	if err != nil {
		t.Fatal(err)
	}
	if got := ext.buf.Refs(); got != 2 {
		t.Errorf("got %d references but want 2", got)
	}
	got, err := values.ToHostSlice[int32](tensor)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int32{1, 2}, got); diff != "" {
		t.Errorf("unexpected data: %s", diff)
	}
	if err := ext.buf.Release(); err != nil {
		t.Fatal(err)
	}
	if freed {
		t.Errorf("external buffer freed while the tensor holds a reference")
	}
	if err := tensor.Release(); err != nil {
		t.Fatal(err)
	}
	if !freed {
		t.Errorf("external buffer not freed after the last reference has been released")
	}
}

func TestTensorFromSlice(t *testing.T) {
	tensor, err := values.TensorFromSlice(cpu, []float64{1, 2, 3, 4, 5, 6}, []int{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	defer tensor.Release()
	if got, want := tensor.String(), "tensor<[2][3]float64>@cpu(0)"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	got, err := values.ToHostSlice[float64](tensor)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{1, 2, 3, 4, 5, 6}, got); diff != "" {
		t.Errorf("unexpected data: %s", diff)
	}
	if _, err := values.ToHostSlice[float32](tensor); err == nil {
		t.Errorf("expected an error when reading float64 data as float32")
	}
	if _, err := values.TensorFromSlice(cpu, []float64{1}, []int{2}); err == nil {
		t.Errorf("expected an error when the number of values does not match the shape")
	}
	tt := tensor.ToTensorType()
	if got, want := tt.Type().String(), "[2][3]float64"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
}
