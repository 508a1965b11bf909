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

package values

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/tpc/build/ir"
	"github.com/gx-org/tpc/build/ir/irkind"
	"github.com/gx-org/tpc/runtime/device"
	"github.com/gx-org/tpc/runtime/storage"
	"github.com/pkg/errors"
)

type (
	// Tensor is a multi-dimensional array stored on a device.
	//
	// A tensor holds a reference on its storage buffer. The reference
	// is dropped by Release: all accessors then fail with an InvalidHandleError.
	Tensor struct {
		released atomic.Bool

		buf     *storage.Buffer
		dt      dtype.DataType
		shape   []int
		strides []int
		offset  int
		dev     device.Device
	}

	// TensorType is the type of a tensor as a value. It has no storage.
	TensorType struct {
		typ *ir.TensorType
	}

	// ExternalTensor describes a buffer owned outside of the compiler.
	ExternalTensor interface {
		// Buffer storing the data.
		Buffer() *storage.Buffer
		// DType is the element type.
		DType() dtype.DataType
		// Shape of the tensor.
		Shape() []int
		// Strides of the tensor in number of elements. Nil for a row-major layout.
		Strides() []int
		// ByteOffset of the first element in the buffer.
		ByteOffset() int
		// Device storing the buffer.
		Device() device.Device
	}

	assembleOptions struct {
		strides []int
		data    *storage.Buffer
		offset  int
		alloc   storage.Allocator
	}

	// AssembleOption configures the assembly of a tensor.
	AssembleOption func(*assembleOptions)
)

// WithStrides sets the strides, in number of elements, of a tensor.
func WithStrides(strides []int) AssembleOption {
	return func(opts *assembleOptions) {
		opts.strides = slices.Clone(strides)
	}
}

// WithData sets the buffer storing the data of a tensor.
// The buffer is not copied: the tensor shares it.
func WithData(buf *storage.Buffer) AssembleOption {
	return func(opts *assembleOptions) {
		opts.data = buf
	}
}

// WithByteOffset sets the position of the first element of a tensor in its buffer.
func WithByteOffset(offset int) AssembleOption {
	return func(opts *assembleOptions) {
		opts.offset = offset
	}
}

// WithAllocator sets the allocator used when no data is given.
// By default, the allocator registered for the device type is used.
func WithAllocator(alloc storage.Allocator) AssembleOption {
	return func(opts *assembleOptions) {
		opts.alloc = alloc
	}
}

// extent returns the number of elements between the first and the last
// element of a tensor, both included.
func extent(dims, strides []int) int {
	if slices.Contains(dims, 0) {
		return 0
	}
	if strides == nil {
		size := 1
		for _, dim := range dims {
			size *= dim
		}
		return size
	}
	last := 0
	for i, dim := range dims {
		last += (dim - 1) * strides[i]
	}
	return last + 1
}

// AssembleTensor returns a new tensor on a device.
// If no data is given, a new zeroed buffer is allocated on the device.
// Otherwise, the tensor aliases the data.
func AssembleTensor(dims []int, dt dtype.DataType, dev string, options ...AssembleOption) (*Tensor, error) {
	opts := assembleOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	parsed, err := device.Parse(dev)
	if err != nil {
		return nil, &DeviceError{Device: dev, Err: err}
	}
	if !irkind.FromDType(dt).IsDataType() {
		return nil, errors.Errorf("invalid tensor data type %s", dt.String())
	}
	for _, dim := range dims {
		if dim < 0 {
			return nil, &ShapeError{Shape: dims, Strides: opts.strides, Msg: "negative axis length"}
		}
	}
	if opts.strides != nil && len(opts.strides) != len(dims) {
		return nil, &ShapeError{
			Shape:   dims,
			Strides: opts.strides,
			Msg:     fmt.Sprintf("got %d strides for %d axes", len(opts.strides), len(dims)),
		}
	}
	for _, stride := range opts.strides {
		if stride < 0 {
			return nil, &ShapeError{Shape: dims, Strides: opts.strides, Msg: "negative stride"}
		}
	}
	if opts.offset < 0 {
		return nil, &ShapeError{Shape: dims, Strides: opts.strides, Msg: fmt.Sprintf("negative byte offset %d", opts.offset)}
	}
	t := &Tensor{
		dt:      dt,
		shape:   slices.Clone(dims),
		strides: opts.strides,
		offset:  opts.offset,
		dev:     parsed,
	}
	if opts.data == nil {
		t.buf, err = allocate(parsed, &opts, &shape.Shape{DType: dt, AxisLengths: t.shape})
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	if opts.data.Device() != parsed {
		return nil, &DeviceError{
			Device: dev,
			Err:    errors.Errorf("data is stored on %s", opts.data.Device()),
		}
	}
	if err := opts.data.Retain(); err != nil {
		return nil, &InvalidHandleError{Op: "AssembleTensor", Err: err}
	}
	required := opts.offset + extent(dims, opts.strides)*dtype.Sizeof(dt)
	if got := opts.data.Size(); got < required {
		opts.data.Release()
		return nil, &ShapeError{
			Shape:   dims,
			Strides: opts.strides,
			Msg:     fmt.Sprintf("buffer of %d bytes too small: require %d bytes", got, required),
		}
	}
	t.buf = opts.data
	return t, nil
}

func allocate(dev device.Device, opts *assembleOptions, sh *shape.Shape) (*storage.Buffer, error) {
	alloc := opts.alloc
	if alloc == nil {
		var err error
		alloc, err = storage.ForDevice(dev)
		if err != nil {
			return nil, &DeviceError{Device: dev.String(), Err: err}
		}
	}
	buf, err := alloc.Allocate(dev, sh)
	if err != nil {
		return nil, &DeviceError{Device: dev.String(), Err: err}
	}
	return buf, nil
}

// TensorFromExternal returns a tensor sharing the buffer of an external tensor.
// No data is copied.
func TensorFromExternal(ext ExternalTensor) (*Tensor, error) {
	buf := ext.Buffer()
	if buf == nil {
		return nil, errors.Errorf("external tensor has no buffer")
	}
	opts := []AssembleOption{
		WithData(buf),
		WithByteOffset(ext.ByteOffset()),
	}
	if strides := ext.Strides(); strides != nil {
		opts = append(opts, WithStrides(strides))
	}
	return AssembleTensor(ext.Shape(), ext.DType(), ext.Device().String(), opts...)
}

// TensorFromSlice returns a new tensor on a device storing Go values.
func TensorFromSlice[T dtype.GoDataType](dev device.Device, vals []T, dims []int) (*Tensor, error) {
	dt := dtype.Generic[T]()
	want := 1
	for _, dim := range dims {
		want *= dim
	}
	if len(vals) != want {
		return nil, &ShapeError{Shape: dims, Msg: fmt.Sprintf("got %d values but require %d", len(vals), want)}
	}
	t, err := AssembleTensor(dims, dt, dev.String())
	if err != nil {
		return nil, err
	}
	data, err := t.buf.Bytes()
	if err != nil {
		return nil, err
	}
	copy(dtype.ToSlice[T](data), vals)
	return t, nil
}

func (*Tensor) value() {}

func (t *Tensor) check(op string) error {
	if t.released.Load() {
		return &InvalidHandleError{Op: op, Err: errors.WithStack(storage.ErrReleased)}
	}
	if t.buf.Released() {
		return &InvalidHandleError{Op: op, Err: errors.WithStack(storage.ErrReleased)}
	}
	return nil
}

// DType returns the element type of the tensor.
func (t *Tensor) DType() (dtype.DataType, error) {
	if err := t.check("DType"); err != nil {
		return dtype.Invalid, err
	}
	return t.dt, nil
}

// Shape returns a copy of the axis lengths of the tensor.
func (t *Tensor) Shape() ([]int, error) {
	if err := t.check("Shape"); err != nil {
		return nil, err
	}
	return slices.Clone(t.shape), nil
}

// Strides returns a copy of the strides of the tensor, or nil for a row-major layout.
func (t *Tensor) Strides() ([]int, error) {
	if err := t.check("Strides"); err != nil {
		return nil, err
	}
	return slices.Clone(t.strides), nil
}

// Device returns the device on which the tensor is stored.
func (t *Tensor) Device() (device.Device, error) {
	if err := t.check("Device"); err != nil {
		return device.Device{}, err
	}
	return t.dev, nil
}

// ByteOffset returns the position of the first element in the buffer.
func (t *Tensor) ByteOffset() (int, error) {
	if err := t.check("ByteOffset"); err != nil {
		return 0, err
	}
	return t.offset, nil
}

// Data returns the raw bytes of the tensor starting at its byte offset.
// The slice must not be used after the tensor has been released.
func (t *Tensor) Data() ([]byte, error) {
	if err := t.check("Data"); err != nil {
		return nil, err
	}
	data, err := t.buf.Bytes()
	if err != nil {
		return nil, &InvalidHandleError{Op: "Data", Err: err}
	}
	return data[t.offset:], nil
}

// Buffer returns the storage of the tensor.
func (t *Tensor) Buffer() (*storage.Buffer, error) {
	if err := t.check("Buffer"); err != nil {
		return nil, err
	}
	return t.buf, nil
}

// NDim returns the number of axes of the tensor.
func (t *Tensor) NDim() int {
	return len(t.shape)
}

// Release drops the reference of the tensor on its storage.
// Calling Release more than once has no effect.
func (t *Tensor) Release() error {
	if !t.released.CompareAndSwap(false, true) {
		return nil
	}
	return t.buf.Release()
}

// ToTensorType returns the type of the tensor as a value.
func (t *Tensor) ToTensorType() *TensorType {
	return &TensorType{typ: ir.NewTensorType(t.dt, t.shape)}
}

// Type of the value.
// The type remains available after the tensor has been released.
func (t *Tensor) Type() ir.Type {
	return ir.NewTensorType(t.dt, t.shape)
}

// String representation of the value.
func (t *Tensor) String() string {
	if err := t.check("String"); err != nil {
		return "tensor<released>"
	}
	return fmt.Sprintf("tensor<%s>@%s", t.Type().String(), t.dev.String())
}

// ToHostSlice returns a copy of the elements of a tensor stored on the host.
// The tensor must be stored with a row-major layout.
func ToHostSlice[T dtype.GoDataType](t *Tensor) ([]T, error) {
	if err := t.check("ToHostSlice"); err != nil {
		return nil, err
	}
	if want := dtype.Generic[T](); t.dt != want {
		return nil, errors.Errorf("cannot read a tensor of %s as a slice of %s", t.dt.String(), want.String())
	}
	if t.dev.Type != device.CPU {
		return nil, &DeviceError{Device: t.dev.String(), Err: errors.Errorf("tensor is not stored on the host")}
	}
	if !t.rowMajor() {
		return nil, &ShapeError{Shape: t.shape, Strides: t.strides, Msg: "tensor layout is not row-major"}
	}
	data, err := t.Data()
	if err != nil {
		return nil, err
	}
	size := extent(t.shape, nil) * dtype.Sizeof(t.dt)
	return slices.Clone(dtype.ToSlice[T](data[:size])), nil
}

func (t *Tensor) rowMajor() bool {
	if t.strides == nil {
		return true
	}
	want := 1
	for i := len(t.shape) - 1; i >= 0; i-- {
		if t.shape[i] != 1 && t.strides[i] != want {
			return false
		}
		want *= t.shape[i]
	}
	return true
}

// NewTensorType returns the type of a tensor as a value.
func NewTensorType(dt dtype.DataType, dims []int) *TensorType {
	return &TensorType{typ: ir.NewTensorType(dt, dims)}
}

func (*TensorType) value() {}

// DType returns the element type.
func (t *TensorType) DType() dtype.DataType { return t.typ.DType }

// Shape returns a copy of the axis lengths.
func (t *TensorType) Shape() []int { return slices.Clone(t.typ.Shape) }

// Type of the value.
func (t *TensorType) Type() ir.Type { return t.typ }

// String representation of the value.
func (t *TensorType) String() string {
	return "type<" + t.typ.String() + ">"
}
