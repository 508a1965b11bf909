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
	"reflect"
)

type (
	// UnsupportedTypeError is returned when a host value cannot be converted to a value.
	UnsupportedTypeError struct {
		// Type of the host value. Nil if the host value is nil.
		Type reflect.Type
	}

	// ShapeError is returned when the shape or the layout of a tensor is invalid.
	ShapeError struct {
		Shape   []int
		Strides []int
		Msg     string
	}

	// DeviceError is returned when a device is unknown or cannot store a tensor.
	DeviceError struct {
		Device string
		Err    error
	}

	// InvalidHandleError is returned when a tensor is accessed after
	// its storage has been released.
	InvalidHandleError struct {
		Op  string
		Err error
	}
)

func (err *UnsupportedTypeError) Error() string {
	if err.Type == nil {
		return "cannot convert nil to a value"
	}
	return fmt.Sprintf("cannot convert a host value of type %s to a value: type not supported", err.Type.String())
}

func (err *ShapeError) Error() string {
	if err.Strides == nil {
		return fmt.Sprintf("invalid tensor shape %v: %s", err.Shape, err.Msg)
	}
	return fmt.Sprintf("invalid tensor shape %v with strides %v: %s", err.Shape, err.Strides, err.Msg)
}

func (err *DeviceError) Error() string {
	return fmt.Sprintf("device %q: %v", err.Device, err.Err)
}

// Unwrap returns the cause of the error.
func (err *DeviceError) Unwrap() error {
	return err.Err
}

func (err *InvalidHandleError) Error() string {
	return fmt.Sprintf("cannot call %s on a tensor: %v", err.Op, err.Err)
}

// Unwrap returns the cause of the error.
func (err *InvalidHandleError) Unwrap() error {
	return err.Err
}
