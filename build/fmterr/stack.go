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

package fmterr

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// StackTrace returns the stack trace of the first error in the chain
// carrying one.
func StackTrace(err error) (errors.StackTrace, bool) {
	var st stackTracer
	if !errors.As(err, &st) {
		return nil, false
	}
	return st.StackTrace(), true
}

// Format writes an error into the state of a formatter.
// The verbose flag (%+v) appends the stack trace returned by StackTrace.
func Format(err error, s fmt.State, verb rune) {
	switch verb {
	case 'v', 'w':
		io.WriteString(s, err.Error())
		if !s.Flag('+') {
			return
		}
		if st, ok := StackTrace(err); ok {
			fmt.Fprintf(s, "\nError generated at:%+v\n", st)
		}
	case 's':
		io.WriteString(s, err.Error())
	case 'q':
		fmt.Fprintf(s, "%q", err.Error())
	}
}

type tracedError struct {
	err error
}

// ToStackTraceError returns an error printing a stack trace with %+v.
// The stack trace already recorded in the error chain is used if any.
// Otherwise, the stack of the caller is recorded.
func ToStackTraceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := StackTrace(err); !ok {
		err = errors.WithStack(err)
	}
	return tracedError{err: err}
}

func (err tracedError) Unwrap() error {
	return err.err
}

func (err tracedError) Format(s fmt.State, verb rune) {
	Format(err, s, verb)
}

func (err tracedError) Error() string {
	return err.err.Error()
}
