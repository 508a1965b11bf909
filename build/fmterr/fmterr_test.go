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

package fmterr_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gx-org/tpc/build/fmterr"
	"github.com/pkg/errors"
)

type loc string

func (l loc) String() string { return string(l) }

var errBase = errors.New("base error")

func TestAt(t *testing.T) {
	err := fmterr.At(loc("@main"), errBase)
	if got, want := err.Error(), "@main: base error"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	if !errors.Is(err, errBase) {
		t.Errorf("errors.Is(%v, %v) = false, want true", err, errBase)
	}
	var at fmterr.ErrorAt
	wrapped := errors.Wrap(err, "context")
	if !errors.As(wrapped, &at) {
		t.Fatalf("cannot find the location in %v", wrapped)
	}
	if got := at.Loc().String(); got != "@main" {
		t.Errorf("got location %q but want %q", got, "@main")
	}
}

func TestPrefixWith(t *testing.T) {
	err := fmterr.PrefixWith("pass %s: ", "FoldConstant")(errBase)
	if got, want := err.Error(), "pass FoldConstant: base error"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	if !errors.Is(err, errBase) {
		t.Errorf("prefixed error does not wrap its cause")
	}
}

func TestVerboseFormat(t *testing.T) {
	err := fmterr.ToStackTraceError(errors.Errorf("with stack"))
	short := fmt.Sprintf("%v", err)
	if short != "with stack" {
		t.Errorf("got %q but want %q", short, "with stack")
	}
	long := fmt.Sprintf("%+v", err)
	if !strings.Contains(long, "Error generated at:") {
		t.Errorf("verbose format does not contain a stack trace:\n%s", long)
	}
	if fmterr.ToStackTraceError(nil) != nil {
		t.Errorf("ToStackTraceError(nil) != nil")
	}
}

type plainError struct{}

func (plainError) Error() string { return "plain" }

func TestStackTraceRecorded(t *testing.T) {
	if _, ok := fmterr.StackTrace(plainError{}); ok {
		t.Fatalf("found a stack trace in an error without one")
	}
	err := fmterr.ToStackTraceError(plainError{})
	if _, ok := fmterr.StackTrace(err); !ok {
		t.Errorf("no stack trace recorded for %v", err)
	}
	if !errors.Is(err, plainError{}) {
		t.Errorf("traced error does not wrap its cause")
	}
	long := fmt.Sprintf("%+v", err)
	if !strings.HasPrefix(long, "plain\nError generated at:") {
		t.Errorf("unexpected verbose format:\n%s", long)
	}
}

func TestInternal(t *testing.T) {
	err := fmterr.Internalf("unexpected node %d", 3)
	if !strings.Contains(err.Error(), "internal error") || !strings.Contains(err.Error(), "unexpected node 3") {
		t.Errorf("unexpected internal error message: %q", err.Error())
	}
}
