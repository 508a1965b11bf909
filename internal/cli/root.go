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

// Package cli implements the commands of the tpcpass tool.
package cli

import (
	"fmt"

	"github.com/gx-org/tpc/build/fmterr"
	"github.com/gx-org/tpc/pass"
	"github.com/gx-org/tpc/transforms"
	"github.com/spf13/cobra"
)

// NewRootCommand returns the root command of the tool.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tpcpass",
		Short:         "Inspect and run pass pipelines",
		Long:          "tpcpass lists the registered compiler passes and plans or runs pipelines described by configuration files.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newPassesCommand())
	cmd.AddCommand(newPlanCommand())
	cmd.AddCommand(newRunCommand())
	stack := false
	cmd.PersistentFlags().BoolVar(&stack, "stack", false, "print the stack trace of errors")
	for _, sub := range cmd.Commands() {
		reportStack(sub, &stack)
	}
	return cmd
}

// reportStack prints the stack trace of the errors returned by a command
// when the stack flag is set.
func reportStack(cmd *cobra.Command, stack *bool) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if err != nil && *stack {
			fmt.Fprintf(cmd.ErrOrStderr(), "%+v\n", fmterr.ToStackTraceError(err))
		}
		return err
	}
}

func newRegistry() (*pass.Registry, error) {
	reg := pass.NewRegistry()
	if err := transforms.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
