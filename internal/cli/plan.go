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

package cli

import (
	"fmt"

	"github.com/gx-org/tpc/config"
	"github.com/gx-org/tpc/pass"
	"github.com/spf13/cobra"
)

// overrides are command line options changing a configuration file.
type overrides struct {
	level    int
	device   string
	disabled []string
	required []string
}

func (o *overrides) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.level, "opt-level", -1, "override the optimization level of the configuration")
	cmd.Flags().StringVar(&o.device, "device", "", "override the target device of the configuration")
	cmd.Flags().StringSliceVar(&o.disabled, "disable", nil, "comma-separated list of passes to disable")
	cmd.Flags().StringSliceVar(&o.required, "require", nil, "comma-separated list of passes to require")
}

// load a configuration file, applies the overrides, and builds the pipeline.
func (o *overrides) load(path string) (*pass.Context, *pass.Sequential, error) {
	file, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if o.level >= 0 {
		level := o.level
		file.OptLevel = &level
	}
	if o.device != "" {
		file.Device = o.device
	}
	file.Disabled = append(file.Disabled, o.disabled...)
	file.Required = append(file.Required, o.required...)
	if err := file.Validate(); err != nil {
		return nil, nil, err
	}
	reg, err := newRegistry()
	if err != nil {
		return nil, nil, err
	}
	return file.Build(reg)
}

func newPlanCommand() *cobra.Command {
	o := &overrides{}
	cmd := &cobra.Command{
		Use:   "plan CONFIG",
		Short: "Print the passes a pipeline would run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, seq, err := o.load(args[0])
			if err != nil {
				return err
			}
			for _, name := range pass.Plan(pc, seq) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	o.register(cmd)
	return cmd
}
