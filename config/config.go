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

// Package config loads pipeline configuration files.
//
// A configuration file is written in YAML or CUE. It is validated against
// a CUE schema before building the pass context and the pipeline.
package config

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/gx-org/tpc/pass"
	"github.com/gx-org/tpc/runtime/device"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schema string

type (
	// File is the content of a configuration file.
	File struct {
		// OptLevel is the optimization level of the pass context.
		// The default level is used if nil.
		OptLevel *int           `yaml:"opt_level" json:"opt_level,omitempty"`
		Device   string         `yaml:"device" json:"device,omitempty"`
		Disabled []string       `yaml:"disabled_pass" json:"disabled_pass,omitempty"`
		Required []string       `yaml:"required_pass" json:"required_pass,omitempty"`
		Config   map[string]any `yaml:"config" json:"config,omitempty"`
		Pipeline Pipeline       `yaml:"pipeline" json:"pipeline"`
	}

	// Pipeline is a sequence of registered passes.
	Pipeline struct {
		Name     string   `yaml:"name" json:"name,omitempty"`
		OptLevel int      `yaml:"opt_level" json:"opt_level,omitempty"`
		Passes   []string `yaml:"passes" json:"passes,omitempty"`
	}
)

// Load a configuration file. The format is given by the file extension:
// .yaml, .yml or .cue.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read configuration")
	}
	var file *File
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		file, err = ParseYAML(data)
	case ".cue":
		file, err = ParseCUE(path, data)
	default:
		return nil, errors.Errorf("configuration %s: format %q not supported", path, ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "configuration %s", path)
	}
	return file, nil
}

// ParseYAML parses and validates a YAML configuration.
// Unknown fields are rejected.
func ParseYAML(data []byte) (*File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Wrapf(err, "cannot parse YAML")
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// ParseCUE parses and validates a CUE configuration.
func ParseCUE(filename string, data []byte) (*File, error) {
	ctx := cuecontext.New()
	val := ctx.CompileBytes(data, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return nil, errors.Wrapf(err, "cannot compile CUE")
	}
	val, err := validate(ctx, val)
	if err != nil {
		return nil, err
	}
	var file File
	if err := val.Decode(&file); err != nil {
		return nil, errors.Wrapf(err, "cannot decode configuration")
	}
	return &file, nil
}

// Validate the configuration against the schema.
func (f *File) Validate() error {
	ctx := cuecontext.New()
	val := ctx.Encode(f)
	if err := val.Err(); err != nil {
		return errors.Wrapf(err, "cannot encode configuration")
	}
	_, err := validate(ctx, val)
	return err
}

func validate(ctx *cue.Context, val cue.Value) (cue.Value, error) {
	def := ctx.CompileString(schema, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return cue.Value{}, errors.Wrapf(err, "invalid configuration schema")
	}
	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, errors.Wrapf(err, "invalid configuration")
	}
	return unified, nil
}

// Build returns the pass context and the pipeline of the configuration.
// All the unknown pass names are reported.
func (f *File) Build(reg *pass.Registry) (*pass.Context, *pass.Sequential, error) {
	var errs error
	for _, name := range append(append([]string{}, f.Disabled...), f.Required...) {
		if _, ok := reg.Info(name); !ok {
			errs = multierr.Append(errs, errors.Errorf("pass %q not registered", name))
		}
	}
	opts := []pass.Option{
		pass.WithDisabled(f.Disabled...),
		pass.WithRequired(f.Required...),
	}
	if f.OptLevel != nil {
		opts = append(opts, pass.WithOptLevel(*f.OptLevel))
	}
	if f.Device != "" {
		dev, err := device.Parse(f.Device)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			opts = append(opts, pass.WithDevice(dev))
		}
	}
	for key, val := range f.Config {
		opts = append(opts, pass.WithConfig(key, val))
	}
	seq, err := reg.Sequential(f.Pipeline.Name, f.Pipeline.OptLevel, f.Pipeline.Passes...)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, nil, errs
	}
	return pass.NewContext(opts...), seq, nil
}
