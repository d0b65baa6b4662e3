// Copyright 2026 the ferry authors
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

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of a ferry config file. Source and
// destination are plain endpoint strings, parsed the same way as the
// corresponding flags.
type fileConfig struct {
	Source      string   `yaml:"source" hcl:"source,optional"`
	SourceFiles []string `yaml:"source_files" hcl:"source_files,optional"`
	Destination string   `yaml:"destination" hcl:"destination,optional"`
	Move        *bool    `yaml:"move" hcl:"move,optional"`
	Conflict    string   `yaml:"conflict" hcl:"conflict,optional"`
	StripSpaces *bool    `yaml:"strip_spaces" hcl:"strip_spaces,optional"`
	Mode        string   `yaml:"mode" hcl:"mode,optional"`
	Method      string   `yaml:"method" hcl:"method,optional"`
	Exclude     []string `yaml:"exclude" hcl:"exclude,optional"`
}

// LoadFile reads a config file and applies its settings on top of cfg.
// The format is determined by the file extension:
// - .yaml or .yml for YAML
// - .hcl for HCL
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Errorf("reading config file: %w", err)
	}

	var fc *fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		fc, err = loadYAML(data)
	case ".hcl":
		fc, err = loadHCL(data, path)
	default:
		return errors.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return err
	}

	fc.apply(cfg)
	return nil
}

// apply copies the settings present in the file onto cfg. Absent fields leave
// cfg untouched so flags and defaults survive.
func (fc *fileConfig) apply(cfg *Config) {
	if fc.Source != "" {
		cfg.Source = ParseSource(fc.Source)
	}
	if len(fc.SourceFiles) > 0 {
		cfg.Source = Source{Kind: SourceFileList, Files: fc.SourceFiles}
	}
	if fc.Destination != "" {
		cfg.Dest = ParseDestination(fc.Destination)
	}
	if fc.Move != nil {
		cfg.Move = *fc.Move
	}
	if fc.Conflict != "" {
		cfg.Conflict = Conflict(strings.ToLower(fc.Conflict))
	}
	if fc.StripSpaces != nil {
		cfg.StripSpaces = *fc.StripSpaces
	}
	if fc.Mode != "" {
		cfg.Mode = Mode(strings.ToLower(fc.Mode))
	}
	if fc.Method != "" {
		cfg.Method = Method(strings.ToLower(fc.Method))
	}
	if len(fc.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, fc.Exclude...)
	}
}

func loadYAML(data []byte) (*fileConfig, error) {
	var fc fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &fc, nil
}

func loadHCL(data []byte, filename string) (*fileConfig, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &fc)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &fc, nil
}
