// Copyright 2025 walteh LLC
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
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Defaults are exposed so a file can refer to them, e.g. source_ext = defaults.source_ext
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"defaults": cty.ObjectVal(map[string]cty.Value{
				"archive_ext":    cty.StringVal(DefaultArchiveExt),
				"descriptor_ext": cty.StringVal(DefaultDescriptorExt),
				"source_ext":     cty.StringVal(DefaultSourceExt),
				"extract_dir":    cty.StringVal(DefaultExtractDir),
				"staging_dir":    cty.StringVal(DefaultStagingDir),
			}),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		ArchiveExt          string   `hcl:"archive_ext,optional"`
		DescriptorExt       string   `hcl:"descriptor_ext,optional"`
		SourceExt           string   `hcl:"source_ext,optional"`
		ExtractDir          string   `hcl:"extract_dir,optional"`
		StagingDir          string   `hcl:"staging_dir,optional"`
		OnCollision         string   `hcl:"on_collision,optional"`
		Parallel            int      `hcl:"parallel,optional"`
		KeepEmptyCategories bool     `hcl:"keep_empty_categories,optional"`
		IgnoreGlobs         []string `hcl:"ignore_globs,optional"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	return &Config{
		ArchiveExt:          hclCfg.ArchiveExt,
		DescriptorExt:       hclCfg.DescriptorExt,
		SourceExt:           hclCfg.SourceExt,
		ExtractDir:          hclCfg.ExtractDir,
		StagingDir:          hclCfg.StagingDir,
		OnCollision:         CollisionPolicy(hclCfg.OnCollision),
		Parallel:            hclCfg.Parallel,
		KeepEmptyCategories: hclCfg.KeepEmptyCategories,
		IgnoreGlobs:         hclCfg.IgnoreGlobs,
	}, nil
}
