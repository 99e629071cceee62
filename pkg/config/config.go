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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/exportsrc/pkg/classify"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 💥 CollisionPolicy decides what happens when two outputs land on the same path
type CollisionPolicy string

const (
	CollisionOverwrite CollisionPolicy = "overwrite" // last write wins
	CollisionFail      CollisionPolicy = "fail"      // keep the first, report the rest
	CollisionRename    CollisionPolicy = "rename"    // give later writes a unique name
)

// Valid reports whether p is a known policy.
func (p CollisionPolicy) Valid() bool {
	switch p {
	case CollisionOverwrite, CollisionFail, CollisionRename:
		return true
	}
	return false
}

// 🏷️ Defaults
const (
	DefaultArchiveExt    = ".zip"
	DefaultDescriptorExt = ".json"
	DefaultSourceExt     = ".groovy"
	DefaultExtractDir    = "extracted_files"
	DefaultStagingDir    = "temp_json"
	DefaultParallel      = 1
)

// 📁 DefaultFiles are looked up in the working directory when no config is given
var DefaultFiles = []string{".exportsrc.hcl", ".exportsrc.yaml", ".exportsrc.yml", ".exportsrc.json"}

// 📚 Config represents the complete configuration
type Config struct {
	ArchiveExt          string          `json:"archive_ext,omitempty" yaml:"archive_ext,omitempty"`
	DescriptorExt       string          `json:"descriptor_ext,omitempty" yaml:"descriptor_ext,omitempty"`
	SourceExt           string          `json:"source_ext,omitempty" yaml:"source_ext,omitempty"`
	ExtractDir          string          `json:"extract_dir,omitempty" yaml:"extract_dir,omitempty"`
	StagingDir          string          `json:"staging_dir,omitempty" yaml:"staging_dir,omitempty"`
	OnCollision         CollisionPolicy `json:"on_collision,omitempty" yaml:"on_collision,omitempty"`
	Parallel            int             `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	KeepEmptyCategories bool            `json:"keep_empty_categories,omitempty" yaml:"keep_empty_categories,omitempty"`
	IgnoreGlobs         []string        `json:"ignore_globs,omitempty" yaml:"ignore_globs,omitempty"`
}

// 🏭 Default returns a config with every field set to its default
func Default() *Config {
	cfg := &Config{Parallel: DefaultParallel}
	cfg.setDefaults()
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// A file without a parallel key runs sequentially
	if cfg.Parallel == 0 {
		cfg.Parallel = DefaultParallel
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔎 LoadOrDefault loads path when set, otherwise the first default file found in dir.
// Without either it returns Default().
func LoadOrDefault(ctx context.Context, path, dir string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}

	for _, name := range DefaultFiles {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return Load(ctx, candidate)
		} else if !os.IsNotExist(err) {
			return nil, errors.Errorf("checking config file %s: %w", candidate, err)
		}
	}

	zerolog.Ctx(ctx).Debug().Msg("no config file found, using defaults")
	return Default(), nil
}

func (cfg *Config) setDefaults() {
	if cfg.ArchiveExt == "" {
		cfg.ArchiveExt = DefaultArchiveExt
	}
	if cfg.DescriptorExt == "" {
		cfg.DescriptorExt = DefaultDescriptorExt
	}
	if cfg.SourceExt == "" {
		cfg.SourceExt = DefaultSourceExt
	}
	if cfg.ExtractDir == "" {
		cfg.ExtractDir = DefaultExtractDir
	}
	if cfg.StagingDir == "" {
		cfg.StagingDir = DefaultStagingDir
	}
	if cfg.OnCollision == "" {
		cfg.OnCollision = CollisionOverwrite
	}
}

// 🔍 Validate checks if the configuration is valid. Empty fields take their
// defaults; parallel is never defaulted here, so an explicit 0 is rejected.
func (cfg *Config) Validate() error {
	cfg.setDefaults()

	// Normalize extensions
	cfg.ArchiveExt = normalizeExt(cfg.ArchiveExt)
	cfg.DescriptorExt = normalizeExt(cfg.DescriptorExt)
	cfg.SourceExt = normalizeExt(cfg.SourceExt)

	if cfg.DescriptorExt == cfg.SourceExt {
		return errors.Errorf("descriptor_ext and source_ext must differ, both are %q", cfg.SourceExt)
	}

	for field, name := range map[string]string{"extract_dir": cfg.ExtractDir, "staging_dir": cfg.StagingDir} {
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return errors.Errorf("%s must be a plain directory name, got %q", field, name)
		}
	}

	if cfg.ExtractDir == cfg.StagingDir {
		return errors.Errorf("extract_dir and staging_dir must differ, both are %q", cfg.StagingDir)
	}

	for _, c := range classify.Categories {
		if cfg.StagingDir == c.String() {
			return errors.Errorf("staging_dir must not be a category name, got %q", cfg.StagingDir)
		}
	}

	if !cfg.OnCollision.Valid() {
		return errors.Errorf("on_collision must be one of overwrite, fail, rename, got %q", cfg.OnCollision)
	}

	if cfg.Parallel < 1 {
		return errors.Errorf("parallel must be at least 1, got %d", cfg.Parallel)
	}

	for _, pattern := range cfg.IgnoreGlobs {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore glob %q", pattern)
		}
	}

	return nil
}

// 🚫 IsIgnored reports whether an archive-relative path matches one of the ignore globs
func (cfg *Config) IsIgnored(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range cfg.IgnoreGlobs {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("*%s -> [%s] -> *%s (collisions: %s, parallel: %d)",
		cfg.ArchiveExt, cfg.DescriptorExt, cfg.SourceExt, cfg.OnCollision, cfg.Parallel)
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	return &cfg, nil
}
