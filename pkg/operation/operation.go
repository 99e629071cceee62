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

package operation

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/exportsrc/pkg/classify"
	"github.com/walteh/exportsrc/pkg/config"
	"github.com/walteh/exportsrc/pkg/log"
	"github.com/walteh/exportsrc/pkg/status"
)

// 🔧 Options contains configuration for the pipeline
type Options struct {
	// Config is the validated exportsrc configuration
	Config *config.Config
	// Fs is the filesystem every stage works on, the OS filesystem when nil
	Fs afero.Fs
	// Console receives operator facing output, discarded when nil
	Console *log.Logger
	// Formatter renders archive summaries, the default formatter when nil
	Formatter status.FileFormatter
}

// 🎮 Pipeline holds the stages of a single archive run. Stages take explicit
// directories and keep no state between calls.
type Pipeline struct {
	cfg       *config.Config
	fs        afero.Fs
	console   *log.Logger
	formatter status.FileFormatter
}

// 🏭 New creates a pipeline with the given options
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Console == nil {
		opts.Console = log.Discard()
	}
	if opts.Formatter == nil {
		opts.Formatter = status.NewDefaultFileFormatter()
	}
	return &Pipeline{
		cfg:       opts.Config,
		fs:        opts.Fs,
		console:   opts.Console,
		formatter: opts.Formatter,
	}, nil
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// 🏷️ BaseName returns the archive name without its extension, which names the output directory
func (p *Pipeline) BaseName(archivePath string) string {
	return strings.TrimSuffix(filepath.Base(archivePath), p.cfg.ArchiveExt)
}

// isDescriptor reports whether a file at the archive-relative path rel is a descriptor
func (p *Pipeline) isDescriptor(rel string) bool {
	return strings.HasSuffix(filepath.Base(rel), p.cfg.DescriptorExt) && !p.cfg.IsIgnored(rel)
}

// isCategoryDir reports whether rel names one of the top-level category directories
func isCategoryDir(rel string) bool {
	for _, c := range classify.Categories {
		if rel == c.String() {
			return true
		}
	}
	return false
}

// 📝 track records a file event and echoes it on the console
func (p *Pipeline) track(ctx context.Context, report *status.Report, info status.FileInfo) {
	report.Track(ctx, info)

	p.console.LogFileOperation(ctx, log.FileOperation{
		Path:       filepath.ToSlash(info.Path),
		Category:   info.Category,
		Status:     info.Status.String(),
		IsNew:      info.Status == status.StatusEmitted || info.Status == status.StatusOverwritten || info.Status == status.StatusRenamed,
		IsModified: info.Status == status.StatusOverwritten,
		IsRemoved:  info.Status == status.StatusSkipped || info.Status == status.StatusFailed,
		IsError:    info.Error != nil,
	})
	if info.Error != nil {
		p.console.Detail(p.formatter.FormatFileOperation(info))
	}
}
