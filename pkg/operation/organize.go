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
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/exportsrc/pkg/classify"
	"github.com/walteh/exportsrc/pkg/descriptor"
	"github.com/walteh/exportsrc/pkg/status"
	"github.com/walteh/exportsrc/pkg/walk"
)

// 🗂️ Organize decodes every staged descriptor into a source file under
// outputRoot/<category>[/<sub>] and deletes the descriptor. Malformed
// descriptors, undecodable sources and unmatched names are tracked in the
// report and do not stop the run. stagingDir is removed at the end.
func (p *Pipeline) Organize(ctx context.Context, report *status.Report, stagingDir, outputRoot string) error {
	for _, c := range classify.Categories {
		dir := filepath.Join(outputRoot, c.String())
		if err := p.fs.MkdirAll(dir, 0755); err != nil {
			return fsErr("creating category directory", dir, err)
		}
	}

	entries, err := afero.ReadDir(p.fs, stagingDir)
	if err != nil {
		return fsErr("reading staging directory", stagingDir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var errs []error
	for _, info := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("organize cancelled: %w", err)
		}
		if info.IsDir() {
			continue
		}
		if err := p.organizeDescriptor(ctx, report, filepath.Join(stagingDir, info.Name()), outputRoot); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	empty, err := walk.IsEmpty(p.fs, stagingDir)
	if err != nil {
		return err
	}
	if !empty {
		return fsErr("removing staging directory", stagingDir, errors.New("directory is not empty"))
	}
	if err := p.fs.Remove(stagingDir); err != nil {
		return fsErr("removing staging directory", stagingDir, err)
	}
	return nil
}

// organizeDescriptor emits the sources of one staged descriptor. Only
// filesystem failures are returned.
func (p *Pipeline) organizeDescriptor(ctx context.Context, report *status.Report, path, outputRoot string) error {
	name := filepath.Base(path)
	logger := zerolog.Ctx(ctx).With().Str("descriptor", name).Logger()
	ctx = logger.WithContext(ctx)

	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return fsErr("reading descriptor", path, err)
	}

	desc, err := descriptor.Parse(data)
	if err != nil {
		p.track(ctx, report, status.FileInfo{
			Path:   name,
			Status: status.StatusFailed,
			Error:  errors.WithStack(&MalformedDescriptorError{File: name, Err: err}),
		})
		return p.removeStaged(path)
	}

	result := classify.Classify(name)
	if !result.Matched() {
		logger.Warn().Msg("descriptor name matches no category prefix, skipping")
		p.track(ctx, report, status.FileInfo{Path: name, Status: status.StatusSkipped})
		return p.removeStaged(path)
	}

	if len(desc.Sources) == 0 {
		logger.Warn().Msg("descriptor has no sources, skipping")
		p.track(ctx, report, status.FileInfo{Path: name, Category: result.Category.String(), Status: status.StatusSkipped})
		return p.removeStaged(path)
	}

	destDir := filepath.Join(outputRoot, result.Dir())
	if err := p.fs.MkdirAll(destDir, 0755); err != nil {
		return fsErr("creating output directory", destDir, err)
	}
	target := filepath.Join(destDir, strings.TrimSuffix(name, p.cfg.DescriptorExt)+p.cfg.SourceExt)

	var errs []error
	written := false
	for _, src := range desc.Sources {
		code, err := src.Decode()
		if err != nil {
			p.track(ctx, report, status.FileInfo{
				Path:     name,
				Category: result.Category.String(),
				SourceID: src.ID,
				Status:   status.StatusFailed,
				Error:    errors.WithStack(&DecodeError{File: name, SourceID: src.ID, Err: err}),
			})
			continue
		}

		dest, st := target, status.StatusEmitted
		if written {
			targetRel, _ := filepath.Rel(outputRoot, target)
			c, err := p.resolve(ctx, target, targetRel, fmt.Sprintf("%s has more than one source", name), func() (string, error) {
				return p.sourceVariant(target, src.ID)
			})
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if c.err != nil {
				p.track(ctx, report, status.FileInfo{
					Path:     targetRel,
					Category: result.Category.String(),
					SourceID: src.ID,
					Status:   c.status,
					Error:    c.err,
				})
				continue
			}
			dest, st = c.dest, c.status
		}

		if err := afero.WriteFile(p.fs, dest, code, 0644); err != nil {
			errs = append(errs, fsErr("writing source", dest, err))
			continue
		}
		written = true

		rel, _ := filepath.Rel(outputRoot, dest)
		p.track(ctx, report, status.FileInfo{
			Path:     rel,
			Category: result.Category.String(),
			SourceID: src.ID,
			Status:   st,
		})
	}

	if err := p.removeStaged(path); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (p *Pipeline) removeStaged(path string) error {
	if err := p.fs.Remove(path); err != nil {
		return fsErr("deleting descriptor", path, err)
	}
	return nil
}
