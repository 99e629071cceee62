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
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/exportsrc/pkg/status"
	"github.com/walteh/exportsrc/pkg/walk"
)

// 🪜 Flatten moves every descriptor below rootDir into stagingDir, deletes every
// other file and removes the directories that end up empty. rootDir itself is
// kept. stagingDir must lie outside rootDir.
func (p *Pipeline) Flatten(ctx context.Context, report *status.Report, rootDir, stagingDir string) error {
	if rel, err := filepath.Rel(rootDir, stagingDir); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fsErr("staging into", stagingDir, errors.Errorf("staging directory is inside %s", rootDir))
	}
	if err := p.fs.MkdirAll(stagingDir, 0755); err != nil {
		return fsErr("creating staging directory", stagingDir, err)
	}

	return walk.Walk(ctx, p.fs, rootDir, walk.Visitor{
		File: func(ctx context.Context, path, rel string, info os.FileInfo) error {
			if !p.isDescriptor(rel) {
				if err := p.fs.Remove(path); err != nil {
					return fsErr("deleting", path, err)
				}
				zerolog.Ctx(ctx).Debug().Str("path", rel).Msg("deleted non-descriptor file")
				return nil
			}
			return p.stage(ctx, report, path, rel, filepath.Join(stagingDir, info.Name()))
		},
		Dir: func(ctx context.Context, path, rel string, empty bool) error {
			if !empty {
				return nil
			}
			if err := p.fs.Remove(path); err != nil {
				return fsErr("removing empty directory", path, err)
			}
			return nil
		},
	})
}

// stage moves one descriptor into the staging directory
func (p *Pipeline) stage(ctx context.Context, report *status.Report, src, rel, dest string) error {
	exists, err := afero.Exists(p.fs, dest)
	if err != nil {
		return fsErr("checking", dest, err)
	}

	if exists {
		c, err := p.resolve(ctx, dest, filepath.Base(dest), "descriptor name staged twice, now from "+filepath.ToSlash(rel), func() (string, error) {
			return uniquePath(p.fs, dest)
		})
		if err != nil {
			return err
		}
		if c.err != nil {
			p.track(ctx, report, status.FileInfo{Path: rel, Status: c.status, Error: c.err})
			if err := p.fs.Remove(src); err != nil {
				return fsErr("deleting", src, err)
			}
			return nil
		}
		if c.dest == dest {
			if err := p.fs.Remove(dest); err != nil {
				return fsErr("replacing", dest, err)
			}
		}
		dest = c.dest
	}

	if err := p.fs.Rename(src, dest); err != nil {
		return fsErr("staging", src, err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", rel).Str("staged_as", filepath.Base(dest)).Msg("staged descriptor")
	return nil
}
